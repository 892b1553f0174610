package scanner_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"cointribute/internal/audit"
	"cointribute/internal/chain/mocks"
	"cointribute/internal/oracle/models"
	"cointribute/internal/oracle/queue"
	"cointribute/internal/oracle/scanner"
)

type ScannerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	gateway *mocks.MockGateway
	queue   *queue.Queue
	scanner *scanner.Scanner
	ctx     context.Context
}

func TestScannerSuite(t *testing.T) {
	suite.Run(t, new(ScannerSuite))
}

func (s *ScannerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.gateway = mocks.NewMockGateway(s.ctrl)
	s.queue = queue.New(16, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.scanner = scanner.New(s.gateway, s.queue, audit.NopRecorder{}, scanner.Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.ctx = context.Background()
}

func (s *ScannerSuite) charity(id uint64, status models.CharityStatus) models.Charity {
	return models.Charity{ID: id, Name: "Charity", Status: status}
}

func (s *ScannerSuite) TestEnqueuesOnlyPending() {
	s.gateway.EXPECT().TotalCharities(gomock.Any()).Return(uint64(4), nil)
	s.gateway.EXPECT().Charity(gomock.Any(), uint64(0)).Return(s.charity(0, models.StatusApproved), nil)
	s.gateway.EXPECT().Charity(gomock.Any(), uint64(1)).Return(s.charity(1, models.StatusPending), nil)
	s.gateway.EXPECT().Charity(gomock.Any(), uint64(2)).Return(s.charity(2, models.StatusRejected), nil)
	s.gateway.EXPECT().Charity(gomock.Any(), uint64(3)).Return(s.charity(3, models.StatusPending), nil)

	enqueued, err := s.scanner.ScanOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, enqueued)
	s.Equal(2, s.queue.Pending())

	job, err := s.queue.Dequeue(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(1), job.CharityID)
	s.Equal(models.OriginBacklog, job.Origin)
}

func (s *ScannerSuite) TestContinuesPastRecordFailure() {
	s.gateway.EXPECT().TotalCharities(gomock.Any()).Return(uint64(3), nil)
	s.gateway.EXPECT().Charity(gomock.Any(), uint64(0)).Return(models.Charity{}, errors.New("rpc timeout"))
	s.gateway.EXPECT().Charity(gomock.Any(), uint64(1)).Return(s.charity(1, models.StatusPending), nil)
	s.gateway.EXPECT().Charity(gomock.Any(), uint64(2)).Return(s.charity(2, models.StatusPending), nil)

	enqueued, err := s.scanner.ScanOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, enqueued)
}

func (s *ScannerSuite) TestCountFailureFailsPass() {
	s.gateway.EXPECT().TotalCharities(gomock.Any()).Return(uint64(0), errors.New("node down"))

	_, err := s.scanner.ScanOnce(s.ctx)
	s.Require().Error(err)
	s.Zero(s.queue.Pending())
}

func (s *ScannerSuite) TestSkipsAlreadyActiveIdentifiers() {
	s.queue.Enqueue(1, models.OriginEvent)

	s.gateway.EXPECT().TotalCharities(gomock.Any()).Return(uint64(2), nil)
	s.gateway.EXPECT().Charity(gomock.Any(), uint64(0)).Return(s.charity(0, models.StatusPending), nil)
	s.gateway.EXPECT().Charity(gomock.Any(), uint64(1)).Return(s.charity(1, models.StatusPending), nil)

	enqueued, err := s.scanner.ScanOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, enqueued)
	s.Equal(2, s.queue.Pending()) // the pre-existing job plus one new one
}

func (s *ScannerSuite) TestEmptyRegistry() {
	s.gateway.EXPECT().TotalCharities(gomock.Any()).Return(uint64(0), nil)

	enqueued, err := s.scanner.ScanOnce(s.ctx)
	s.Require().NoError(err)
	s.Zero(enqueued)
}
