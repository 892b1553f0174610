package httptransport_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"cointribute/internal/audit"
	"cointribute/internal/oracle/evidence"
	evmemory "cointribute/internal/oracle/evidence/memory"
	"cointribute/internal/platform/metrics"
	"cointribute/internal/platform/middleware"
	httptransport "cointribute/internal/transport/http"
)

type fakeRescanner struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeRescanner) ScanOnce(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return 3, nil
}

func (f *fakeRescanner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

const signingKey = "test-signing-key"

type HandlerSuite struct {
	suite.Suite
	evidence  *evidence.Service
	rescanner *fakeRescanner
	server    *httptest.Server
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.evidence = evidence.NewService(evmemory.New(), audit.NopRecorder{}, logger)
	s.rescanner = &fakeRescanner{}

	handler := httptransport.NewHandler(s.evidence, s.rescanner, logger)
	router := httptransport.NewRouter(handler,
		middleware.NewHMACValidator(signingKey), metrics.NewRegistry(), logger)
	s.server = httptest.NewServer(router)
}

func (s *HandlerSuite) TearDownTest() {
	s.server.Close()
}

func (s *HandlerSuite) post(path, body string, headers map[string]string) *http.Response {
	req, err := http.NewRequest(http.MethodPost, s.server.URL+path, strings.NewReader(body))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *HandlerSuite) get(path string) *http.Response {
	resp, err := s.server.Client().Get(s.server.URL + path)
	s.Require().NoError(err)
	return resp
}

func (s *HandlerSuite) token() string {
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	s.Require().NoError(err)
	return signed
}

func (s *HandlerSuite) TestHealth() {
	resp := s.get("/health")
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *HandlerSuite) TestMetricsExposed() {
	resp := s.get("/metrics")
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *HandlerSuite) TestEvidenceIntakeStoresWalletKeyed() {
	resp := s.post("/api/evidence",
		`{"walletAddress":"0xAbC123","urls":["https://host/a.jpg","https://host/b.jpg"]}`, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusCreated, resp.StatusCode)

	urls, err := s.evidence.GetByWallet(context.Background(), "0xabc123")
	s.Require().NoError(err)
	s.Equal([]string{"https://host/a.jpg", "https://host/b.jpg"}, urls)
}

func (s *HandlerSuite) TestEvidenceIntakeValidation() {
	for name, body := range map[string]string{
		"missing wallet": `{"urls":["https://host/a.jpg"]}`,
		"empty urls":     `{"walletAddress":"0xabc"}`,
		"relative url":   `{"walletAddress":"0xabc","urls":["ftp://host/a.jpg"]}`,
		"bad json":       `{`,
	} {
		resp := s.post("/api/evidence", body, nil)
		resp.Body.Close()
		s.Equal(http.StatusBadRequest, resp.StatusCode, name)
	}
}

func (s *HandlerSuite) TestEvidenceByCharity() {
	s.Require().NoError(s.evidence.StoreByEntity(context.Background(), 7, []string{"https://host/a.jpg"}))

	resp := s.get("/api/charities/7/evidence")
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *HandlerSuite) TestEvidenceByCharityInvalidID() {
	resp := s.get("/api/charities/not-a-number/evidence")
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *HandlerSuite) TestRescanRequiresAuth() {
	resp := s.post("/admin/rescan", "", nil)
	resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	resp = s.post("/admin/rescan", "", map[string]string{"Authorization": "Bearer not-a-token"})
	resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	s.Zero(s.rescanner.count())
}

func (s *HandlerSuite) TestRescanWithToken() {
	resp := s.post("/admin/rescan", "", map[string]string{"Authorization": "Bearer " + s.token()})
	resp.Body.Close()
	s.Equal(http.StatusAccepted, resp.StatusCode)

	s.Require().Eventually(func() bool { return s.rescanner.count() == 1 }, 2*time.Second, 10*time.Millisecond)
}
