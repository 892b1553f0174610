package pipeline

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProber(gateway string) *HTTPProber {
	return NewHTTPProber(gateway, 2*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestProbeReachableDocument(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newTestProber(srv.URL + "/ipfs/")
	assert.True(t, p.Probe(context.Background(), "QmEvidenceHash123"))
	assert.Equal(t, http.MethodHead, gotMethod)
	assert.Equal(t, "/ipfs/QmEvidenceHash123", gotPath)
}

func TestProbeMissingDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := newTestProber(srv.URL + "/ipfs/")
	assert.False(t, p.Probe(context.Background(), "QmEvidenceHash123"))
}

func TestProbeShortReference(t *testing.T) {
	p := newTestProber("http://127.0.0.1:1/ipfs/")
	assert.False(t, p.Probe(context.Background(), ""))
	assert.False(t, p.Probe(context.Background(), "n/a"))
	assert.False(t, p.Probe(context.Background(), "  none  "))
}

func TestProbeUnreachableHost(t *testing.T) {
	// Closed port; the probe must read any transport error as unreachable.
	p := newTestProber("http://127.0.0.1:1/ipfs/")
	assert.False(t, p.Probe(context.Background(), "QmEvidenceHash123"))
}

func TestProbeFullURLBypassesGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/docs/charter.pdf", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newTestProber("http://127.0.0.1:1/ipfs/")
	assert.True(t, p.Probe(context.Background(), srv.URL+"/docs/charter.pdf"))
}

func TestProbeIPFSScheme(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ipfs/QmEvidenceHash123", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := newTestProber(srv.URL + "/ipfs/")
	assert.True(t, p.Probe(context.Background(), "ipfs://QmEvidenceHash123"))
}
