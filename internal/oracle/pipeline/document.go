package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultIPFSGateway = "https://ipfs.io/ipfs/"

// minRefLength rejects placeholder references ("n/a", "none") before we
// spend a network round trip on them.
const minRefLength = 10

// HTTPProber resolves an evidence reference to a URL and HEAD-probes it.
// Any failure, transport or otherwise, reads as "document not reachable":
// the probe can only withhold a bonus, never sink a score.
type HTTPProber struct {
	client  *http.Client
	gateway string
	logger  *slog.Logger
}

// NewHTTPProber builds a prober with a bounded per-probe timeout.
func NewHTTPProber(gateway string, timeout time.Duration, logger *slog.Logger) *HTTPProber {
	if gateway == "" {
		gateway = defaultIPFSGateway
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProber{
		client:  &http.Client{Timeout: timeout},
		gateway: gateway,
		logger:  logger,
	}
}

// Probe reports whether ref resolves to a reachable document.
func (p *HTTPProber) Probe(ctx context.Context, ref string) bool {
	ref = strings.TrimSpace(ref)
	if len(ref) < minRefLength {
		return false
	}

	url := p.resolve(ref)
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("document probe failed", "ref", ref, "error", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < http.StatusBadRequest
}

func (p *HTTPProber) resolve(ref string) string {
	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return ref
	case strings.HasPrefix(ref, "ipfs://"):
		return p.gateway + strings.TrimPrefix(ref, "ipfs://")
	default:
		return p.gateway + ref
	}
}
