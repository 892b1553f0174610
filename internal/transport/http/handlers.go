package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// EvidenceService is the evidence surface the handlers need.
type EvidenceService interface {
	StoreByWallet(ctx context.Context, address string, urls []string) error
	GetByEntity(ctx context.Context, id uint64) ([]string, error)
}

// Rescanner triggers a backlog reconciliation pass.
type Rescanner interface {
	ScanOnce(ctx context.Context) (int, error)
}

// Handler wires the HTTP endpoints to the oracle's services.
type Handler struct {
	evidence EvidenceService
	scanner  Rescanner
	logger   *slog.Logger
}

func NewHandler(evidence EvidenceService, scanner Rescanner, logger *slog.Logger) *Handler {
	return &Handler{
		evidence: evidence,
		scanner:  scanner,
		logger:   logger,
	}
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type evidenceIntakeRequest struct {
	WalletAddress string   `json:"walletAddress"`
	URLs          []string `json:"urls"`
}

// HandleEvidenceIntake handles POST /api/evidence. The upload collaborator
// calls this after hosting the files; the oracle stores URLs only.
func (h *Handler) HandleEvidenceIntake(w http.ResponseWriter, r *http.Request) {
	var req evidenceIntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.WalletAddress = strings.TrimSpace(req.WalletAddress)
	if req.WalletAddress == "" {
		writeError(w, http.StatusBadRequest, "walletAddress is required")
		return
	}
	if len(req.URLs) == 0 {
		writeError(w, http.StatusBadRequest, "urls must not be empty")
		return
	}
	for _, u := range req.URLs {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			writeError(w, http.StatusBadRequest, "urls must be absolute http(s) URLs")
			return
		}
	}

	if err := h.evidence.StoreByWallet(r.Context(), req.WalletAddress, req.URLs); err != nil {
		h.logger.ErrorContext(r.Context(), "store evidence", "wallet", req.WalletAddress, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store evidence")
		return
	}

	h.logger.InfoContext(r.Context(), "evidence received", "wallet", req.WalletAddress, "urls", len(req.URLs))
	writeJSON(w, http.StatusCreated, map[string]any{
		"walletAddress": req.WalletAddress,
		"stored":        len(req.URLs),
	})
}

// HandleEvidenceByCharity handles GET /api/charities/{id}/evidence.
func (h *Handler) HandleEvidenceByCharity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid charity id")
		return
	}

	urls, err := h.evidence.GetByEntity(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "load evidence", "charity_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load evidence")
		return
	}
	if urls == nil {
		urls = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"charityId": id,
		"urls":      urls,
	})
}

// HandleRescan handles POST /admin/rescan. The scan runs in the background;
// the response only acknowledges the trigger.
func (h *Handler) HandleRescan(w http.ResponseWriter, r *http.Request) {
	go func() {
		// Detached: the scan outlives the HTTP request.
		enqueued, err := h.scanner.ScanOnce(context.WithoutCancel(r.Context()))
		if err != nil {
			h.logger.Error("manual backlog scan", "error", err)
			return
		}
		h.logger.Info("manual backlog scan finished", "enqueued", enqueued)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "rescan started"})
}
