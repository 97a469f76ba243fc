/*
handlers.go - HTTP handlers for the snapshot API

PURPOSE:
  Exposes the final state of a processed run over REST. The surface is
  read-only: the engine finished applying events before the server starts,
  so handlers only serialize snapshots.

ENDPOINTS:
  GET /api/accounts        All account snapshots
  GET /api/accounts/{id}   One account snapshot
  GET /api/run             Run id and summary counters

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed client id
  - 404: Unknown account

SEE ALSO:
  - dto.go: Response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/warp/payments-engine/ingest"
	"github.com/warp/payments-engine/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds the finished run the API serves.
type Handler struct {
	Engine  *ledger.Engine
	RunID   string
	Summary ingest.Summary
}

func NewHandler(engine *ledger.Engine, runID string, summary ingest.Summary) *Handler {
	return &Handler{Engine: engine, RunID: runID, Summary: summary}
}

// =============================================================================
// HANDLERS
// =============================================================================

// ListAccounts returns every known account, sorted by client id.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	snaps := h.Engine.Snapshot()
	out := make([]AccountDTO, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, accountDTO(snap))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetAccount returns one account snapshot by client id.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client id: "+raw)
		return
	}

	snap, ok := h.Engine.AccountByID(ledger.ClientID(id))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown client: "+raw)
		return
	}
	writeJSON(w, http.StatusOK, accountDTO(snap))
}

// GetRun returns the run id and summary counters.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RunDTO{RunID: h.RunID, Summary: h.Summary})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorDTO{Error: msg})
}
