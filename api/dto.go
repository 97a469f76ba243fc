/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  Defines the JSON structures returned by the snapshot API. These types
  decouple the engine's internal state from the external contract: decimal
  values are serialized as strings so clients never touch binary floats.

NAMING CONVENTION:
  - *DTO: Response types returned to clients

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/payments-engine/ingest"
	"github.com/warp/payments-engine/ledger"
)

// AccountDTO represents one account snapshot in API responses.
type AccountDTO struct {
	Client    uint16 `json:"client"`
	Available string `json:"available"`
	Held      string `json:"held"`
	Total     string `json:"total"`
	Locked    bool   `json:"locked"`
}

// RunDTO describes the processing run behind the snapshot.
type RunDTO struct {
	RunID   string         `json:"run_id"`
	Summary ingest.Summary `json:"summary"`
}

// ErrorDTO is the JSON shape of every error response.
type ErrorDTO struct {
	Error string `json:"error"`
}

func accountDTO(snap ledger.AccountSnapshot) AccountDTO {
	return AccountDTO{
		Client:    uint16(snap.Client),
		Available: snap.Available.String(),
		Held:      snap.Held.String(),
		Total:     snap.Total.String(),
		Locked:    snap.Locked,
	}
}
