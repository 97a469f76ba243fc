package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SNAPSHOT - Frozen view of engine state after a run
// =============================================================================

// AccountSnapshot is the per-client result of a run. Total is computed
// from available + held at snapshot time, never stored.
type AccountSnapshot struct {
	Client    ClientID
	Available decimal.Decimal
	Held      decimal.Decimal
	Total     decimal.Decimal
	Locked    bool
}

// Snapshot returns one entry per known account, sorted by client id so the
// report is deterministic.
func (e *Engine) Snapshot() []AccountSnapshot {
	out := make([]AccountSnapshot, 0, len(e.accounts))
	for client, acct := range e.accounts {
		out = append(out, AccountSnapshot{
			Client:    client,
			Available: acct.Available,
			Held:      acct.Held,
			Total:     acct.Total(),
			Locked:    acct.Locked,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Client < out[j].Client })
	return out
}

// AccountByID returns the snapshot for one client, or false if the client
// was never referenced during the run.
func (e *Engine) AccountByID(client ClientID) (AccountSnapshot, bool) {
	acct, ok := e.accounts[client]
	if !ok {
		return AccountSnapshot{}, false
	}
	return AccountSnapshot{
		Client:    client,
		Available: acct.Available,
		Held:      acct.Held,
		Total:     acct.Total(),
		Locked:    acct.Locked,
	}, true
}
