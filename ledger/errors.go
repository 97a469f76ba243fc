/*
errors.go - Centralized rejection reasons for the settlement engine

PURPOSE:
  All rejection reasons in one place for consistency and discoverability.
  Every rejection is terminal for a single event only; the caller logs the
  reason and continues with the next event.

ERROR CATEGORIES:
  1. Account-state rejections - locked account, insufficient funds
  2. Transaction-table rejections - duplicate id, unknown id, wrong owner
  3. Dispute-set rejections - resolve/chargeback of an undisputed tx

USAGE:
  The driving loop inspects errors with errors.Is / errors.As:

    if errors.Is(err, ledger.ErrUnknownTransaction) {
        // partner-side noise, not a local fault
    }

SEE ALSO:
  - engine.go: Returns these errors from Apply
*/
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAccountLocked is returned for any event targeting a client whose
	// account was frozen by a chargeback. Locking is permanent.
	ErrAccountLocked = errors.New("account locked")

	// ErrDuplicateTransaction is returned when a deposit or withdrawal
	// reuses a transaction id already in the transaction table. The id
	// space is global, not per-kind.
	ErrDuplicateTransaction = errors.New("duplicate transaction id")

	// ErrInsufficientFunds is returned when a withdrawal exceeds available,
	// or when a dispute cannot place the original amount on hold.
	ErrInsufficientFunds = errors.New("insufficient available funds")

	// ErrUnknownTransaction is returned when a dispute/resolve/chargeback
	// references a transaction id that was never accepted. Treated as an
	// upstream partner error, not a local fault.
	ErrUnknownTransaction = errors.New("unknown transaction")

	// ErrClientMismatch is returned when a dispute-family event names a
	// client that does not own the referenced transaction.
	ErrClientMismatch = errors.New("transaction owned by different client")

	// ErrNotDisputed is returned when a resolve or chargeback references a
	// transaction that is not currently under dispute.
	ErrNotDisputed = errors.New("transaction not under dispute")

	// ErrUnknownEventKind is returned for an event kind the engine does not
	// recognize. The adapter never produces one; this guards direct callers.
	ErrUnknownEventKind = errors.New("unknown event kind")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientFundsError reports a balance shortage with amounts.
type InsufficientFundsError struct {
	Client    ClientID
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient available funds for client %d: available %s, requested %s",
		e.Client, e.Available, e.Requested)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// ClientMismatchError reports a dispute-family event whose client does not
// own the referenced transaction.
type ClientMismatchError struct {
	Tx     TxID
	Client ClientID
	Owner  ClientID
}

func (e *ClientMismatchError) Error() string {
	return fmt.Sprintf("transaction %d owned by client %d, not client %d",
		e.Tx, e.Owner, e.Client)
}

func (e *ClientMismatchError) Unwrap() error {
	return ErrClientMismatch
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsPartnerNoise returns true for rejections an upstream partner caused by
// referencing state we never had. These are logged quieter than local faults.
func IsPartnerNoise(err error) bool {
	return errors.Is(err, ErrUnknownTransaction)
}
