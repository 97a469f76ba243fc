/*
Package ledger provides the settlement engine core.

PURPOSE:
  This package contains the account state machine for a stream of payment
  events. Events (deposits, withdrawals, disputes, resolutions, chargebacks)
  arrive one at a time; the engine mutates per-account balances and
  per-transaction dispute status, enforcing the available/held invariants
  and account locking.

KEY CONCEPTS IN THIS FILE (types.go):
  - ClientID / TxID: Type-safe identifiers matching the wire widths
  - Event: A validated input event (the adapter's output)
  - TxnKind: The originating kind of a stored transaction
  - Account: Mutable per-client balance state

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Type Safety: Strong typing for IDs prevents mixing client/tx IDs
  3. Exclusive ownership: All state lives inside Engine; callers only see
     immutable snapshots

SEE ALSO:
  - engine.go: Event application state machine
  - errors.go: Rejection reasons
  - snapshot.go: Final per-account report
*/
package ledger

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// ClientID identifies one client account. 16 bits on the wire.
type ClientID uint16

// TxID identifies one deposit or withdrawal. 32 bits on the wire, unique
// across the whole input stream regardless of kind.
type TxID uint32

// =============================================================================
// EVENT - Validated input, one per record
// =============================================================================

type EventKind string

const (
	EventDeposit    EventKind = "deposit"
	EventWithdrawal EventKind = "withdrawal"
	EventDispute    EventKind = "dispute"
	EventResolve    EventKind = "resolve"
	EventChargeback EventKind = "chargeback"
)

// Event is one validated ledger event. Amount is set only for
// EventDeposit and EventWithdrawal; the dispute family references an
// earlier transaction by Tx and carries no amount of its own.
type Event struct {
	Kind   EventKind
	Client ClientID
	Tx     TxID
	Amount decimal.Decimal
}

// =============================================================================
// STORED TRANSACTION - Retained so later events can dispute it
// =============================================================================

// TxnKind tags the originating kind of a stored transaction.
//
// Disputed deposits and disputed withdrawals are handled identically, so
// the tag is recorded but never branched on. That is intentional: the tag
// exists for auditability and potential future divergence, not current
// behavior.
type TxnKind string

const (
	TxnDeposit    TxnKind = "deposit"
	TxnWithdrawal TxnKind = "withdrawal"
)

// txn is the immutable record of an accepted deposit or withdrawal.
type txn struct {
	Kind   TxnKind
	Client ClientID
	Amount decimal.Decimal
}

// =============================================================================
// ACCOUNT - Mutable per-client state
// =============================================================================

// Account holds one client's balances. Total is derived, never stored.
// Accounts are created lazily on first reference and never deleted.
type Account struct {
	Available decimal.Decimal
	Held      decimal.Decimal
	Locked    bool
}

func newAccount() *Account {
	return &Account{
		Available: decimal.Zero,
		Held:      decimal.Zero,
	}
}

// Total returns available + held.
func (a *Account) Total() decimal.Decimal {
	return a.Available.Add(a.Held)
}
