/*
engine.go - Event application state machine

PURPOSE:
  The Engine owns all account and transaction state and applies one event
  at a time. A rejected event changes nothing and returns the reason; the
  caller logs it and moves on. Processing never halts mid-stream.

CRITICAL INVARIANTS:
  1. ATOMIC: No event is ever partially applied. A balance never moves
     without its matching transaction-table insert, and vice versa.
  2. ORDERED: Events are applied strictly in input order. No reordering,
     batching, or replay.
  3. LOCKED IS FINAL: Once a chargeback locks an account, every later
     event for that client is rejected.
  4. GLOBAL TX IDS: A transaction id is accepted at most once across the
     whole stream, for deposits and withdrawals alike.

DISPUTE LIFECYCLE:
  deposit/withdrawal -> (dispute -> resolve | chargeback)

  Dispute moves the original amount from available to held. Resolve moves
  it back. Chargeback removes it from held and locks the account. Both
  resolve and chargeback require an open dispute on the tx.

CONCURRENCY:
  None. The engine is single-threaded by contract: state is owned
  exclusively and mutated only through Apply. If ingestion were ever
  parallelized, Apply must become the sole serialization point, since the
  dispute family reads then writes across two maps.

SEE ALSO:
  - types.go: Event and Account definitions
  - errors.go: Rejection reasons
  - snapshot.go: Final report of engine state
*/
package ledger

import (
	"fmt"
)

// =============================================================================
// ENGINE - Exclusive owner of all settlement state
// =============================================================================

type Engine struct {
	accounts map[ClientID]*Account
	txns     map[TxID]txn
	disputed map[TxID]struct{}
}

func NewEngine() *Engine {
	return &Engine{
		accounts: make(map[ClientID]*Account),
		txns:     make(map[TxID]txn),
		disputed: make(map[TxID]struct{}),
	}
}

// account returns the client's account, creating it lazily with zero
// balances on first reference.
func (e *Engine) account(client ClientID) *Account {
	acct, ok := e.accounts[client]
	if !ok {
		acct = newAccount()
		e.accounts[client] = acct
	}
	return acct
}

// Apply applies one event. On rejection the engine state is unchanged and
// the reason is returned; rejections are terminal for this event only.
func (e *Engine) Apply(ev Event) error {
	switch ev.Kind {
	case EventDeposit:
		return e.deposit(ev)
	case EventWithdrawal:
		return e.withdrawal(ev)
	case EventDispute:
		return e.dispute(ev)
	case EventResolve:
		return e.resolve(ev)
	case EventChargeback:
		return e.chargeback(ev)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventKind, ev.Kind)
	}
}

// =============================================================================
// DEPOSIT / WITHDRAWAL - Create transaction records
// =============================================================================

func (e *Engine) deposit(ev Event) error {
	acct := e.account(ev.Client)
	if acct.Locked {
		return ErrAccountLocked
	}
	if _, exists := e.txns[ev.Tx]; exists {
		return ErrDuplicateTransaction
	}

	e.txns[ev.Tx] = txn{Kind: TxnDeposit, Client: ev.Client, Amount: ev.Amount}
	acct.Available = acct.Available.Add(ev.Amount)
	return nil
}

func (e *Engine) withdrawal(ev Event) error {
	acct := e.account(ev.Client)
	if acct.Locked {
		return ErrAccountLocked
	}
	if _, exists := e.txns[ev.Tx]; exists {
		return ErrDuplicateTransaction
	}
	// Funds check before the table insert: a rejected withdrawal leaves no
	// transaction record, so a later dispute of its id fails as unknown.
	if ev.Amount.GreaterThan(acct.Available) {
		return &InsufficientFundsError{
			Client:    ev.Client,
			Available: acct.Available,
			Requested: ev.Amount,
		}
	}

	e.txns[ev.Tx] = txn{Kind: TxnWithdrawal, Client: ev.Client, Amount: ev.Amount}
	acct.Available = acct.Available.Sub(ev.Amount)
	return nil
}

// =============================================================================
// DISPUTE FAMILY - Reference existing transaction records
// =============================================================================

// disputeTarget runs the checks shared by dispute, resolve, and chargeback:
// the referenced transaction must exist, must belong to the event's client,
// and the account must not be locked.
func (e *Engine) disputeTarget(ev Event) (*Account, txn, error) {
	rec, ok := e.txns[ev.Tx]
	if !ok {
		return nil, txn{}, ErrUnknownTransaction
	}
	if rec.Client != ev.Client {
		return nil, txn{}, &ClientMismatchError{Tx: ev.Tx, Client: ev.Client, Owner: rec.Client}
	}
	acct := e.account(ev.Client)
	if acct.Locked {
		return nil, txn{}, ErrAccountLocked
	}
	// rec.Kind is deliberately not inspected here: disputed deposits and
	// disputed withdrawals are held identically.
	return acct, rec, nil
}

func (e *Engine) dispute(ev Event) error {
	acct, rec, err := e.disputeTarget(ev)
	if err != nil {
		return err
	}
	if acct.Available.LessThan(rec.Amount) {
		return &InsufficientFundsError{
			Client:    ev.Client,
			Available: acct.Available,
			Requested: rec.Amount,
		}
	}

	acct.Available = acct.Available.Sub(rec.Amount)
	acct.Held = acct.Held.Add(rec.Amount)
	e.disputed[ev.Tx] = struct{}{}
	return nil
}

func (e *Engine) resolve(ev Event) error {
	acct, rec, err := e.disputeTarget(ev)
	if err != nil {
		return err
	}
	if _, open := e.disputed[ev.Tx]; !open {
		return ErrNotDisputed
	}

	acct.Held = acct.Held.Sub(rec.Amount)
	acct.Available = acct.Available.Add(rec.Amount)
	delete(e.disputed, ev.Tx)
	return nil
}

func (e *Engine) chargeback(ev Event) error {
	acct, rec, err := e.disputeTarget(ev)
	if err != nil {
		return err
	}
	if _, open := e.disputed[ev.Tx]; !open {
		return ErrNotDisputed
	}

	acct.Held = acct.Held.Sub(rec.Amount)
	acct.Locked = true
	delete(e.disputed, ev.Tx)
	return nil
}
