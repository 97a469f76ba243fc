package ledger_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payments-engine/ledger"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func amt(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func deposit(client ledger.ClientID, tx ledger.TxID, amount string) ledger.Event {
	return ledger.Event{Kind: ledger.EventDeposit, Client: client, Tx: tx, Amount: amt(amount)}
}

func withdrawal(client ledger.ClientID, tx ledger.TxID, amount string) ledger.Event {
	return ledger.Event{Kind: ledger.EventWithdrawal, Client: client, Tx: tx, Amount: amt(amount)}
}

func dispute(client ledger.ClientID, tx ledger.TxID) ledger.Event {
	return ledger.Event{Kind: ledger.EventDispute, Client: client, Tx: tx}
}

func resolve(client ledger.ClientID, tx ledger.TxID) ledger.Event {
	return ledger.Event{Kind: ledger.EventResolve, Client: client, Tx: tx}
}

func chargeback(client ledger.ClientID, tx ledger.TxID) ledger.Event {
	return ledger.Event{Kind: ledger.EventChargeback, Client: client, Tx: tx}
}

// applyAll applies events in order, requiring every one to succeed.
func applyAll(t *testing.T, e *ledger.Engine, events ...ledger.Event) {
	t.Helper()
	for _, ev := range events {
		require.NoError(t, e.Apply(ev))
	}
}

// account fetches a snapshot for a client that must exist.
func account(t *testing.T, e *ledger.Engine, client ledger.ClientID) ledger.AccountSnapshot {
	t.Helper()
	snap, ok := e.AccountByID(client)
	require.True(t, ok, "account %d should exist", client)
	return snap
}

func assertBalances(t *testing.T, snap ledger.AccountSnapshot, available, held string, locked bool) {
	t.Helper()
	assert.True(t, snap.Available.Equal(amt(available)),
		"available: expected %s, got %s", available, snap.Available)
	assert.True(t, snap.Held.Equal(amt(held)),
		"held: expected %s, got %s", held, snap.Held)
	assert.True(t, snap.Total.Equal(snap.Available.Add(snap.Held)),
		"total must equal available + held")
	assert.Equal(t, locked, snap.Locked)
}

// =============================================================================
// DEPOSIT / WITHDRAWAL TESTS
// =============================================================================

func TestEngine_DepositsAndWithdrawal_AccumulateAvailable(t *testing.T) {
	// GIVEN: Two deposits and one covered withdrawal for client 1
	// WHEN: Events are applied in order
	// THEN: available = 5.0 + 3.0 - 2.0, nothing held, unlocked

	e := ledger.NewEngine()
	applyAll(t, e,
		deposit(1, 1, "5.0"),
		deposit(1, 2, "3.0"),
		withdrawal(1, 3, "2.0"),
	)

	assertBalances(t, account(t, e, 1), "6.0", "0", false)
}

func TestEngine_Withdrawal_InsufficientFunds_Rejected(t *testing.T) {
	// GIVEN: Client with 1.0 available
	// WHEN: Withdrawing 5.0
	// THEN: Rejected, balances unchanged

	e := ledger.NewEngine()
	applyAll(t, e, deposit(1, 1, "1.0"))

	err := e.Apply(withdrawal(1, 2, "5.0"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	var insufficient *ledger.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.True(t, insufficient.Available.Equal(amt("1.0")))
	assert.True(t, insufficient.Requested.Equal(amt("5.0")))

	assertBalances(t, account(t, e, 1), "1.0", "0", false)
}

func TestEngine_RejectedWithdrawal_LeavesNoTransactionRecord(t *testing.T) {
	// GIVEN: A withdrawal rejected for insufficient funds
	// WHEN: Its tx id is later disputed
	// THEN: The dispute fails as unknown transaction

	e := ledger.NewEngine()
	err := e.Apply(withdrawal(4, 30, "5.0"))
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	err = e.Apply(dispute(4, 30))
	assert.ErrorIs(t, err, ledger.ErrUnknownTransaction)

	// Account 4 was still created, with zero balances.
	assertBalances(t, account(t, e, 4), "0", "0", false)
}

func TestEngine_DuplicateTransactionID_Rejected(t *testing.T) {
	// GIVEN: tx 1 already accepted as a deposit
	// WHEN: Reusing tx 1 for another deposit, and for a withdrawal
	// THEN: Both rejected as duplicates; balances unchanged.
	//       The id space is global across kinds and clients.

	e := ledger.NewEngine()
	applyAll(t, e, deposit(1, 1, "5.0"))

	err := e.Apply(deposit(1, 1, "5.0"))
	assert.ErrorIs(t, err, ledger.ErrDuplicateTransaction)

	err = e.Apply(withdrawal(1, 1, "1.0"))
	assert.ErrorIs(t, err, ledger.ErrDuplicateTransaction)

	err = e.Apply(deposit(2, 1, "9.0"))
	assert.ErrorIs(t, err, ledger.ErrDuplicateTransaction, "id space is global, not per-client")

	assertBalances(t, account(t, e, 1), "5.0", "0", false)
}

func TestEngine_Deposit_LazilyCreatesAccount(t *testing.T) {
	e := ledger.NewEngine()

	_, ok := e.AccountByID(7)
	assert.False(t, ok, "account should not exist before first reference")

	applyAll(t, e, deposit(7, 1, "2.5"))
	assertBalances(t, account(t, e, 7), "2.5", "0", false)
}

// =============================================================================
// DISPUTE LIFECYCLE TESTS
// =============================================================================

func TestEngine_Dispute_MovesAmountToHeld(t *testing.T) {
	// GIVEN: A deposit of 10.0
	// WHEN: It is disputed
	// THEN: Exactly 10.0 moves from available to held

	e := ledger.NewEngine()
	applyAll(t, e,
		deposit(2, 10, "10.0"),
		dispute(2, 10),
	)

	assertBalances(t, account(t, e, 2), "0", "10.0", false)
}

func TestEngine_Resolve_RestoresAvailable(t *testing.T) {
	// GIVEN: A disputed deposit of 7.5
	// WHEN: The dispute is resolved
	// THEN: The full amount returns to available, nothing held

	e := ledger.NewEngine()
	applyAll(t, e,
		deposit(3, 20, "7.5"),
		dispute(3, 20),
		resolve(3, 20),
	)

	assertBalances(t, account(t, e, 3), "7.5", "0", false)
}

func TestEngine_Chargeback_RemovesHeldAndLocks(t *testing.T) {
	// GIVEN: A disputed deposit of 10.0
	// WHEN: It is charged back
	// THEN: Held drops to zero, total is zero, account is locked

	e := ledger.NewEngine()
	applyAll(t, e,
		deposit(2, 10, "10.0"),
		dispute(2, 10),
		chargeback(2, 10),
	)

	assertBalances(t, account(t, e, 2), "0", "0", true)
}

func TestEngine_DisputedWithdrawal_HeldIdenticallyToDeposit(t *testing.T) {
	// GIVEN: An accepted withdrawal of 3.0 (client keeps 7.0 available)
	// WHEN: The withdrawal is disputed
	// THEN: Its amount moves from available to held, same as a deposit
	//       would. The stored kind is not branched on.

	e := ledger.NewEngine()
	applyAll(t, e,
		deposit(1, 1, "10.0"),
		withdrawal(1, 2, "3.0"),
		dispute(1, 2),
	)

	assertBalances(t, account(t, e, 1), "4.0", "3.0", false)
}

func TestEngine_Dispute_InsufficientAvailable_Rejected(t *testing.T) {
	// GIVEN: A deposit of 10.0 mostly withdrawn already (1.0 left)
	// WHEN: The original deposit is disputed
	// THEN: Rejected; there is not enough available to place on hold

	e := ledger.NewEngine()
	applyAll(t, e,
		deposit(1, 1, "10.0"),
		withdrawal(1, 2, "9.0"),
	)

	err := e.Apply(dispute(1, 1))
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	assertBalances(t, account(t, e, 1), "1.0", "0", false)
}

func TestEngine_DisputeFamily_UnknownTransaction_NoOp(t *testing.T) {
	// GIVEN: An empty engine
	// WHEN: Dispute/resolve/chargeback reference a tx that never existed
	// THEN: Each is rejected as unknown and no account is created

	e := ledger.NewEngine()

	for _, ev := range []ledger.Event{dispute(1, 99), resolve(1, 99), chargeback(1, 99)} {
		err := e.Apply(ev)
		assert.ErrorIs(t, err, ledger.ErrUnknownTransaction)
		assert.True(t, ledger.IsPartnerNoise(err))
	}

	assert.Empty(t, e.Snapshot(), "no accounts should be created")
}

func TestEngine_DisputeFamily_ClientMismatch_Rejected(t *testing.T) {
	// GIVEN: tx 1 owned by client 1
	// WHEN: Client 2 disputes, resolves, or charges it back
	// THEN: Rejected with the owning client in the error

	e := ledger.NewEngine()
	applyAll(t, e, deposit(1, 1, "5.0"))

	for _, ev := range []ledger.Event{dispute(2, 1), resolve(2, 1), chargeback(2, 1)} {
		err := e.Apply(ev)
		require.Error(t, err)
		assert.ErrorIs(t, err, ledger.ErrClientMismatch)

		var mismatch *ledger.ClientMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, ledger.ClientID(1), mismatch.Owner)
		assert.Equal(t, ledger.ClientID(2), mismatch.Client)
	}

	assertBalances(t, account(t, e, 1), "5.0", "0", false)
}

func TestEngine_ResolveUndisputed_Rejected(t *testing.T) {
	// GIVEN: An accepted deposit that was never disputed
	// WHEN: Resolve and chargeback reference it
	// THEN: Both rejected; balances unchanged

	e := ledger.NewEngine()
	applyAll(t, e, deposit(1, 1, "5.0"))

	assert.ErrorIs(t, e.Apply(resolve(1, 1)), ledger.ErrNotDisputed)
	assert.ErrorIs(t, e.Apply(chargeback(1, 1)), ledger.ErrNotDisputed)

	assertBalances(t, account(t, e, 1), "5.0", "0", false)
}

func TestEngine_ResolveClosesDispute_SecondResolveRejected(t *testing.T) {
	// GIVEN: A dispute resolved once
	// WHEN: The same tx is resolved again
	// THEN: Rejected as not disputed; re-disputing is allowed

	e := ledger.NewEngine()
	applyAll(t, e,
		deposit(1, 1, "5.0"),
		dispute(1, 1),
		resolve(1, 1),
	)

	assert.ErrorIs(t, e.Apply(resolve(1, 1)), ledger.ErrNotDisputed)

	// A closed dispute can be reopened.
	require.NoError(t, e.Apply(dispute(1, 1)))
	assertBalances(t, account(t, e, 1), "0", "5.0", false)
}

// =============================================================================
// LOCKED ACCOUNT TESTS
// =============================================================================

func TestEngine_LockedAccount_RejectsEverything(t *testing.T) {
	// GIVEN: Client 1 locked via chargeback, with an undisputed tx 2 left over
	// WHEN: Every event kind is attempted for that client
	// THEN: All are rejected and balances stay frozen

	e := ledger.NewEngine()
	applyAll(t, e,
		deposit(1, 1, "10.0"),
		deposit(1, 2, "4.0"),
		dispute(1, 1),
		chargeback(1, 1),
	)
	assertBalances(t, account(t, e, 1), "4.0", "0", true)

	events := []ledger.Event{
		deposit(1, 3, "1.0"),
		withdrawal(1, 4, "1.0"),
		dispute(1, 2),
		resolve(1, 2),
		chargeback(1, 2),
	}
	for _, ev := range events {
		assert.ErrorIs(t, e.Apply(ev), ledger.ErrAccountLocked, "kind %s", ev.Kind)
	}

	assertBalances(t, account(t, e, 1), "4.0", "0", true)
}

func TestEngine_Lock_IsolatedPerClient(t *testing.T) {
	// GIVEN: Client 1 locked, client 2 untouched
	// WHEN: Client 2 keeps transacting
	// THEN: Client 2 is unaffected

	e := ledger.NewEngine()
	applyAll(t, e,
		deposit(1, 1, "10.0"),
		dispute(1, 1),
		chargeback(1, 1),
		deposit(2, 2, "3.0"),
	)

	assertBalances(t, account(t, e, 1), "0", "0", true)
	assertBalances(t, account(t, e, 2), "3.0", "0", false)
}

// =============================================================================
// SNAPSHOT TESTS
// =============================================================================

func TestEngine_Snapshot_SortedByClient(t *testing.T) {
	e := ledger.NewEngine()
	applyAll(t, e,
		deposit(30, 1, "1.0"),
		deposit(2, 2, "1.0"),
		deposit(17, 3, "1.0"),
	)

	snaps := e.Snapshot()
	require.Len(t, snaps, 3)
	assert.Equal(t, ledger.ClientID(2), snaps[0].Client)
	assert.Equal(t, ledger.ClientID(17), snaps[1].Client)
	assert.Equal(t, ledger.ClientID(30), snaps[2].Client)
}

func TestEngine_Snapshot_TotalIsDerived(t *testing.T) {
	// Total must equal available + held for every account, whatever the
	// event history.

	e := ledger.NewEngine()
	applyAll(t, e,
		deposit(1, 1, "5.5"),
		deposit(1, 2, "2.25"),
		dispute(1, 2),
		deposit(2, 3, "0.0001"),
	)

	for _, snap := range e.Snapshot() {
		assert.True(t, snap.Total.Equal(snap.Available.Add(snap.Held)),
			"client %d: total %s != available %s + held %s",
			snap.Client, snap.Total, snap.Available, snap.Held)
	}
}

func TestEngine_Apply_UnknownKind_Rejected(t *testing.T) {
	e := ledger.NewEngine()
	err := e.Apply(ledger.Event{Kind: "transfer", Client: 1, Tx: 1})
	assert.ErrorIs(t, err, ledger.ErrUnknownEventKind)
}

// =============================================================================
// PRECISION TESTS
// =============================================================================

func TestEngine_DecimalPrecision_NoDriftAcrossDisputeCycles(t *testing.T) {
	// GIVEN: A deposit of 0.1 (famously inexact in binary floating point)
	// WHEN: It is disputed and resolved many times
	// THEN: Available is exactly 0.1 at the end

	e := ledger.NewEngine()
	applyAll(t, e, deposit(1, 1, "0.1"))

	for i := 0; i < 100; i++ {
		applyAll(t, e, dispute(1, 1), resolve(1, 1))
	}

	snap := account(t, e, 1)
	assert.True(t, snap.Available.Equal(amt("0.1")),
		"expected exactly 0.1, got %s", snap.Available)
	assert.True(t, snap.Held.IsZero())
}
