package ingest

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/warp/payments-engine/ledger"
)

// =============================================================================
// RECORD VALIDATION
// =============================================================================
// A record is all-or-nothing: either every field validates and one Event
// comes out, or the record is rejected whole. Shapes:
//
//   3 fields: dispute|resolve|chargeback, client, tx
//   4 fields: deposit|withdrawal, client, tx, amount
//
// Amounts are rounded to 4 fractional digits and must be strictly
// positive after rounding.

const amountPrecision = 4

var (
	// ErrRecordShape is returned for a field count other than 3 or 4.
	ErrRecordShape = errors.New("record must have 3 or 4 fields")

	// ErrUnknownEventType is returned when the first field is not a
	// recognized event keyword for the record's shape.
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrNonPositiveAmount is returned for a zero or negative amount on a
	// deposit or withdrawal.
	ErrNonPositiveAmount = errors.New("amount must be positive")
)

// ParseRecord validates one trimmed record and builds the event it
// describes.
func ParseRecord(fields []string) (ledger.Event, error) {
	switch len(fields) {
	case 3:
		return parseReference(fields)
	case 4:
		return parseMovement(fields)
	default:
		return ledger.Event{}, fmt.Errorf("%w: got %d", ErrRecordShape, len(fields))
	}
}

// parseReference handles the dispute family: no amount of its own.
func parseReference(fields []string) (ledger.Event, error) {
	var kind ledger.EventKind
	switch fields[0] {
	case "dispute":
		kind = ledger.EventDispute
	case "resolve":
		kind = ledger.EventResolve
	case "chargeback":
		kind = ledger.EventChargeback
	default:
		return ledger.Event{}, fmt.Errorf("%w: %q", ErrUnknownEventType, fields[0])
	}

	client, tx, err := parseIDs(fields[1], fields[2])
	if err != nil {
		return ledger.Event{}, err
	}
	return ledger.Event{Kind: kind, Client: client, Tx: tx}, nil
}

// parseMovement handles deposits and withdrawals: amount required.
func parseMovement(fields []string) (ledger.Event, error) {
	var kind ledger.EventKind
	switch fields[0] {
	case "deposit":
		kind = ledger.EventDeposit
	case "withdrawal":
		kind = ledger.EventWithdrawal
	default:
		return ledger.Event{}, fmt.Errorf("%w: %q", ErrUnknownEventType, fields[0])
	}

	client, tx, err := parseIDs(fields[1], fields[2])
	if err != nil {
		return ledger.Event{}, err
	}

	amount, err := decimal.NewFromString(fields[3])
	if err != nil {
		return ledger.Event{}, fmt.Errorf("bad amount %q: %w", fields[3], err)
	}
	// Banker's rounding: midpoints go to the even neighbor.
	amount = amount.RoundBank(amountPrecision)
	if !amount.IsPositive() {
		return ledger.Event{}, fmt.Errorf("%w: %s", ErrNonPositiveAmount, amount)
	}

	return ledger.Event{Kind: kind, Client: client, Tx: tx, Amount: amount}, nil
}

func parseIDs(clientField, txField string) (ledger.ClientID, ledger.TxID, error) {
	client, err := strconv.ParseUint(clientField, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("bad client id %q: %w", clientField, err)
	}
	tx, err := strconv.ParseUint(txField, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("bad transaction id %q: %w", txField, err)
	}
	return ledger.ClientID(client), ledger.TxID(tx), nil
}
