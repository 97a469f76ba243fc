// Package report renders the final per-account snapshot.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/warp/payments-engine/ledger"
)

// columnWidth is the fixed width of every output column.
const columnWidth = 16

// Render writes the snapshot as a fixed-width text table: a blank line,
// the header, then one row per account. Values are left-justified; total
// is derived by the engine, not recomputed here.
func Render(w io.Writer, accounts []ledger.AccountSnapshot) error {
	if _, err := fmt.Fprint(w, "\n\n"); err != nil {
		return err
	}
	if err := row(w, "client", "available", "held", "total", "locked"); err != nil {
		return err
	}
	for _, acct := range accounts {
		err := row(w,
			strconv.FormatUint(uint64(acct.Client), 10),
			acct.Available.String(),
			acct.Held.String(),
			acct.Total.String(),
			strconv.FormatBool(acct.Locked),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func row(w io.Writer, client, available, held, total, locked string) error {
	_, err := fmt.Fprintf(w, "%-*s, %-*s, %-*s, %-*s, %-*s\n",
		columnWidth, client,
		columnWidth, available,
		columnWidth, held,
		columnWidth, total,
		columnWidth, locked,
	)
	return err
}
