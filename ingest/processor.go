package ingest

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/warp/payments-engine/ledger"
	"go.uber.org/zap"
)

// =============================================================================
// PROCESSOR - The driving loop
// =============================================================================

// Summary counts the outcome of one run.
type Summary struct {
	Records       int `json:"records"`        // records read, excluding header and comments
	Applied       int `json:"applied"`        // events accepted by the engine
	ParseRejected int `json:"parse_rejected"` // records the adapter dropped
	Rejected      int `json:"rejected"`       // events the engine dropped
}

// Processor wires a Source to an Engine. Every rejection is logged and
// skipped; only a broken input stream ends a run early.
type Processor struct {
	Engine *ledger.Engine
	Log    *zap.SugaredLogger

	runID   string
	summary Summary
}

func NewProcessor(engine *ledger.Engine, log *zap.SugaredLogger) *Processor {
	runID := uuid.NewString()
	return &Processor{
		Engine: engine,
		Log:    log.With("run_id", runID),
		runID:  runID,
	}
}

// RunID identifies this processor's run in diagnostics and API responses.
func (p *Processor) RunID() string { return p.runID }

// Summary returns the counters accumulated so far.
func (p *Processor) Summary() Summary { return p.summary }

// Run consumes the stream until EOF, applying each event in input order.
// One event is fully resolved before the next record is read.
func (p *Processor) Run(r io.Reader) error {
	src := NewSource(r)

	for {
		record, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if Recoverable(err) {
				p.summary.Records++
				p.summary.ParseRejected++
				p.Log.Warnw("bad record", "error", err)
				continue
			}
			return fmt.Errorf("reading input: %w", err)
		}

		p.summary.Records++
		p.Log.Debugw("record", "fields", record)

		ev, err := ParseRecord(record)
		if err != nil {
			p.summary.ParseRejected++
			p.Log.Warnw("bad event", "record", record, "error", err)
			continue
		}

		if err := p.Engine.Apply(ev); err != nil {
			p.summary.Rejected++
			// Unknown-transaction references are assumed to be partner-side
			// noise and logged quieter than local faults.
			if ledger.IsPartnerNoise(err) {
				p.Log.Debugw("event ignored",
					"kind", ev.Kind, "client", ev.Client, "tx", ev.Tx, "error", err)
			} else {
				p.Log.Warnw("event rejected",
					"kind", ev.Kind, "client", ev.Client, "tx", ev.Tx, "error", err)
			}
			continue
		}
		p.summary.Applied++
	}

	p.Log.Infow("run complete",
		"records", p.summary.Records,
		"applied", p.summary.Applied,
		"parse_rejected", p.summary.ParseRejected,
		"rejected", p.summary.Rejected,
	)
	return nil
}
