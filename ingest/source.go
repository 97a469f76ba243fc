/*
Package ingest adapts raw tabular input into validated ledger events and
drives them through the engine.

PURPOSE:
  Three pieces, in pipeline order:
  - Source:    reads one CSV record at a time (header and comment aware)
  - ParseRecord: turns a trimmed record into a validated ledger.Event
  - Processor: the loop that decodes, applies, logs rejections, and keeps
    going until the stream is exhausted

  Malformed records never abort a run. The only fatal condition here is an
  unreadable underlying stream.

SEE ALSO:
  - parse.go: Record validation rules
  - processor.go: The driving loop and run summary
*/
package ingest

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"
)

// =============================================================================
// SOURCE - Record-at-a-time CSV reader
// =============================================================================

// Source yields one whitespace-trimmed record per call. The first
// non-comment row is consumed as the header. Rows may have any field
// count; shape validation belongs to ParseRecord.
type Source struct {
	r          *csv.Reader
	headerRead bool
}

func NewSource(r io.Reader) *Source {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // flexible: dispute rows have 3 fields, deposits 4
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	return &Source{r: cr}
}

// Next returns the fields of the next record, trimmed. io.EOF signals the
// end of input. A *csv.ParseError is recoverable: the caller may log it
// and call Next again.
func (s *Source) Next() ([]string, error) {
	for {
		// The first read attempt consumes the header, even when the header
		// line itself is malformed; a bad header must not swallow the first
		// data row as well.
		header := !s.headerRead
		s.headerRead = true

		record, err := s.r.Read()
		if err != nil {
			return nil, err
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if header {
			continue
		}
		return record, nil
	}
}

// Recoverable reports whether a Source error allows further reads.
// CSV-level parse errors are skippable; anything else (including I/O
// failures) ends the run.
func Recoverable(err error) bool {
	var parseErr *csv.ParseError
	return errors.As(err, &parseErr)
}
