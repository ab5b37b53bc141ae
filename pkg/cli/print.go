package cli

import (
	"fmt"
	"io"

	"github.com/getmockd/userdesk/pkg/cli/internal/output"
	"github.com/getmockd/userdesk/pkg/record"
)

// printResult outputs a single operation result.
//
// Contract: when --json is active, ONLY the JSON encoding of data is written
// to w. Human-readable prose goes to stderr or is omitted entirely. textFn is
// called only in text mode.
func printResult(w io.Writer, data any, textFn func()) error {
	if jsonOutput {
		return output.JSON(w, data)
	}
	textFn()
	return nil
}

// printRecords renders the collection as a table or a JSON array.
func printRecords(w io.Writer, records []record.Record) error {
	if records == nil {
		records = []record.Record{}
	}
	return printResult(w, records, func() {
		if len(records) == 0 {
			fmt.Fprintln(w, "No users")
			return
		}
		tw := output.Table(w)
		_, _ = fmt.Fprintln(tw, "ID\tNAME\tEMAIL")
		for _, r := range records {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Name, r.Email)
		}
		_ = tw.Flush()
	})
}

// printRecord reports one saved record, e.g. "Created user 3: Ann <ann@x.com>".
func printRecord(w io.Writer, verb string, rec record.Record) error {
	return printResult(w, rec, func() {
		fmt.Fprintf(w, "%s user %s: %s\n", verb, rec.ID, describe(rec))
	})
}

func describe(rec record.Record) string {
	if rec.Email == "" {
		return rec.Name
	}
	return fmt.Sprintf("%s <%s>", rec.Name, rec.Email)
}
