package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getmockd/userdesk/pkg/recordstore"
	"github.com/getmockd/userdesk/pkg/remote"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Common CLI errors
var (
	ErrNoInput = errors.New("no fields given: pass --name/--email, or run in a terminal to use the form")
	ErrNoTTY   = errors.New("this command needs an interactive terminal")
)

// formatError returns a user-facing message. Failed operations name the
// action and the user they targeted, followed by a suggestion when one helps.
func formatError(err error) string {
	opErr, ok := recordstore.AsOperationError(err)
	if !ok {
		return "Error: " + err.Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s failed for %s: %v",
		cases.Title(language.English).String(string(opErr.Action)), subject(opErr), opErr.Err)

	var hinted remote.HintError
	if errors.As(opErr.Err, &hinted) && hinted.Hint() != "" {
		fmt.Fprintf(&b, "\n\nSuggestions:\n  • %s", hinted.Hint())
	}
	return b.String()
}

func subject(opErr *recordstore.OperationError) string {
	switch {
	case opErr.Action == recordstore.ActionLoad:
		return "users"
	case opErr.ID.IsZero():
		return "new user"
	default:
		return "user " + opErr.ID.String()
	}
}

// notFoundError reports an id that is not in the loaded list.
func notFoundError(id string) error {
	return fmt.Errorf(`user not found: %s

Suggestions:
  • Check the ID with: userdesk list
  • Verify you're connected to the right store (--url)`, id)
}
