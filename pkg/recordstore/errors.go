package recordstore

import (
	"errors"
	"fmt"

	"github.com/getmockd/userdesk/pkg/record"
)

// Action names the operation that failed.
type Action string

// Actions.
const (
	ActionLoad   Action = "load"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Precondition errors. These are returned without contacting the remote store.
var (
	ErrIdentifierSet     = errors.New("record already has an identifier")
	ErrIdentifierMissing = errors.New("record has no identifier")
)

// Response errors. The remote store answered successfully but the answer would
// break the collection invariant, so it is not applied.
var (
	ErrDuplicateIdentifier = errors.New("duplicate identifier in response")
	ErrEmptyIdentifier     = errors.New("empty identifier in response")
)

// OperationError reports a failed load, create, update or delete. The
// collection is exactly as it was before the attempt.
type OperationError struct {
	Action Action
	ID     record.ID
	Err    error
}

func (e *OperationError) Error() string {
	if e.ID.IsZero() {
		return fmt.Sprintf("%s failed: %v", e.Action, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Action, e.ID, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// AsOperationError extracts an OperationError from err.
func AsOperationError(err error) (*OperationError, bool) {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr, true
	}
	return nil, false
}
