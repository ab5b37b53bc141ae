// Package recordstore keeps the client's view of the remote user collection.
//
// A Store starts empty, is filled by Load, and is then changed only by three
// confirmed paths: Create appends the record the remote store returned, Update
// replaces an entry in place, Delete removes one. Nothing is applied before the
// remote store answers with success, so a failed call leaves the collection
// exactly as it was and the caller gets an *OperationError naming the action
// and the target identifier.
//
//	store := recordstore.New(remote.NewClient("http://localhost:3000"))
//	if err := store.Load(ctx); err != nil {
//	    // collection is still empty
//	}
//	created, err := store.Create(ctx, record.Record{Name: "A", Email: "a@x.com"})
//
// Failed operations are never retried.
package recordstore
