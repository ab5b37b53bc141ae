// Package record defines the user record exchanged with the remote /Users
// collection.
//
// A Record is a flat value with three fields: an identifier assigned by the
// remote store, a name and an email. Records hold only value fields, so a
// Record copied by assignment never shares state with the original:
//
//	draft := stored           // independent copy
//	draft, _ = draft.With(record.FieldName, "Bobby")
//
// # Identifiers
//
// The identifier is opaque. The remote store may hand out strings ("42",
// "a1b2") or numbers (42), and ID keeps whichever form it received so that
// it is sent back exactly as it arrived. The zero ID marks an unsaved record.
package record
