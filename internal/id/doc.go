// Package id provides unique identifier generation utilities.
//
// This is the canonical source for ID generation across the userdesk codebase:
//
//   - UUID: Standard UUID v4 (random) via github.com/google/uuid
//   - RequestID: Per-request correlation IDs sent as X-Request-ID
//   - Short: 16-character hex IDs where brevity matters
//   - Generator: Record identifiers for the bundled remote store, either a
//     json-server style integer sequence or one of the random forms above
package id
