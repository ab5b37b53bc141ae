// Package cli implements the userdesk command line.
//
// Each command resolves configuration in setup (defaults, files, USERDESK_*
// environment variables, then flags), builds a recordstore.Store on top of
// the HTTP remote client, and renders the confirmed collection as a table or
// JSON. Interactive commands use huh forms; every form has a flag-driven
// equivalent for scripts.
package cli
