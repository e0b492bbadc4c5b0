// Package cli provides the interactive brandkit command-line client.
//
// While signed out the CLI keeps brand and design edits in the local draft.
// Signing in parks the draft in a pending-migration marker, verifies the
// token against the API and replays the draft into the account. After that
// edits go straight to the API.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See runREPL for the command table.
package cli
