// Package cli provides the interactive neuralart command-line client.
//
// It wires configuration, the local credential store, the API client and
// the session, upload, polling and library components behind a REPL whose
// commands map onto the application's routes:
//
//	/          home (public-only)
//	/login     login          /signup   signup (public-only)
//	/generate  content, style, generate, status, download, reset (protected)
//	/library   library, delete, confirm, cancel, download <id> (protected)
//	/privacy   privacy (neutral)
//
// Every command first navigates to its route through guard.Decide, so a
// protected command issued without a session lands on the public landing
// and a public-only one issued while signed in lands on the library. The
// current view is re-checked whenever the session changes.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
