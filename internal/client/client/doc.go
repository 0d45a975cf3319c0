// Package client is the HTTP client of the neural style transfer service.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     the session endpoints (Me, Login, Signup, Logout) and the job endpoints
//     (Submit, Status, Library, Delete).
//  2. A concrete net/http implementation (see HTTPClient) that attaches the
//     session credential through a credentials.Manager, tags every request
//     with an X-Request-ID and maps HTTP status codes to sentinel errors.
//
// # Error Handling
//
// Conditions are exposed as sentinel errors matched with errors.Is:
// ErrUnauthorized, ErrInvalidCredentials, ErrAccountConflict, ErrNotFound,
// ErrTransport, ErrMalformedResponse and ErrUnexpectedStatus. Unexpected
// statuses are returned as *StatusError, which carries the code and the
// server's detail message.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. Every call takes a context.Context;
// a cancelled context is returned as ctx.Err(), not as ErrTransport.
package client
