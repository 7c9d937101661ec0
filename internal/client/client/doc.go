// Package client implements the PonyExpress HTTP API client used by the CLI.
//
// HTTPClient keeps the bearer token obtained from Login and attaches it to
// every later request. Transport failures surface as ErrUnavailable; error
// bodies returned by the server decode into *APIError, and 401/403 answers
// additionally match ErrUnauthorized via errors.Is.
package client
