// Package client implements the HTTP client for the backend query
// endpoint that serves the team-scoped assigned-incident list.
//
// The backend's failure modes are irregular: a JSON body carrying error
// or message, a plain-text body, or a bare status code. extractErrorMessage
// normalizes all three, and 429 maps to a fixed throttling message since
// the endpoint sends none. Transient failures (network errors, 429, 5xx)
// are retried a bounded number of times with exponential backoff, honoring
// Retry-After.
package client
