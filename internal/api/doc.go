// Package api is the HTTP client for the vocabulary backend: the word store,
// the AI explanation routes and the review scheduler. Every failure is
// reduced to a *vocab.ServiceError at this boundary, and fetching the next
// due card maps the scheduler's 404 to vocab.ErrNoneDue.
package api
