// Package vocab holds the data model shared by the learning session engine:
// persisted words, AI explanation drafts, due review cards, and the error
// shape every remote call is reduced to before a state machine sees it.
package vocab
