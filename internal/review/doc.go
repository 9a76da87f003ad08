// Package review runs a review session against the remote scheduler:
// fetch the due card, show its front, reveal, grade, and fetch the next card
// until the scheduler reports that nothing is due.
package review
