// Package processor imports words without interaction. Each word runs
// through the same explain and confirm workflow the interactive shell uses;
// words that already exist in the remote list are skipped.
package processor
