// Package practice runs a listen and record cycle for one target word and
// turns the outcome into match or mismatch feedback.
package practice
