// Package shell is the interactive terminal front-end. It renders the
// snapshots of the review controller, the add-word workflow, the practice
// coordinator and the suggestion feed, and maps typed commands to their
// operations. All I/O goes through the reader and writer given to New.
package shell
