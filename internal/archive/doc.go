// Package archive moves earlier export files aside before a new export
// writes to the same path.
package archive
