// Package batch reads word-list files for bulk import.
package batch
