// Package suggest fetches candidate words from the AI service and hands a
// selected one to the add-word workflow as its seed.
package suggest
