// Package anki exports the saved word list as Anki import files: a CSV for
// the "Import File" dialog or a self-contained .apkg deck. Pronunciation
// audio can be rendered per word and bundled with the deck.
package anki
