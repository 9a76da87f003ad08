// Package wizard implements the two-step add-word flow: explain a word,
// optionally regenerate its example and mnemonic, then save it.
//
// The flow is either in the Input step, holding only the text being typed,
// or in the Explained step, holding the word and its explanation draft.
// Each network call runs without the state lock held; its result is
// applied only if the workflow has not been closed in the meantime.
package wizard
