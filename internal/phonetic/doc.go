// Package phonetic fetches a short IPA pronunciation hint for an English
// word using OpenAI's chat models. The hint is shown next to the
// pronunciation practice controls and stored in exported Anki notes.
package phonetic
