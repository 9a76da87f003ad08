// Package models lists the OpenAI models available to the configured API
// key, grouped by what wordsmith can use them for: explanations, speech
// synthesis and speech transcription.
package models
