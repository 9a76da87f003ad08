// Package speech hides whether the host can synthesize or recognize speech.
//
// An Adapter exposes Speak and RecognizeOnce as single-shot calls over
// optional platform drivers (OpenAI TTS or espeak-ng for synthesis, a local
// recorder plus Whisper for recognition). An Arena hands the adapter out to
// exactly one holder at a time.
package speech
