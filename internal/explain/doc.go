// Package explain answers the explain, regenerate and suggest contract
// directly from an LLM instead of through the backend. Two providers are
// available: OpenAI chat completions and Google Gemini.
package explain
