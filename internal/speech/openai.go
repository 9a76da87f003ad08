package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/wordsmith/internal/logging"
)

// OpenAIOptions configures OpenAI text-to-speech.
type OpenAIOptions struct {
	Model       string  // "tts-1", "tts-1-hd" or "gpt-4o-mini-tts"
	Voice       string  // "alloy", "echo", "nova", ...
	Speed       float64 // 0.25 to 4.0
	Instruction string  // only honoured by gpt-4o-mini-tts
	TempDir     string  // where Speak writes its scratch file; empty means os.TempDir
}

// DefaultOpenAIOptions returns settings suited to single English words.
func DefaultOpenAIOptions() OpenAIOptions {
	return OpenAIOptions{
		Model:       string(openai.TTSModel1),
		Voice:       string(openai.VoiceAlloy),
		Speed:       1.0,
		Instruction: "Pronounce the English word clearly and slowly for a language learner.",
	}
}

// OpenAISynthesizer renders speech with the OpenAI audio API and plays it
// through a local Player.
type OpenAISynthesizer struct {
	client *openai.Client
	opts   OpenAIOptions
	player Player
	logger *slog.Logger
}

// NewOpenAISynthesizer creates a synthesizer. player may be nil when the
// synthesizer is only used to Render files.
func NewOpenAISynthesizer(client *openai.Client, opts OpenAIOptions, player Player, logger *slog.Logger) *OpenAISynthesizer {
	if opts.Model == "" {
		opts.Model = string(openai.TTSModel1)
	}
	if opts.Voice == "" {
		opts.Voice = string(openai.VoiceAlloy)
	}
	if opts.Speed == 0 {
		opts.Speed = 1.0
	}
	return &OpenAISynthesizer{
		client: client,
		opts:   opts,
		player: player,
		logger: logging.OrDefault(logger).With("component", "speech", "driver", "openai"),
	}
}

// Name returns the driver name.
func (s *OpenAISynthesizer) Name() string {
	return "openai"
}

// Speak renders text to a scratch file, plays it and removes the file.
func (s *OpenAISynthesizer) Speak(ctx context.Context, text string) error {
	if s.player == nil {
		return ErrUnavailable
	}
	dir := s.opts.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	file := filepath.Join(dir, "wordsmith-"+uuid.NewString()+".mp3")
	defer os.Remove(file)

	if err := s.Render(ctx, text, file); err != nil {
		return err
	}
	return s.player.Play(ctx, file)
}

// Render writes the pronunciation of text to outputFile. The audio format
// follows the file extension and defaults to MP3.
func (s *OpenAISynthesizer) Render(ctx context.Context, text, outputFile string) error {
	text = cleanSpeechText(text)
	if text == "" {
		return fmt.Errorf("text cannot be empty")
	}

	req := openai.CreateSpeechRequest{
		Model: openai.SpeechModel(s.opts.Model),
		Input: text,
		Voice: openai.SpeechVoice(s.opts.Voice),
		Speed: s.opts.Speed,
	}
	if s.opts.Instruction != "" && s.opts.Model == "gpt-4o-mini-tts" {
		req.Instructions = s.opts.Instruction
	}

	switch strings.ToLower(filepath.Ext(outputFile)) {
	case ".wav":
		req.ResponseFormat = openai.SpeechResponseFormatWav
	case ".opus":
		req.ResponseFormat = openai.SpeechResponseFormatOpus
	case ".aac":
		req.ResponseFormat = openai.SpeechResponseFormatAac
	case ".flac":
		req.ResponseFormat = openai.SpeechResponseFormatFlac
	default:
		req.ResponseFormat = openai.SpeechResponseFormatMp3
	}

	s.logger.Debug("create speech", "model", s.opts.Model, "voice", s.opts.Voice, "word", text)
	response, err := s.client.CreateSpeech(ctx, req)
	if err != nil {
		if strings.Contains(err.Error(), "does not have access to model") {
			return fmt.Errorf("OpenAI TTS API error: %w\nNote: the %s model requires access. Try speech.tts_model tts-1 instead", err, s.opts.Model)
		}
		return fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer response.Close()

	if dir := filepath.Dir(outputFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, response)
	if err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if written == 0 {
		return fmt.Errorf("no audio data received from OpenAI")
	}
	return nil
}

// cleanSpeechText drops punctuation the engine would otherwise read out.
func cleanSpeechText(text string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(text), `!?.,;:"'()[]{}`))
}

// WhisperRecognizer records one utterance locally and transcribes it with
// the OpenAI transcription API.
type WhisperRecognizer struct {
	client   *openai.Client
	recorder Recorder
	language string
	seconds  int
	tempDir  string
	logger   *slog.Logger
}

// NewWhisperRecognizer creates a recognizer capturing seconds of audio per attempt.
func NewWhisperRecognizer(client *openai.Client, recorder Recorder, language string, seconds int, logger *slog.Logger) *WhisperRecognizer {
	if seconds <= 0 {
		seconds = 4
	}
	return &WhisperRecognizer{
		client:   client,
		recorder: recorder,
		language: language,
		seconds:  seconds,
		tempDir:  os.TempDir(),
		logger:   logging.OrDefault(logger).With("component", "speech", "driver", "whisper"),
	}
}

// Name returns the driver name.
func (r *WhisperRecognizer) Name() string {
	return "whisper"
}

// RecognizeOnce records, transcribes and returns the transcript with
// surrounding punctuation removed.
func (r *WhisperRecognizer) RecognizeOnce(ctx context.Context) (string, error) {
	file := filepath.Join(r.tempDir, "wordsmith-"+uuid.NewString()+".wav")
	defer os.Remove(file)

	if err := r.recorder.Record(ctx, r.seconds, file); err != nil {
		if ctx.Err() != nil {
			return "", &RecognitionError{Code: CodeAborted, Err: ctx.Err()}
		}
		return "", &RecognitionError{Code: CodeAudioCapture, Err: err}
	}

	resp, err := r.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: file,
		Language: r.language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return "", &RecognitionError{Code: CodeAborted, Err: err}
		}
		return "", &RecognitionError{Code: CodeNetwork, Err: err}
	}

	text := cleanSpeechText(resp.Text)
	r.logger.Debug("transcribed", "transcript", text)
	if text == "" {
		return "", &RecognitionError{Code: CodeNoSpeech}
	}
	return text, nil
}
