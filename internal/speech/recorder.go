package speech

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
)

// Recorder captures audio from the default input device into a WAV file.
type Recorder interface {
	Record(ctx context.Context, seconds int, file string) error
}

// CommandRecorder records with an external program. argv builds the
// arguments for a duration and output file.
type CommandRecorder struct {
	Program string
	argv    func(seconds int, file string) []string
}

// Record runs the program until it has captured the requested duration.
func (r *CommandRecorder) Record(ctx context.Context, seconds int, file string) error {
	cmd := exec.CommandContext(ctx, r.Program, r.argv(seconds, file)...)
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s failed: %w\nOutput: %s", r.Program, err, string(output))
	}
	return nil
}

func arecordArgs(seconds int, file string) []string {
	return []string{"-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-d", strconv.Itoa(seconds), file}
}

func soxArgs(seconds int, file string) []string {
	return []string{"-q", "-r", "16000", "-c", "1", file, "trim", "0", strconv.Itoa(seconds)}
}

func ffmpegArgs(seconds int, file string) []string {
	input := []string{"-f", "pulse", "-i", "default"}
	if runtime.GOOS == "darwin" {
		input = []string{"-f", "avfoundation", "-i", ":0"}
	}
	args := append([]string{"-loglevel", "quiet", "-y"}, input...)
	return append(args, "-t", strconv.Itoa(seconds), "-ac", "1", "-ar", "16000", file)
}

// DetectRecorder picks the first recording program found in PATH.
func DetectRecorder() (*CommandRecorder, error) {
	candidates := []CommandRecorder{
		{Program: "arecord", argv: arecordArgs},
		{Program: "rec", argv: soxArgs},
		{Program: "ffmpeg", argv: ffmpegArgs},
	}
	if runtime.GOOS == "darwin" {
		candidates = candidates[1:]
	}
	for _, c := range candidates {
		if _, err := lookPath(c.Program); err == nil {
			rec := c
			return &rec, nil
		}
	}
	return nil, fmt.Errorf("no audio recorder found. Install alsa-utils (arecord), sox, or ffmpeg")
}
