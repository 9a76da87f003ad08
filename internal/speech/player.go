package speech

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// Player plays an audio file and returns when playback ends.
type Player interface {
	Play(ctx context.Context, file string) error
}

// CommandPlayer plays files with an external program. Cancelling the context
// kills the program.
type CommandPlayer struct {
	Program string
	Args    []string // placed before the file name
}

// Play starts the program and waits for it to finish.
func (p *CommandPlayer) Play(ctx context.Context, file string) error {
	args := append(append([]string{}, p.Args...), file)
	cmd := exec.CommandContext(ctx, p.Program, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s failed: %w\nOutput: %s", p.Program, err, string(output))
	}
	return nil
}

// DetectPlayer picks the first audio player installed on this platform.
func DetectPlayer() (*CommandPlayer, error) {
	switch runtime.GOOS {
	case "darwin":
		return &CommandPlayer{Program: "afplay"}, nil
	case "linux", "freebsd", "openbsd":
		// mpg123 first since it handles MP3 files best
		candidates := []CommandPlayer{
			{Program: "mpg123", Args: []string{"-q"}},
			{Program: "ffplay", Args: []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
			{Program: "play", Args: []string{"-q"}},
			{Program: "paplay"},
			{Program: "aplay", Args: []string{"-q"}},
		}
		for _, c := range candidates {
			if _, err := lookPath(c.Program); err == nil {
				player := c
				return &player, nil
			}
		}
		return nil, fmt.Errorf("no audio player found. Install mpg123, ffplay, sox, paplay, or aplay")
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}
