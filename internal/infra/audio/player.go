package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/google/uuid"
)

// Player plays an audio payload through an external command. The payload is
// written to a uuid-named temp file scoped to the call: created right before
// playback, removed right after, whether or not playback succeeded.
type Player struct {
	command []string
	logger  *slog.Logger

	// Dir overrides the temp directory; defaults to os.TempDir().
	Dir string
}

// NewPlayer builds a player from a command line such as "mpg123 -q". An
// empty command autodetects a player installed on the host.
func NewPlayer(command string, logger *slog.Logger) (*Player, error) {
	var argv []string
	if command != "" {
		argv = strings.Fields(command)
	} else {
		argv = detectPlayer()
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("no audio player found: install mpg123, ffplay or mpv, or set tts.player")
	}
	return &Player{command: argv, logger: logger}, nil
}

func (p *Player) Play(ctx context.Context, data []byte, ext string) error {
	dir := p.Dir
	if dir == "" {
		dir = os.TempDir()
	}

	path := filepath.Join(dir, "assistente-"+uuid.NewString()+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing audio file: %w", err)
	}
	defer os.Remove(path)

	args := append(append([]string(nil), p.command[1:]...), path)
	cmd := exec.CommandContext(ctx, p.command[0], args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("playing audio: %w", err)
	}
	return nil
}

func detectPlayer() []string {
	if runtime.GOOS == "darwin" {
		return []string{"afplay"}
	}
	candidates := [][]string{
		{"mpg123", "-q"},
		{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet"},
		{"mpv", "--no-video", "--really-quiet"},
	}
	for _, c := range candidates {
		if _, err := exec.LookPath(c[0]); err == nil {
			return c
		}
	}
	return nil
}
