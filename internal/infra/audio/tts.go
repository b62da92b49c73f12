package audio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// CommandTTS speaks through a local synthesis engine such as espeak or the
// macOS say command. Best-effort: engine failures are logged and the printed
// reply stands as the fallback.
type CommandTTS struct {
	name   string
	args   []string
	out    io.Writer
	logger *slog.Logger
}

func NewCommandTTS(command string, logger *slog.Logger) (*CommandTTS, error) {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return nil, fmt.Errorf("tts.command not configured")
	}
	return &CommandTTS{
		name:   argv[0],
		args:   argv[1:],
		out:    os.Stdout,
		logger: logger,
	}, nil
}

func (t *CommandTTS) Speak(ctx context.Context, text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(t.out, "🤖 Assistente: %s\n", text)

	args := append(append([]string(nil), t.args...), text)
	cmd := exec.CommandContext(ctx, t.name, args...)
	if err := cmd.Run(); err != nil {
		t.logger.Warn("speech engine failed, text-only fallback", "error", err)
	}
}
