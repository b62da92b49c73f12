package application

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// SpeechToText acquires one utterance per call. An empty string with a nil
// error means nothing was heard; io.EOF means the input source is finished.
type SpeechToText interface {
	Listen(ctx context.Context) (string, error)
}

// TextToSpeech renders a reply audibly. Implementations are best-effort and
// never propagate failure; the conversation continues regardless.
type TextToSpeech interface {
	Speak(ctx context.Context, text string)
}

// Intelligence produces a natural-language reply for an utterance no local
// command handled. Implementations apply their own retry policy and always
// return text suitable for synthesis, never an error.
type Intelligence interface {
	Process(ctx context.Context, text string) string
}

// TextSTT reads utterances from a scripted list or interactively from a
// reader, for text mode and tests.
type TextSTT struct {
	queued  []string
	scanner *bufio.Scanner
	out     io.Writer
}

// NewTextSTT returns a source that yields the given inputs in order and
// io.EOF afterwards.
func NewTextSTT(inputs []string) *TextSTT {
	queued := make([]string, len(inputs))
	copy(queued, inputs)
	return &TextSTT{queued: queued}
}

// NewInteractiveSTT returns a source that prompts on out and reads lines
// from in until EOF.
func NewInteractiveSTT(in io.Reader, out io.Writer) *TextSTT {
	return &TextSTT{scanner: bufio.NewScanner(in), out: out}
}

func (t *TextSTT) Listen(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if t.scanner == nil {
		if len(t.queued) == 0 {
			return "", io.EOF
		}
		text := t.queued[0]
		t.queued = t.queued[1:]
		return text, nil
	}

	if t.out != nil {
		fmt.Fprint(t.out, "\nDigite um comando (ou 'sair'): ")
	}
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return t.scanner.Text(), nil
}

// SilentTTS prints the reply instead of speaking it.
type SilentTTS struct {
	Out io.Writer
}

func (s *SilentTTS) Speak(_ context.Context, text string) {
	if s.Out == nil {
		return
	}
	fmt.Fprintf(s.Out, "🤖 Assistente: %s\n", text)
}
