package application

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"assistente/internal/command"
	"assistente/internal/domain"
)

const (
	greetingMessage      = "Olá! Como posso ajudar?"
	farewellMessage      = "Até logo!"
	notUnderstoodMessage = "Não entendi."
	emptyInputMessage    = "Nenhum texto reconhecido"
)

// Assistant is the conversation orchestrator: it acquires one utterance at a
// time, dispatches it (local commands first, remote intelligence as
// fallback), speaks the reply and appends the completed turn pair to
// history. The loop is strictly sequential; no turn starts before the
// previous one finished synthesizing.
type Assistant struct {
	stt     SpeechToText
	tts     TextToSpeech
	ai      Intelligence // nil when no credential is configured
	matcher *command.Matcher
	history *History
	exit    map[string]struct{}
	logger  *slog.Logger
}

func NewAssistant(
	stt SpeechToText,
	tts TextToSpeech,
	ai Intelligence,
	matcher *command.Matcher,
	exitPhrases []string,
	logger *slog.Logger,
) *Assistant {
	exit := make(map[string]struct{}, len(exitPhrases))
	for _, phrase := range exitPhrases {
		if norm, ok := command.Normalize(phrase); ok {
			exit[norm] = struct{}{}
		}
	}
	return &Assistant{
		stt:     stt,
		tts:     tts,
		ai:      ai,
		matcher: matcher,
		history: NewHistory(),
		exit:    exit,
		logger:  logger,
	}
}

// Run executes the conversation loop until an exit phrase is heard, the
// input source ends, or the context is canceled. Every failure inside a
// cycle degrades to a spoken message; nothing short of those three events
// stops the loop.
func (a *Assistant) Run(ctx context.Context) error {
	a.tts.Speak(ctx, greetingMessage)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		text, err := a.stt.Listen(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				a.logger.Info("input source finished")
				return nil
			}
			a.logger.Error("capture failure", "error", err)
			a.tts.Speak(ctx, notUnderstoodMessage)
			continue
		}

		norm, ok := command.Normalize(text)
		if !ok {
			a.tts.Speak(ctx, notUnderstoodMessage)
			continue
		}

		a.logger.Info("utterance", "text", text)

		if _, isExit := a.exit[norm]; isExit {
			a.tts.Speak(ctx, farewellMessage)
			return nil
		}

		result := a.dispatch(ctx, text, norm)
		a.tts.Speak(ctx, result.Message)
		a.history.Append(text, result.Message)
	}
}

// ExecuteOnce runs a single dispatch cycle for a supplied utterance and
// returns the result instead of looping. This is the entry point consumed by
// the CLI one-shot mode and the web front-end.
func (a *Assistant) ExecuteOnce(ctx context.Context, text string) domain.DispatchResult {
	norm, ok := command.Normalize(text)
	if !ok {
		return domain.DispatchResult{Message: emptyInputMessage}
	}

	result := a.dispatch(ctx, text, norm)
	a.tts.Speak(ctx, result.Message)
	a.history.Append(text, result.Message)
	return result
}

// dispatch resolves one utterance: local command matcher first, remote
// intelligence only when no rule matched, echo when neither is available.
func (a *Assistant) dispatch(ctx context.Context, text, norm string) domain.DispatchResult {
	if result, ok := a.matcher.Match(norm); ok {
		a.logger.Info("handled locally", "success", result.Success)
		return result
	}

	if a.ai != nil {
		reply := a.ai.Process(ctx, text)
		return domain.DispatchResult{Success: true, Message: reply}
	}

	a.logger.Info("no intelligence configured, echoing")
	return domain.DispatchResult{Message: "Você disse: " + text}
}

// History returns a copy of the conversation so far.
func (a *Assistant) History() []domain.Turn {
	return a.history.Turns()
}

// HistoryLen returns the number of recorded turns.
func (a *Assistant) HistoryLen() int {
	return a.history.Len()
}

// ClearHistory truncates the conversation, an operation owned by
// presentation layers.
func (a *Assistant) ClearHistory() {
	a.history.Clear()
}
