package audio

import (
	"context"
	"log/slog"
	"strings"
)

// Recorder captures one utterance of PCM samples per call.
type Recorder interface {
	Record(ctx context.Context) ([]int16, error)
	SampleRate() int
}

// Transcriber turns WAV audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// VoiceSTT implements the SpeechToText capability by recording from a
// microphone and transcribing the captured audio.
type VoiceSTT struct {
	recorder    Recorder
	transcriber Transcriber
	logger      *slog.Logger
}

func NewVoiceSTT(recorder Recorder, transcriber Transcriber, logger *slog.Logger) *VoiceSTT {
	return &VoiceSTT{
		recorder:    recorder,
		transcriber: transcriber,
		logger:      logger,
	}
}

func (v *VoiceSTT) Listen(ctx context.Context) (string, error) {
	samples, err := v.recorder.Record(ctx)
	if err != nil {
		return "", err
	}
	if len(samples) == 0 {
		return "", nil
	}

	wav := EncodeWAV(samples, v.recorder.SampleRate())
	v.logger.Info("transcribing", "bytes", len(wav))

	text, err := v.transcriber.Transcribe(ctx, wav)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(text), nil
}
