//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
)

// Microphone stub when portaudio is not available.
type Microphone struct {
	sampleRate int
	logger     *slog.Logger
}

func NewMicrophone(wakeWord string, sampleRate, maxSeconds int, logger *slog.Logger) *Microphone {
	return &Microphone{sampleRate: sampleRate, logger: logger}
}

func (m *Microphone) Start(_ context.Context) error {
	return fmt.Errorf("microphone not available: rebuild with -tags portaudio")
}

func (m *Microphone) Stop() error {
	return nil
}

func (m *Microphone) SampleRate() int {
	return m.sampleRate
}

func (m *Microphone) Record(_ context.Context) ([]int16, error) {
	return nil, fmt.Errorf("microphone not available")
}
