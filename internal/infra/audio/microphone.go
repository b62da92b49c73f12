//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

// Microphone captures mono 16-bit PCM from the default input device.
type Microphone struct {
	stream     *portaudio.Stream
	buffer     []int16
	wakeWord   string
	sampleRate int
	maxSeconds int
	logger     *slog.Logger
}

func NewMicrophone(wakeWord string, sampleRate, maxSeconds int, logger *slog.Logger) *Microphone {
	return &Microphone{
		buffer:     make([]int16, framesPerBuffer),
		wakeWord:   wakeWord,
		sampleRate: sampleRate,
		maxSeconds: maxSeconds,
		logger:     logger,
	}
}

func (m *Microphone) Start(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), framesPerBuffer, m.buffer)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening stream: %w", err)
	}
	m.stream = stream

	if err := m.stream.Start(); err != nil {
		m.stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("starting stream: %w", err)
	}

	m.logger.Info("microphone started", "sampleRate", m.sampleRate, "wakeWord", m.wakeWord)
	return nil
}

func (m *Microphone) Stop() error {
	if m.stream != nil {
		m.stream.Stop()
		m.stream.Close()
	}
	portaudio.Terminate()
	return nil
}

func (m *Microphone) SampleRate() int {
	return m.sampleRate
}

// Record captures one utterance: it reads until a second of trailing silence
// after at least a second of audio, or until maxSeconds is reached.
func (m *Microphone) Record(ctx context.Context) ([]int16, error) {
	m.logger.Info("listening", "maxSeconds", m.maxSeconds)

	samples := make([]int16, 0, m.sampleRate*m.maxSeconds)
	silenceThreshold := int16(500)
	silenceSamples := 0
	maxSilenceSamples := m.sampleRate

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := m.stream.Read(); err != nil {
			return nil, fmt.Errorf("reading from stream: %w", err)
		}

		chunk := make([]int16, len(m.buffer))
		copy(chunk, m.buffer)
		samples = append(samples, chunk...)

		isSilent := true
		for _, sample := range chunk {
			if sample > silenceThreshold || sample < -silenceThreshold {
				isSilent = false
				break
			}
		}

		if isSilent {
			silenceSamples += len(chunk)
		} else {
			silenceSamples = 0
		}

		if silenceSamples > maxSilenceSamples && len(samples) > m.sampleRate {
			break
		}
		if len(samples) > m.sampleRate*m.maxSeconds {
			break
		}
	}

	return samples, nil
}
