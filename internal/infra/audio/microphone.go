//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

type MicrophoneRecorder struct {
	sampleRate int
	logger     *slog.Logger
}

func NewMicrophoneRecorder(sampleRate int, logger *slog.Logger) *MicrophoneRecorder {
	return &MicrophoneRecorder{
		sampleRate: sampleRate,
		logger:     logger,
	}
}

func (m *MicrophoneRecorder) Name() string {
	return "microphone"
}

// Record captures d of mono 16-bit audio from the default input device and
// returns it as a WAV file. Cancelling ctx stops early and keeps what was
// captured so far.
func (m *MicrophoneRecorder) Record(ctx context.Context, d time.Duration) ([]byte, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}
	defer portaudio.Terminate()

	buffer := make([]int16, framesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), framesPerBuffer, buffer)
	if err != nil {
		return nil, fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("starting stream: %w", err)
	}
	defer stream.Stop()

	m.logger.Info("recording", "sampleRate", m.sampleRate, "duration", d)

	want := int(d.Seconds() * float64(m.sampleRate))
	samples := make([]int16, 0, want)

	for len(samples) < want {
		if ctx.Err() != nil {
			m.logger.Warn("recording interrupted", "samples", len(samples))
			break
		}

		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("reading from stream: %w", err)
		}
		samples = append(samples, buffer...)
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("no audio captured")
	}
	if len(samples) > want {
		samples = samples[:want]
	}

	return EncodeWAV(samples, m.sampleRate)
}
