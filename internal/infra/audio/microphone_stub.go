//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// MicrophoneRecorder stub when portaudio is not available
type MicrophoneRecorder struct {
	logger *slog.Logger
}

func NewMicrophoneRecorder(sampleRate int, logger *slog.Logger) *MicrophoneRecorder {
	return &MicrophoneRecorder{logger: logger}
}

func (m *MicrophoneRecorder) Name() string {
	return "microphone"
}

func (m *MicrophoneRecorder) Record(_ context.Context, _ time.Duration) ([]byte, error) {
	return nil, fmt.Errorf("microphone recording not available: rebuild with -tags portaudio")
}
