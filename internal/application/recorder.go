package application

import (
	"context"
	"fmt"
	"os"
	"time"
)

// wavHeaderSize is the canonical WAV header length; a clip no longer than
// this holds no samples.
const wavHeaderSize = 44

// Recorder captures a WAV clip from a live audio input.
type Recorder interface {
	Record(ctx context.Context, d time.Duration) ([]byte, error)
	Name() string
}

// RecordToFile records a clip of length d and stores it in dir so it can be
// handed to Analyze like any other audio file. The caller removes the file.
func RecordToFile(ctx context.Context, rec Recorder, d time.Duration, dir string) (string, error) {
	data, err := rec.Record(ctx, d)
	if err != nil {
		return "", fmt.Errorf("recording from %s: %w", rec.Name(), err)
	}
	if len(data) <= wavHeaderSize {
		return "", fmt.Errorf("recording from %s: no audio captured", rec.Name())
	}

	f, err := os.CreateTemp(dir, "recording-*.wav")
	if err != nil {
		return "", fmt.Errorf("creating recording file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("writing recording: %w", err)
	}

	return f.Name(), nil
}
