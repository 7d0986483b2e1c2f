package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gemini-audio/config"
	"gemini-audio/internal/domain"
)

func testOptions(apiKey string) *options {
	return &options{
		prompt: domain.DefaultPrompt,
		cfg: &config.Config{
			Gemini: config.GeminiConfig{APIKey: apiKey, Model: domain.DefaultModel},
			Log:    config.LogConfig{Level: "error"},
		},
	}
}

func TestRunAnalyze_MissingAPIKey(t *testing.T) {
	var out bytes.Buffer

	err := runAnalyze(context.Background(), &out, testOptions(""), "sample.wav")
	if err != nil {
		t.Fatalf("runAnalyze error: %v", err)
	}

	if got := out.String(); got != "Error: GOOGLE_API_KEY environment variable not set.\n" {
		t.Errorf("output: got %q", got)
	}
}

func TestRunAnalyze_MissingAudio(t *testing.T) {
	var out bytes.Buffer
	missing := filepath.Join(t.TempDir(), "missing.wav")

	err := runAnalyze(context.Background(), &out, testOptions("test-key"), missing)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error: got %v, want ErrNotFound", err)
	}
	if strings.Contains(out.String(), "Response:") {
		t.Errorf("no response expected, got %q", out.String())
	}
}

func TestRunAnalyze_MissingInstructionFile(t *testing.T) {
	var out bytes.Buffer
	opts := testOptions("test-key")
	opts.instruction = filepath.Join(t.TempDir(), "missing.txt")

	err := runAnalyze(context.Background(), &out, opts, "sample.wav")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error: got %v, want ErrNotFound", err)
	}
}

func TestRootCmd_RequiresAudio(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--prompt", "hi"})
	cmd.SetOut(&bytes.Buffer{})

	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "audio") {
		t.Errorf("error: got %v, want missing --audio", err)
	}
}

type stubRemote struct {
	statusCalls   int
	generateCalls int
	state         domain.FileState
	prompt        []domain.PromptPart
}

func (s *stubRemote) Upload(_ context.Context, path, contentType string) (*domain.UploadedFile, error) {
	return &domain.UploadedFile{
		Name:        "F1",
		DisplayName: filepath.Base(path),
		URI:         "https://files.example/F1",
		MIMEType:    contentType,
		State:       domain.FileStateProcessing,
	}, nil
}

func (s *stubRemote) GetFile(_ context.Context, name string) (*domain.UploadedFile, error) {
	s.statusCalls++
	return &domain.UploadedFile{Name: name, State: s.state}, nil
}

func (s *stubRemote) Generate(_ context.Context, _ string, _ domain.GenerationConfig, _ string, parts []domain.PromptPart) (string, error) {
	s.generateCalls++
	s.prompt = parts
	return "A dog barks.", nil
}

func TestRunAnalyze_PrintsResponse(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "sample.wav")
	if err := os.WriteFile(audioPath, []byte("RIFF....WAVEfmt "), 0644); err != nil {
		t.Fatalf("writing audio: %v", err)
	}

	remote := &stubRemote{state: domain.FileStateActive}
	opts := testOptions("test-key")
	opts.remote = remote

	var out bytes.Buffer
	if err := runAnalyze(context.Background(), &out, opts, audioPath); err != nil {
		t.Fatalf("runAnalyze error: %v", err)
	}

	if got, want := out.String(), "\nResponse:\nA dog barks.\n"; got != want {
		t.Errorf("output: got %q, want %q", got, want)
	}
	if remote.statusCalls != 1 {
		t.Errorf("status calls: got %d, want 1", remote.statusCalls)
	}
	if len(remote.prompt) != 2 || remote.prompt[0].Text != domain.DefaultPrompt {
		t.Errorf("prompt: got %+v", remote.prompt)
	}
}

func TestRunAnalyze_ProcessingFailure(t *testing.T) {
	audioPath := filepath.Join(t.TempDir(), "sample.wav")
	if err := os.WriteFile(audioPath, []byte("RIFF....WAVEfmt "), 0644); err != nil {
		t.Fatalf("writing audio: %v", err)
	}

	remote := &stubRemote{state: domain.FileStateFailed}
	opts := testOptions("test-key")
	opts.remote = remote

	var out bytes.Buffer
	err := runAnalyze(context.Background(), &out, opts, audioPath)
	if !errors.Is(err, domain.ErrProcessingFailed) || !strings.Contains(err.Error(), "F1") {
		t.Fatalf("error: got %v, want processing failure naming F1", err)
	}
	if remote.generateCalls != 0 {
		t.Errorf("generate calls: got %d, want 0", remote.generateCalls)
	}
	if out.Len() != 0 {
		t.Errorf("output: got %q, want none", out.String())
	}
}
