package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"gemini-audio/internal/domain"
)

const (
	DefaultPollInterval = 10 * time.Second
	DefaultMaxWait      = 10 * time.Minute
)

type Options struct {
	APIKey       string
	PollInterval time.Duration
	MaxWait      time.Duration
}

type Analyzer struct {
	remote RemoteService
	opts   Options
	logger *slog.Logger
}

func NewAnalyzer(remote RemoteService, opts Options, logger *slog.Logger) *Analyzer {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MaxWait <= 0 {
		opts.MaxWait = DefaultMaxWait
	}
	return &Analyzer{
		remote: remote,
		opts:   opts,
		logger: logger,
	}
}

// Analyze uploads the request's audio, waits until the service reports it
// active and returns the text generated for the assembled prompt.
func (a *Analyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	if a.opts.APIKey == "" {
		return "", fmt.Errorf("%w: API key is required", domain.ErrConfiguration)
	}

	if _, err := os.Stat(req.AudioPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &domain.NotFoundError{What: "Audio file", Path: req.AudioPath}
		}
		return "", fmt.Errorf("checking audio file: %w", err)
	}

	if req.Prompt == "" {
		req.Prompt = domain.DefaultPrompt
	}
	if req.Model == "" {
		req.Model = domain.DefaultModel
	}

	logger := a.logger.With("request_id", uuid.NewString())

	contentType := domain.ContentTypeFor(req.AudioPath)
	logger.Info("uploading audio", "path", req.AudioPath, "content_type", contentType)

	audioFile, err := a.remote.Upload(ctx, req.AudioPath, contentType)
	if err != nil {
		return "", &domain.RemoteError{Op: "uploading audio", Err: err}
	}
	if audioFile.MIMEType == "" {
		audioFile.MIMEType = contentType
	}
	logger.Info("uploaded file", "display_name", audioFile.DisplayName, "name", audioFile.Name, "uri", audioFile.URI)

	jsonContent, err := a.resolveContext(req, logger)
	if err != nil {
		return "", err
	}

	if err := a.WaitForActive(ctx, audioFile); err != nil {
		return "", err
	}

	parts := BuildPromptParts(jsonContent, req.Prompt, audioFile)

	logger.Info("generating content", "model", req.Model, "parts", len(parts))
	text, err := a.remote.Generate(ctx, req.Model, domain.DefaultGenerationConfig(), req.SystemInstruction, parts)
	if err != nil {
		return "", &domain.RemoteError{Op: "generating content", Err: err}
	}

	return text, nil
}

func (a *Analyzer) resolveContext(req domain.AnalysisRequest, logger *slog.Logger) (string, error) {
	if req.JSONContext != "" {
		return req.JSONContext, nil
	}
	if req.JSONPath == "" {
		return "", nil
	}

	data, err := os.ReadFile(req.JSONPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("JSON file not found, continuing without context", "path", req.JSONPath)
			return "", nil
		}
		return "", fmt.Errorf("reading JSON context: %w", err)
	}

	logger.Info("read JSON context", "path", req.JSONPath, "bytes", len(data))
	return string(data), nil
}

// WaitForActive re-fetches the state of each file until it leaves
// PROCESSING. A file ending in any state other than ACTIVE aborts the wait.
// The whole wait is bounded by the configured maximum and by ctx.
func (a *Analyzer) WaitForActive(ctx context.Context, files ...*domain.UploadedFile) error {
	waitCtx, cancel := context.WithTimeout(ctx, a.opts.MaxWait)
	defer cancel()

	a.logger.Info("waiting for file processing", "files", len(files))

	for _, f := range files {
		if err := a.waitForFile(ctx, waitCtx, f.Name); err != nil {
			return err
		}
	}

	a.logger.Info("all files ready")
	return nil
}

func (a *Analyzer) waitForFile(ctx, waitCtx context.Context, name string) error {
	for polls := 1; ; polls++ {
		file, err := a.remote.GetFile(waitCtx, name)
		if err != nil {
			if ctxErr := a.waitError(ctx, waitCtx, name); ctxErr != nil {
				return ctxErr
			}
			return &domain.RemoteError{Op: "fetching file status", Err: err}
		}

		switch {
		case file.IsActive():
			a.logger.Debug("file active", "name", name, "polls", polls)
			return nil
		case file.IsProcessing():
			a.logger.Debug("file still processing", "name", name, "polls", polls)
		default:
			return &domain.ProcessingError{Name: name, State: file.State}
		}

		select {
		case <-waitCtx.Done():
			return a.waitError(ctx, waitCtx, name)
		case <-time.After(a.opts.PollInterval):
		}
	}
}

func (a *Analyzer) waitError(ctx, waitCtx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if waitCtx.Err() != nil {
		return fmt.Errorf("file %s still processing after %s: %w", name, a.opts.MaxWait, domain.ErrTimeout)
	}
	return nil
}

// BuildPromptParts orders the prompt as optional context, then the
// instruction, then the media reference.
func BuildPromptParts(jsonContent, prompt string, file *domain.UploadedFile) []domain.PromptPart {
	parts := make([]domain.PromptPart, 0, 3)
	if jsonContent != "" {
		parts = append(parts, domain.TextPart(fmt.Sprintf("Context JSON:\n%s\n", jsonContent)))
	}
	parts = append(parts, domain.TextPart(prompt))
	parts = append(parts, domain.FilePart(file))
	return parts
}
