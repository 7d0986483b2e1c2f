package application

import (
	"context"

	"gemini-audio/internal/domain"
)

type FileService interface {
	Upload(ctx context.Context, path, contentType string) (*domain.UploadedFile, error)
	GetFile(ctx context.Context, name string) (*domain.UploadedFile, error)
}

type ContentGenerator interface {
	Generate(ctx context.Context, model string, cfg domain.GenerationConfig, systemInstruction string, parts []domain.PromptPart) (string, error)
}

type RemoteService interface {
	FileService
	ContentGenerator
}
