package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"gemini-audio/config"
	"gemini-audio/internal/domain"
)

const ToolName = "analyze_audio"

type Analyzer interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (string, error)
}

type ToolArgs struct {
	AudioPath       string
	Prompt          string
	JSONPath        string
	JSONContext     string
	InstructionFile string
	Model           string
}

// Tool adapts the analyzer to the agent-protocol contract: every outcome,
// including failures, is reported as a plain string.
type Tool struct {
	analyzer     Analyzer
	apiKey       string
	defaultModel string
	logger       *slog.Logger
}

func NewTool(analyzer Analyzer, apiKey, defaultModel string, logger *slog.Logger) *Tool {
	if defaultModel == "" {
		defaultModel = domain.DefaultModel
	}
	return &Tool{
		analyzer:     analyzer,
		apiKey:       apiKey,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

func (t *Tool) Definition() mcp.Tool {
	return mcp.NewTool(ToolName,
		mcp.WithDescription("Analyze an audio file using Google Gemini."),
		mcp.WithString("audio_path",
			mcp.Required(),
			mcp.Description("Path to the audio file (wav, mp3, etc.)"),
		),
		mcp.WithString("prompt",
			mcp.Description("The prompt to send to Gemini."),
			mcp.DefaultString(domain.DefaultPrompt),
		),
		mcp.WithString("json_path",
			mcp.Description("Optional path to a JSON file to provide as context."),
		),
		mcp.WithString("json_context",
			mcp.Description("Optional JSON string to provide as context (overrides json_path if provided)."),
		),
		mcp.WithString("instruction_file",
			mcp.Description("Optional path to a text file containing system instructions."),
		),
		mcp.WithString("model",
			mcp.Description("The Gemini model to use."),
			mcp.DefaultString(t.defaultModel),
		),
	)
}

func (t *Tool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := ToolArgs{
		AudioPath:       req.GetString("audio_path", ""),
		Prompt:          req.GetString("prompt", domain.DefaultPrompt),
		JSONPath:        req.GetString("json_path", ""),
		JSONContext:     req.GetString("json_context", ""),
		InstructionFile: req.GetString("instruction_file", ""),
		Model:           req.GetString("model", t.defaultModel),
	}
	return mcp.NewToolResultText(t.Run(ctx, args)), nil
}

func (t *Tool) Run(ctx context.Context, args ToolArgs) string {
	if t.apiKey == "" {
		return fmt.Sprintf("Error: %s not set.", config.APIKeyEnv)
	}
	if args.AudioPath == "" {
		return "Error: audio_path is required."
	}

	var instruction string
	if args.InstructionFile != "" {
		data, err := os.ReadFile(args.InstructionFile)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Sprintf("Error: Instruction file not found at %s", args.InstructionFile)
			}
			return fmt.Sprintf("Error reading instruction file: %s", err)
		}
		instruction = string(data)
	}

	if args.Prompt == "" {
		args.Prompt = domain.DefaultPrompt
	}
	if args.Model == "" {
		args.Model = t.defaultModel
	}

	t.logger.Info("analyze_audio called", "audio_path", args.AudioPath, "model", args.Model)

	text, err := t.analyzer.Analyze(ctx, domain.AnalysisRequest{
		AudioPath:         args.AudioPath,
		Prompt:            args.Prompt,
		JSONPath:          args.JSONPath,
		JSONContext:       args.JSONContext,
		SystemInstruction: instruction,
		Model:             args.Model,
	})
	if err != nil {
		t.logger.Error("analyzing audio", "error", err)
		if errors.Is(err, domain.ErrNotFound) {
			return "Error: " + err.Error()
		}
		return "Error analyzing audio: " + err.Error()
	}

	return text
}
