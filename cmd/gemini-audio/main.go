package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gemini-audio/config"
	"gemini-audio/internal/application"
	"gemini-audio/internal/domain"
	"gemini-audio/internal/infra/gemini"
)

var version = "dev"

type options struct {
	configPath  string
	audioPath   string
	jsonPath    string
	prompt      string
	model       string
	instruction string

	cfg *config.Config
	// remote replaces the Gemini client when set.
	remote application.RemoteService
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "gemini-audio",
		Short:         "Upload audio/JSON and prompt Gemini.",
		Long:          `gemini-audio uploads an audio file and optional JSON context to Gemini, waits for the file to be processed and prints the model's answer to the prompt.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			opts.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), opts, opts.audioPath)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "path to config file")

	addAnalysisFlags(root, opts)
	root.Flags().StringVar(&opts.audioPath, "audio", "", "Path to the audio file")
	_ = root.MarkFlagRequired("audio")

	root.AddCommand(newServeCmd(opts), newRecordCmd(opts))
	return root
}

func addAnalysisFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.jsonPath, "json", "", "Path to the JSON file (optional)")
	cmd.Flags().StringVar(&opts.prompt, "prompt", domain.DefaultPrompt, "The prompt to send")
	cmd.Flags().StringVar(&opts.model, "model", "", "The model to use (default from config)")
	cmd.Flags().StringVar(&opts.instruction, "instruction", "", "Path to a text file with system instructions (optional)")
}

func runAnalyze(ctx context.Context, out io.Writer, opts *options, audioPath string) error {
	cfg := opts.cfg
	if cfg.Gemini.APIKey == "" {
		fmt.Fprintf(out, "Error: %s environment variable not set.\n", config.APIKeyEnv)
		return nil
	}

	logger := setupLogger(cfg.Log, out)

	var instruction string
	if opts.instruction != "" {
		data, err := os.ReadFile(opts.instruction)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return &domain.NotFoundError{What: "Instruction file", Path: opts.instruction}
			}
			return fmt.Errorf("reading instruction file: %w", err)
		}
		instruction = string(data)
	}

	model := opts.model
	if model == "" {
		model = cfg.Gemini.Model
	}

	analyzer := newAnalyzer(cfg, opts.remote, logger)

	text, err := analyzer.Analyze(ctx, domain.AnalysisRequest{
		AudioPath:         audioPath,
		Prompt:            opts.prompt,
		JSONPath:          opts.jsonPath,
		SystemInstruction: instruction,
		Model:             model,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\nResponse:")
	fmt.Fprintln(out, text)
	return nil
}

func newAnalyzer(cfg *config.Config, remote application.RemoteService, logger *slog.Logger) *application.Analyzer {
	if remote == nil {
		remote = gemini.NewClientWithURL(cfg.Gemini.APIKey, cfg.Gemini.BaseURL)
	}
	return application.NewAnalyzer(remote, application.Options{
		APIKey:       cfg.Gemini.APIKey,
		PollInterval: cfg.PollInterval(),
		MaxWait:      cfg.PollTimeout(),
	}, logger)
}

func setupLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
