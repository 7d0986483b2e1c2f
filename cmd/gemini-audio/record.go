package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"gemini-audio/config"
	"gemini-audio/internal/application"
	"gemini-audio/internal/infra/audio"
)

func newRecordCmd(opts *options) *cobra.Command {
	var duration time.Duration
	var keep bool

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a clip from the microphone and analyze it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if cfg.Gemini.APIKey == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Error: %s environment variable not set.\n", config.APIKeyEnv)
				return nil
			}
			if duration <= 0 {
				duration = cfg.RecordDuration()
			}

			logger := setupLogger(cfg.Log, cmd.OutOrStdout())
			recorder := audio.NewMicrophoneRecorder(cfg.Microphone.SampleRate, logger)

			path, err := application.RecordToFile(cmd.Context(), recorder, duration, "")
			if err != nil {
				return err
			}
			if keep {
				logger.Info("recording saved", "path", path)
			} else {
				defer os.Remove(path)
			}

			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), opts, path)
		},
	}

	addAnalysisFlags(cmd, opts)
	cmd.Flags().DurationVar(&duration, "duration", 0, "recording length (default from config)")
	cmd.Flags().BoolVar(&keep, "keep", false, "keep the recorded WAV file")
	return cmd
}
