package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gemini-audio/internal/infra/mcpserver"
)

func newServeCmd(opts *options) *cobra.Command {
	var transport, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the GeminiAudio MCP server",
		Long: `Runs an MCP server exposing the analyze_audio tool.

Tools:
  - analyze_audio: Analyze an audio file using Google Gemini.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if transport != "" {
				cfg.Server.Transport = transport
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			// stdout carries the protocol on stdio.
			logger := setupLogger(cfg.Log, os.Stderr)

			tool := mcpserver.NewTool(newAnalyzer(cfg, opts.remote, logger), cfg.Gemini.APIKey, cfg.Gemini.Model, logger)
			s := mcpserver.NewServer(tool, version)

			if cfg.Gemini.APIKey == "" {
				logger.Warn("API key not set, tool calls will fail", "env", "GOOGLE_API_KEY")
			}

			switch cfg.Server.Transport {
			case "stdio":
				return mcpserver.ServeStdio(cmd.Context(), s, os.Stdin, os.Stdout, logger)
			case "http":
				return mcpserver.NewHTTPServer(cfg.Server.Addr, s, cfg.Server.AuthToken, logger).Run(cmd.Context())
			default:
				return fmt.Errorf("unknown transport %q", cfg.Server.Transport)
			}
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "stdio or http (default from config)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address for the http transport")
	return cmd
}
