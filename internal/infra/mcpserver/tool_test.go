package mcpserver_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"gemini-audio/internal/domain"
	"gemini-audio/internal/infra/mcpserver"
)

type mockAnalyzer struct {
	text  string
	err   error
	calls []domain.AnalysisRequest
}

func (m *mockAnalyzer) Analyze(_ context.Context, req domain.AnalysisRequest) (string, error) {
	m.calls = append(m.calls, req)
	return m.text, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTool_Run(t *testing.T) {
	dir := t.TempDir()
	instructionPath := filepath.Join(dir, "instructions.txt")
	if err := os.WriteFile(instructionPath, []byte("You are a sound engineer."), 0644); err != nil {
		t.Fatalf("writing instruction file: %v", err)
	}

	tests := []struct {
		name            string
		apiKey          string
		args            mcpserver.ToolArgs
		analyzer        *mockAnalyzer
		want            string
		wantCalls       int
		wantInstruction string
	}{
		{
			name:      "success returns generated text",
			apiKey:    "key",
			args:      mcpserver.ToolArgs{AudioPath: "sample.wav"},
			analyzer:  &mockAnalyzer{text: "A dog barks."},
			want:      "A dog barks.",
			wantCalls: 1,
		},
		{
			name:     "missing api key",
			args:     mcpserver.ToolArgs{AudioPath: "sample.wav"},
			analyzer: &mockAnalyzer{},
			want:     "Error: GOOGLE_API_KEY not set.",
		},
		{
			name:     "missing instruction file skips analysis",
			apiKey:   "key",
			args:     mcpserver.ToolArgs{AudioPath: "sample.wav", InstructionFile: filepath.Join(dir, "nope.txt")},
			analyzer: &mockAnalyzer{},
			want:     "Error: Instruction file not found at " + filepath.Join(dir, "nope.txt"),
		},
		{
			name:            "instruction file is read as system instruction",
			apiKey:          "key",
			args:            mcpserver.ToolArgs{AudioPath: "sample.wav", InstructionFile: instructionPath},
			analyzer:        &mockAnalyzer{text: "ok"},
			want:            "ok",
			wantCalls:       1,
			wantInstruction: "You are a sound engineer.",
		},
		{
			name:      "missing audio",
			apiKey:    "key",
			args:      mcpserver.ToolArgs{AudioPath: "gone.wav"},
			analyzer:  &mockAnalyzer{err: &domain.NotFoundError{What: "Audio file", Path: "gone.wav"}},
			want:      "Error: Audio file not found at gone.wav",
			wantCalls: 1,
		},
		{
			name:      "remote failure",
			apiKey:    "key",
			args:      mcpserver.ToolArgs{AudioPath: "sample.wav"},
			analyzer:  &mockAnalyzer{err: &domain.RemoteError{Op: "generating content", Err: errors.New("quota exceeded")}},
			want:      "Error analyzing audio: generating content: quota exceeded",
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := mcpserver.NewTool(tt.analyzer, tt.apiKey, "", discardLogger())

			got := tool.Run(context.Background(), tt.args)
			if got != tt.want {
				t.Errorf("result: got %q, want %q", got, tt.want)
			}
			if len(tt.analyzer.calls) != tt.wantCalls {
				t.Fatalf("analyze calls: got %d, want %d", len(tt.analyzer.calls), tt.wantCalls)
			}
			if tt.wantCalls > 0 && tt.analyzer.calls[0].SystemInstruction != tt.wantInstruction {
				t.Errorf("instruction: got %q, want %q", tt.analyzer.calls[0].SystemInstruction, tt.wantInstruction)
			}
		})
	}
}

func TestTool_HandleAppliesDefaults(t *testing.T) {
	analyzer := &mockAnalyzer{text: "A dog barks."}
	tool := mcpserver.NewTool(analyzer, "key", "gemini-test", discardLogger())

	req := mcp.CallToolRequest{}
	req.Params.Name = mcpserver.ToolName
	req.Params.Arguments = map[string]any{
		"audio_path":   "sample.wav",
		"json_context": `{"speaker":"A"}`,
	}

	result, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	if got := resultText(t, result); got != "A dog barks." {
		t.Errorf("result: got %q", got)
	}

	if len(analyzer.calls) != 1 {
		t.Fatalf("analyze calls: got %d, want 1", len(analyzer.calls))
	}
	call := analyzer.calls[0]
	if call.Prompt != domain.DefaultPrompt {
		t.Errorf("Prompt: got %q, want %q", call.Prompt, domain.DefaultPrompt)
	}
	if call.Model != "gemini-test" {
		t.Errorf("Model: got %q, want gemini-test", call.Model)
	}
	if call.JSONContext != `{"speaker":"A"}` {
		t.Errorf("JSONContext: got %q", call.JSONContext)
	}
}

func TestTool_Definition(t *testing.T) {
	tool := mcpserver.NewTool(&mockAnalyzer{}, "key", "", discardLogger())
	def := tool.Definition()

	if def.Name != mcpserver.ToolName {
		t.Errorf("Name: got %s", def.Name)
	}
	for _, param := range []string{"audio_path", "prompt", "json_path", "json_context", "instruction_file", "model"} {
		if _, ok := def.InputSchema.Properties[param]; !ok {
			t.Errorf("missing parameter %s", param)
		}
	}
	if len(def.InputSchema.Required) != 1 || def.InputSchema.Required[0] != "audio_path" {
		t.Errorf("Required: got %v, want [audio_path]", def.InputSchema.Required)
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	var b strings.Builder
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			b.WriteString(tc.Text)
		}
	}
	return b.String()
}
