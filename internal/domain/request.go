package domain

const (
	DefaultModel  = "gemini-3-pro-preview"
	DefaultPrompt = "Describe this audio."
)

type AnalysisRequest struct {
	AudioPath string
	Prompt    string

	// JSONContext takes precedence over JSONPath when both are set.
	JSONPath    string
	JSONContext string

	SystemInstruction string
	Model             string
}

type GenerationConfig struct {
	Temperature      float32
	TopP             float32
	TopK             float32
	MaxOutputTokens  int32
	ResponseMIMEType string
}

func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:      1.0,
		TopP:             0.95,
		TopK:             64,
		MaxOutputTokens:  8192,
		ResponseMIMEType: "text/plain",
	}
}

type PartKind string

const (
	PartKindText PartKind = "text"
	PartKindFile PartKind = "file"
)

// PromptPart is one element of an ordered multimodal prompt. Exactly one of
// Text or File is meaningful, depending on Kind.
type PromptPart struct {
	Kind PartKind
	Text string
	File *UploadedFile
}

func TextPart(text string) PromptPart {
	return PromptPart{Kind: PartKindText, Text: text}
}

func FilePart(file *UploadedFile) PromptPart {
	return PromptPart{Kind: PartKindFile, File: file}
}
