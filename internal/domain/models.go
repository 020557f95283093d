package domain

import (
	"encoding/json"
	"errors"
	"strings"
)

// Chat roles accepted on the OpenAI surface.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatRequest is the OpenAI chat-completion request. Unknown fields are ignored.
type ChatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

// ChatMessage represents an OpenAI chat message.
type ChatMessage struct {
	Role    string         `json:"role"`
	Content MessageContent `json:"content"`
}

// MessageContent accepts both the string form and the content-parts array form.
// Only text parts are kept; they are joined with a newline.
type MessageContent string

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// UnmarshalJSON decodes a string, an array of content parts or null.
func (c *MessageContent) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*c = MessageContent(text)
		return nil
	}

	var parts []contentPart
	if err := json.Unmarshal(data, &parts); err != nil {
		return errors.New("content must be a string or an array of content parts")
	}

	texts := make([]string, 0, len(parts))
	for _, part := range parts {
		if part.Type == "text" {
			texts = append(texts, part.Text)
		}
	}
	*c = MessageContent(strings.Join(texts, "\n"))
	return nil
}

// CatalogModel is one raw entry of the vendor model list.
type CatalogModel struct {
	ID              string `json:"id"`
	Model           string `json:"model"`
	Provider        string `json:"provider"`
	RequiresPremium bool   `json:"requires_better_ai"`
	Availability    string `json:"availability"`
}

// Deprecated reports whether the vendor marks the model as deprecated.
func (m CatalogModel) Deprecated() bool {
	return strings.EqualFold(m.Availability, "deprecated")
}

// ModelEntry maps a public model id to the vendor provider and internal model.
type ModelEntry struct {
	PublicID      string `json:"id"`
	Provider      string `json:"provider"`
	InternalModel string `json:"model"`
}

// CatalogFilter holds the feature gates applied to the vendor model list.
type CatalogFilter struct {
	ShowPremium       bool `env:"CATALOG_SHOW_PREMIUM"       envDefault:"true"`
	IncludeDeprecated bool `env:"CATALOG_INCLUDE_DEPRECATED" envDefault:"true"`
}

// Allows reports whether the model passes both gates.
func (f CatalogFilter) Allows(m CatalogModel) bool {
	return (f.ShowPremium || !m.RequiresPremium) && (f.IncludeDeprecated || !m.Deprecated())
}

// VendorMessage is a message in the vendor chat schema.
type VendorMessage struct {
	Author  string        `json:"author"`
	Content VendorContent `json:"content"`
}

// VendorContent wraps the vendor message text.
type VendorContent struct {
	Text string `json:"text"`
}

// VendorTool is a placeholder for the vendor tool schema; the relay never sends tools.
type VendorTool struct{}

// VendorChatRequest is the body of the vendor chat call.
type VendorChatRequest struct {
	Model                        string          `json:"model"`
	Provider                     string          `json:"provider"`
	Messages                     []VendorMessage `json:"messages"`
	SystemInstruction            string          `json:"system_instruction"`
	AdditionalSystemInstructions string          `json:"additional_system_instructions"`
	Debug                        bool            `json:"debug"`
	Locale                       string          `json:"locale"`
	Source                       string          `json:"source"`
	ThreadID                     string          `json:"thread_id"`
	Tools                        []VendorTool    `json:"tools"`
	Temperature                  float64         `json:"temperature"`
}

// StreamEvent is one decoded vendor stream event.
// FinishReason is nil both when the field is absent and when it is null.
type StreamEvent struct {
	Text         *string
	FinishReason *string
	Err          error
}

// ChatCompletion is the OpenAI non-streaming response.
type ChatCompletion struct {
	ID          string             `json:"id"`
	Object      string             `json:"object"`
	Created     int64              `json:"created"`
	Model       string             `json:"model"`
	Choices     []CompletionChoice `json:"choices"`
	Usage       Usage              `json:"usage"`
	ServiceTier string             `json:"service_tier"`
}

// CompletionChoice is a choice of a ChatCompletion.
type CompletionChoice struct {
	Index        int               `json:"index"`
	Message      CompletionMessage `json:"message"`
	Logprobs     *json.RawMessage  `json:"logprobs"`
	FinishReason string            `json:"finish_reason"`
}

// CompletionMessage is the assistant message of a choice.
type CompletionMessage struct {
	Role        string   `json:"role"`
	Content     string   `json:"content"`
	Refusal     *string  `json:"refusal"`
	Annotations []string `json:"annotations"`
}

// ChatCompletionChunk is one OpenAI streaming chunk.
type ChatCompletionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

// ChunkChoice is a choice of a ChatCompletionChunk.
type ChunkChoice struct {
	Index        int        `json:"index"`
	Delta        ChunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

// ChunkDelta carries the incremental content; it is empty on the final marker.
type ChunkDelta struct {
	Content *string `json:"content,omitempty"`
}

// StreamChunk is the unit handed from the gateway to the HTTP layer.
type StreamChunk struct {
	Chunk ChatCompletionChunk
	Error error
}

// Usage is always zero; the vendor reports no token counts.
type Usage struct {
	PromptTokens            int                     `json:"prompt_tokens"`
	CompletionTokens        int                     `json:"completion_tokens"`
	TotalTokens             int                     `json:"total_tokens"`
	PromptTokensDetails     PromptTokensDetails     `json:"prompt_tokens_details"`
	CompletionTokensDetails CompletionTokensDetails `json:"completion_tokens_details"`
}

// PromptTokensDetails mirrors the OpenAI usage breakdown.
type PromptTokensDetails struct {
	CachedTokens int `json:"cached_tokens"`
	AudioTokens  int `json:"audio_tokens"`
}

// CompletionTokensDetails mirrors the OpenAI usage breakdown.
type CompletionTokensDetails struct {
	ReasoningTokens          int `json:"reasoning_tokens"`
	AudioTokens              int `json:"audio_tokens"`
	AcceptedPredictionTokens int `json:"accepted_prediction_tokens"`
	RejectedPredictionTokens int `json:"rejected_prediction_tokens"`
}

// ModelList is the OpenAI /v1/models response.
type ModelList struct {
	Object string      `json:"object"`
	Data   []ModelCard `json:"data"`
}

// ModelCard is one model of a ModelList.
type ModelCard struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}
