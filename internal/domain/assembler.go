package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	objectCompletion = "chat.completion"
	objectChunk      = "chat.completion.chunk"
	objectModel      = "model"
	objectList       = "list"

	// FinishReasonStop is reported on every aggregated completion.
	FinishReasonStop = "stop"

	serviceTierDefault = "default"
)

// ResponseAssembler builds OpenAI response objects for one response.
// Every object it returns shares the same id, model and creation time.
type ResponseAssembler struct {
	id      string
	model   string
	created int64
}

// NewResponseAssembler creates an assembler echoing the caller's model id.
func NewResponseAssembler(model string, now time.Time) *ResponseAssembler {
	return &ResponseAssembler{
		id:      NewCompletionID(),
		model:   model,
		created: now.Unix(),
	}
}

// NewCompletionID returns a synthetic "chatcmpl-" identifier.
func NewCompletionID() string {
	return "chatcmpl-" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ID returns the response id.
func (a *ResponseAssembler) ID() string {
	return a.id
}

// Chunk builds a content delta chunk with a null finish reason.
func (a *ResponseAssembler) Chunk(text string) ChatCompletionChunk {
	return a.chunk(ChunkDelta{Content: &text}, nil)
}

// FinishChunk builds the final marker chunk: empty delta and the finish reason.
func (a *ResponseAssembler) FinishChunk(reason string) ChatCompletionChunk {
	return a.chunk(ChunkDelta{}, &reason)
}

func (a *ResponseAssembler) chunk(delta ChunkDelta, finishReason *string) ChatCompletionChunk {
	return ChatCompletionChunk{
		ID:      a.id,
		Object:  objectChunk,
		Created: a.created,
		Model:   a.model,
		Choices: []ChunkChoice{
			{
				Index:        0,
				Delta:        delta,
				FinishReason: finishReason,
			},
		},
	}
}

// Completion builds the aggregated response. The finish reason is always
// "stop" since the vendor does not distinguish reasons in aggregate.
func (a *ResponseAssembler) Completion(content string) *ChatCompletion {
	return &ChatCompletion{
		ID:      a.id,
		Object:  objectCompletion,
		Created: a.created,
		Model:   a.model,
		Choices: []CompletionChoice{
			{
				Index: 0,
				Message: CompletionMessage{
					Role:        RoleAssistant,
					Content:     content,
					Refusal:     nil,
					Annotations: []string{},
				},
				Logprobs:     nil,
				FinishReason: FinishReasonStop,
			},
		},
		Usage:       Usage{},
		ServiceTier: serviceTierDefault,
	}
}

// NewModelList renders the catalog as an OpenAI model list.
func NewModelList(catalog *Catalog, now time.Time) *ModelList {
	models := catalog.Models()
	list := &ModelList{
		Object: objectList,
		Data:   make([]ModelCard, 0, len(models)),
	}
	for _, m := range models {
		list.Data = append(list.Data, ModelCard{
			ID:      m.PublicID,
			Object:  objectModel,
			Created: now.Unix(),
			OwnedBy: m.Provider,
		})
	}
	return list
}
