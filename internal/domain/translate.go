package domain

// DefaultSystemInstruction is sent when the conversation has no leading system message.
const DefaultSystemInstruction = "markdown"

// DefaultTemperature is used when the caller omits temperature.
const DefaultTemperature = 0.5

// Fixed vendor request fields.
const (
	vendorLocale = "en-US"
	vendorSource = "ai_chat"
)

// Translation is the vendor view of an OpenAI conversation.
type Translation struct {
	Messages          []VendorMessage
	SystemInstruction string
}

// TranslateMessages maps OpenAI messages to vendor messages. A system message
// at index 0 becomes the system instruction; user and assistant messages are
// kept in order; everything else is dropped.
func TranslateMessages(messages []ChatMessage) Translation {
	out := Translation{
		Messages:          make([]VendorMessage, 0, len(messages)),
		SystemInstruction: DefaultSystemInstruction,
	}

	for i, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			if i == 0 {
				out.SystemInstruction = string(msg.Content)
			}
		case RoleUser, RoleAssistant:
			out.Messages = append(out.Messages, VendorMessage{
				Author:  msg.Role,
				Content: VendorContent{Text: string(msg.Content)},
			})
		}
	}

	return out
}

// BuildVendorRequest assembles the vendor chat body for the resolved model.
func BuildVendorRequest(entry ModelEntry, t Translation, temperature *float64, threadID string) *VendorChatRequest {
	temp := DefaultTemperature
	if temperature != nil {
		temp = *temperature
	}

	return &VendorChatRequest{
		Model:                        entry.InternalModel,
		Provider:                     entry.Provider,
		Messages:                     t.Messages,
		SystemInstruction:            t.SystemInstruction,
		AdditionalSystemInstructions: "",
		Debug:                        false,
		Locale:                       vendorLocale,
		Source:                       vendorSource,
		ThreadID:                     threadID,
		Tools:                        []VendorTool{},
		Temperature:                  temp,
	}
}
