package translator

import (
	"encoding/json"

	"llm-playground/internal/models"
)

// UpstreamMessage is a chat message in the OpenAI-compatible wire format.
// Content is either a string or a slice of part objects.
type UpstreamMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type textPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type imagePart struct {
	Type     string   `json:"type"`
	ImageURL imageURL `json:"image_url"`
}

type inputAudio struct {
	Data   string `json:"data"`
	Format string `json:"format"`
}

type audioPart struct {
	Type       string     `json:"type"`
	InputAudio inputAudio `json:"input_audio"`
}

// ToUpstream converts a message into the upstream wire shape. Text content is copied
// verbatim; part lists map one-to-one in order.
func ToUpstream(msg models.Message) UpstreamMessage {
	if msg.IsText() {
		return UpstreamMessage{Role: msg.Role, Content: msg.Text}
	}

	parts := make([]any, 0, len(msg.Parts))
	for _, part := range msg.Parts {
		parts = append(parts, upstreamPart(part))
	}
	return UpstreamMessage{Role: msg.Role, Content: parts}
}

// ToUpstreamMessages converts a conversation, preserving order.
func ToUpstreamMessages(msgs []models.Message) []UpstreamMessage {
	out := make([]UpstreamMessage, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, ToUpstream(msg))
	}
	return out
}

func upstreamPart(part models.ContentPart) any {
	switch part.Kind {
	case models.PartText:
		return textPart{Type: "text", Text: part.Text}
	case models.PartImage:
		return imagePart{Type: "image_url", ImageURL: imageURL{URL: part.URL, Detail: part.Detail}}
	case models.PartAudio:
		return audioPart{Type: "input_audio", InputAudio: inputAudio{Data: part.Audio.Data, Format: part.Audio.Format}}
	default:
		if len(part.Raw) == 0 {
			return json.RawMessage("null")
		}
		return part.Raw
	}
}
