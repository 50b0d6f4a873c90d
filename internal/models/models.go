package models

import (
	"encoding/json"
	"fmt"
)

// Message roles accepted from playground clients.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Modalities a model can consume or produce.
const (
	ModalityText  = "text"
	ModalityImage = "image"
	ModalityAudio = "audio"
	ModalityVideo = "video"
)

// PartKind identifies which variant a ContentPart carries.
type PartKind int

const (
	// PartOpaque is an unrecognised part forwarded upstream unchanged.
	PartOpaque PartKind = iota
	PartText
	PartImage
	PartAudio
)

// AudioRef is base64 audio attached to a message.
type AudioRef struct {
	Data   string
	Format string
}

// ContentPart is one element of a multi-modal message body.
type ContentPart struct {
	Kind   PartKind
	Text   string
	URL    string
	Detail string
	Audio  AudioRef
	Raw    json.RawMessage
}

// TextPart builds a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Kind: PartText, Text: text}
}

// ImagePart builds an image reference; url may be a remote URL or a data URL.
func ImagePart(url, detail string) ContentPart {
	return ContentPart{Kind: PartImage, URL: url, Detail: detail}
}

// AudioPart builds an inline audio part.
func AudioPart(data, format string) ContentPart {
	return ContentPart{Kind: PartAudio, Audio: AudioRef{Data: data, Format: format}}
}

// OpaquePart wraps a part the gateway does not understand.
func OpaquePart(raw json.RawMessage) ContentPart {
	return ContentPart{Kind: PartOpaque, Raw: raw}
}

// Message is a single chat turn. Parts is nil for plain text messages.
type Message struct {
	Role  string
	Text  string
	Parts []ContentPart
}

// IsText reports whether the message carries plain text content.
func (m Message) IsText() bool {
	return m.Parts == nil
}

// HyperParams holds the sampling parameters forwarded upstream.
type HyperParams struct {
	Temperature      float64
	MaxTokens        int
	TopP             float64
	FrequencyPenalty float64
	PresencePenalty  float64
}

// DefaultHyperParams returns the values used when a client omits a parameter.
func DefaultHyperParams() HyperParams {
	return HyperParams{
		Temperature:      0.7,
		MaxTokens:        4096,
		TopP:             1.0,
		FrequencyPenalty: 0.0,
		PresencePenalty:  0.0,
	}
}

// ChatRequest is the canonical representation of a playground chat call.
type ChatRequest struct {
	Model       string
	Messages    []Message
	HyperParams HyperParams
	Modalities  []string
}

// EventType tags a StreamEvent.
type EventType string

const (
	EventText  EventType = "text"
	EventImage EventType = "image"
	EventError EventType = "error"
	EventDone  EventType = "done"
)

// StreamEvent is one normalized element of a streaming chat response.
type StreamEvent struct {
	Type    EventType
	Content string
	URL     string
}

// TextDelta builds an incremental text event.
func TextDelta(content string) StreamEvent {
	return StreamEvent{Type: EventText, Content: content}
}

// ImageDelta builds an image event.
func ImageDelta(url string) StreamEvent {
	return StreamEvent{Type: EventImage, URL: url}
}

// ErrorEvent builds an in-stream error event.
func ErrorEvent(message string) StreamEvent {
	return StreamEvent{Type: EventError, Content: message}
}

// Done builds the terminal marker.
func Done() StreamEvent {
	return StreamEvent{Type: EventDone}
}

// MarshalJSON renders the client wire shape of the event.
func (e StreamEvent) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case EventText, EventError:
		return json.Marshal(struct {
			Type    EventType `json:"type"`
			Content string    `json:"content"`
		}{e.Type, e.Content})
	case EventImage:
		return json.Marshal(struct {
			Type EventType `json:"type"`
			URL  string    `json:"url"`
		}{e.Type, e.URL})
	case EventDone:
		return json.Marshal(struct {
			Type EventType `json:"type"`
		}{e.Type})
	default:
		return nil, fmt.Errorf("unknown stream event type %q", e.Type)
	}
}

// AudioOutput is audio produced by the model in a non-streaming completion.
type AudioOutput struct {
	ID         string `json:"id,omitempty"`
	Data       string `json:"data"`
	Transcript string `json:"transcript,omitempty"`
	ExpiresAt  int64  `json:"expires_at,omitempty"`
}

// ChatResult aggregates a non-streaming completion.
type ChatResult struct {
	Text   string        `json:"text"`
	Images []string      `json:"images"`
	Audio  []AudioOutput `json:"audio"`
}

// NewChatResult returns an empty result whose lists encode as [] rather than null.
func NewChatResult() ChatResult {
	return ChatResult{
		Images: []string{},
		Audio:  []AudioOutput{},
	}
}
