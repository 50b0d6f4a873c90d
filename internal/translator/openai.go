package translator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"llm-playground/internal/models"
)

var (
	errEmptyModel       = errors.New("model must be provided")
	errEmptyMessages    = errors.New("at least one message is required")
	errInvalidRole      = errors.New("invalid role")
	errInvalidContent   = errors.New("invalid message content")
	errInvalidParameter = errors.New("invalid hyper parameter")
	errInvalidModality  = errors.New("invalid modality")
)

var allowedRoles = map[string]struct{}{
	models.RoleSystem:    {},
	models.RoleUser:      {},
	models.RoleAssistant: {},
}

var allowedModalities = map[string]struct{}{
	models.ModalityText:  {},
	models.ModalityImage: {},
	models.ModalityAudio: {},
}

// ChatRequest models the playground chat request body.
type ChatRequest struct {
	Model       string
	Messages    []ChatMessage
	HyperParams models.HyperParams
	Modalities  []string
}

// UnmarshalJSON applies per-parameter defaults and enforces validation.
func (r *ChatRequest) UnmarshalJSON(data []byte) error {
	type hyperParams struct {
		Temperature      *float64 `json:"temperature"`
		MaxTokens        *int     `json:"max_tokens"`
		TopP             *float64 `json:"top_p"`
		FrequencyPenalty *float64 `json:"frequency_penalty"`
		PresencePenalty  *float64 `json:"presence_penalty"`
	}
	type alias struct {
		Model       string        `json:"model"`
		Messages    []ChatMessage `json:"messages"`
		HyperParams *hyperParams  `json:"hyper_params"`
		Modalities  []string      `json:"modalities"`
	}

	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode chat request: %w", err)
	}

	params := models.DefaultHyperParams()
	if hp := raw.HyperParams; hp != nil {
		if hp.Temperature != nil {
			params.Temperature = *hp.Temperature
		}
		if hp.MaxTokens != nil {
			params.MaxTokens = *hp.MaxTokens
		}
		if hp.TopP != nil {
			params.TopP = *hp.TopP
		}
		if hp.FrequencyPenalty != nil {
			params.FrequencyPenalty = *hp.FrequencyPenalty
		}
		if hp.PresencePenalty != nil {
			params.PresencePenalty = *hp.PresencePenalty
		}
	}

	r.Model = strings.TrimSpace(raw.Model)
	r.Messages = raw.Messages
	r.HyperParams = params
	r.Modalities = raw.Modalities

	return r.validate()
}

func (r *ChatRequest) validate() error {
	if r.Model == "" {
		return errEmptyModel
	}
	if len(r.Messages) == 0 {
		return errEmptyMessages
	}
	for i, msg := range r.Messages {
		if err := msg.validate(); err != nil {
			return fmt.Errorf("message[%d]: %w", i, err)
		}
	}

	p := r.HyperParams
	if p.Temperature < 0 || p.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be within [0, 2], got %g", errInvalidParameter, p.Temperature)
	}
	if p.MaxTokens <= 0 {
		return fmt.Errorf("%w: max_tokens must be positive, got %d", errInvalidParameter, p.MaxTokens)
	}
	if p.TopP < 0 || p.TopP > 1 {
		return fmt.Errorf("%w: top_p must be within [0, 1], got %g", errInvalidParameter, p.TopP)
	}

	for _, modality := range r.Modalities {
		if _, ok := allowedModalities[modality]; !ok {
			return fmt.Errorf("%w: %q", errInvalidModality, modality)
		}
	}
	return nil
}

// ToModel converts the request into the canonical format.
func (r ChatRequest) ToModel() models.ChatRequest {
	msgs := make([]models.Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		msgs = append(msgs, m.ToModel())
	}

	var modalities []string
	if len(r.Modalities) > 0 {
		modalities = append(modalities, r.Modalities...)
	}

	return models.ChatRequest{
		Model:       r.Model,
		Messages:    msgs,
		HyperParams: r.HyperParams,
		Modalities:  modalities,
	}
}

// ChatMessage captures a single message within the chat request.
type ChatMessage struct {
	Role  string
	Text  string
	Parts []models.ContentPart
}

// UnmarshalJSON supports string and array-of-parts content.
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	type alias struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}

	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}

	text, parts, err := decodeContent(raw.Content)
	if err != nil {
		return err
	}

	m.Role = strings.TrimSpace(raw.Role)
	m.Text = text
	m.Parts = parts

	return m.validate()
}

func (m ChatMessage) validate() error {
	if _, ok := allowedRoles[m.Role]; !ok {
		return fmt.Errorf("%w: %q", errInvalidRole, m.Role)
	}
	if m.Parts == nil && m.Text == "" && m.Role != models.RoleAssistant {
		return fmt.Errorf("%w: message content must not be empty", errInvalidContent)
	}
	if m.Parts != nil && len(m.Parts) == 0 {
		return fmt.Errorf("%w: content parts must not be empty", errInvalidContent)
	}
	return nil
}

// ToModel converts the message into the canonical format.
func (m ChatMessage) ToModel() models.Message {
	return models.Message{
		Role:  m.Role,
		Text:  m.Text,
		Parts: m.Parts,
	}
}

func decodeContent(raw json.RawMessage) (string, []models.ContentPart, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil, fmt.Errorf("%w: missing content", errInvalidContent)
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return "", nil, fmt.Errorf("%w: content must be a string or a list of parts", errInvalidContent)
	}

	parts := make([]models.ContentPart, 0, len(items))
	for _, item := range items {
		parts = append(parts, DecodePart(item))
	}
	return "", parts, nil
}

// DecodePart maps one raw content element onto its variant. Elements whose shape does
// not match a known variant become opaque parts.
func DecodePart(raw json.RawMessage) models.ContentPart {
	var probe struct {
		Type     string  `json:"type"`
		Text     *string `json:"text"`
		ImageURL *struct {
			URL    string `json:"url"`
			Detail string `json:"detail"`
		} `json:"image_url"`
		InputAudio *struct {
			Data   string `json:"data"`
			Format string `json:"format"`
		} `json:"input_audio"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return models.OpaquePart(raw)
	}

	switch probe.Type {
	case "text":
		if probe.Text != nil {
			return models.TextPart(*probe.Text)
		}
	case "image_url":
		if probe.ImageURL != nil && probe.ImageURL.URL != "" {
			return models.ImagePart(probe.ImageURL.URL, probe.ImageURL.Detail)
		}
	case "input_audio":
		if probe.InputAudio != nil && probe.InputAudio.Data != "" {
			return models.AudioPart(probe.InputAudio.Data, probe.InputAudio.Format)
		}
	}
	return models.OpaquePart(raw)
}
