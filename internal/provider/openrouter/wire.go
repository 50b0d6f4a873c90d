package openrouter

import (
	"encoding/json"

	"llm-playground/internal/models"
	"llm-playground/internal/translator"
)

type chatPayload struct {
	Model            string                       `json:"model"`
	Messages         []translator.UpstreamMessage `json:"messages"`
	Stream           bool                         `json:"stream,omitempty"`
	Temperature      float64                      `json:"temperature"`
	MaxTokens        int                          `json:"max_tokens"`
	TopP             float64                      `json:"top_p"`
	FrequencyPenalty float64                      `json:"frequency_penalty"`
	PresencePenalty  float64                      `json:"presence_penalty"`
	Modalities       []string                     `json:"modalities,omitempty"`
}

func buildChatPayload(req models.ChatRequest, stream bool) chatPayload {
	return chatPayload{
		Model:            req.Model,
		Messages:         translator.ToUpstreamMessages(req.Messages),
		Stream:           stream,
		Temperature:      req.HyperParams.Temperature,
		MaxTokens:        req.HyperParams.MaxTokens,
		TopP:             req.HyperParams.TopP,
		FrequencyPenalty: req.HyperParams.FrequencyPenalty,
		PresencePenalty:  req.HyperParams.PresencePenalty,
		Modalities:       req.Modalities,
	}
}

// extras holds the fields of an upstream object that are not part of its documented schema.
type extras map[string]json.RawMessage

func splitExtras(data []byte, known []string) (extras, error) {
	var all extras
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, key := range known {
		delete(all, key)
	}
	return all, nil
}

// Documented fields per object; anything else lands in the extension bag.
var (
	completionFields = []string{"id", "object", "created", "model", "choices", "usage", "service_tier", "system_fingerprint"}
	choiceFields     = []string{"index", "delta", "finish_reason", "logprobs"}
	deltaFields      = []string{"role", "content", "refusal", "tool_calls", "function_call"}
	messageFields    = []string{"role", "content", "refusal", "tool_calls", "function_call", "audio", "annotations"}
)

type streamChunk struct {
	Choices []streamChoice  `json:"choices"`
	Images  json.RawMessage `json:"images"`
	Error   *apiErrorObject `json:"error"`
	Extra   extras          `json:"-"`
}

func (c *streamChunk) UnmarshalJSON(data []byte) error {
	type alias streamChunk
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := splitExtras(data, completionFields)
	if err != nil {
		return err
	}
	*c = streamChunk(a)
	c.Extra = extra
	return nil
}

type streamChoice struct {
	Delta *streamDelta `json:"delta"`
	Extra extras       `json:"-"`
}

func (c *streamChoice) UnmarshalJSON(data []byte) error {
	type alias streamChoice
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := splitExtras(data, choiceFields)
	if err != nil {
		return err
	}
	*c = streamChoice(a)
	c.Extra = extra
	return nil
}

type streamDelta struct {
	Content json.RawMessage `json:"content"`
	Extra   extras          `json:"-"`
}

func (d *streamDelta) UnmarshalJSON(data []byte) error {
	type alias streamDelta
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := splitExtras(data, deltaFields)
	if err != nil {
		return err
	}
	*d = streamDelta(a)
	d.Extra = extra
	return nil
}

type chatResponse struct {
	Choices []responseChoice `json:"choices"`
	Images  json.RawMessage  `json:"images"`
	Error   *apiErrorObject  `json:"error"`
	Extra   extras           `json:"-"`
}

func (r *chatResponse) UnmarshalJSON(data []byte) error {
	type alias chatResponse
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := splitExtras(data, completionFields)
	if err != nil {
		return err
	}
	*r = chatResponse(a)
	r.Extra = extra
	return nil
}

type responseChoice struct {
	Message *responseMessage `json:"message"`
}

type responseMessage struct {
	Content json.RawMessage     `json:"content"`
	Audio   *models.AudioOutput `json:"audio"`
	Extra   extras              `json:"-"`
}

func (m *responseMessage) UnmarshalJSON(data []byte) error {
	type alias responseMessage
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	extra, err := splitExtras(data, messageFields)
	if err != nil {
		return err
	}
	*m = responseMessage(a)
	m.Extra = extra
	return nil
}

type modelsResponse struct {
	Data []models.RawModel `json:"data"`
}

type apiErrorResponse struct {
	Error apiErrorObject `json:"error"`
}

type apiErrorObject struct {
	Message string          `json:"message"`
	Code    json.RawMessage `json:"code"`
}

func (e apiErrorObject) code() string {
	if len(e.Code) == 0 || string(e.Code) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Code, &s); err == nil {
		return s
	}
	return string(e.Code)
}
