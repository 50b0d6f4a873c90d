package translator

import (
	"encoding/json"
	"errors"
	"testing"

	"llm-playground/internal/models"
)

func TestChatRequestDefaults(t *testing.T) {
	body := `{"model":" openai/gpt-4o ","messages":[{"role":"user","content":"hi"}]}`

	var req ChatRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if req.Model != "openai/gpt-4o" {
		t.Errorf("Model = %q, want openai/gpt-4o", req.Model)
	}
	if req.HyperParams != models.DefaultHyperParams() {
		t.Errorf("HyperParams = %+v, want defaults", req.HyperParams)
	}
	if req.Modalities != nil {
		t.Errorf("Modalities = %v, want nil", req.Modalities)
	}
}

func TestChatRequestPartialHyperParams(t *testing.T) {
	body := `{"model":"m/x","messages":[{"role":"user","content":"hi"}],"hyper_params":{"temperature":1.5,"max_tokens":128}}`

	var req ChatRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := models.DefaultHyperParams()
	want.Temperature = 1.5
	want.MaxTokens = 128
	if req.HyperParams != want {
		t.Errorf("HyperParams = %+v, want %+v", req.HyperParams, want)
	}
}

func TestChatRequestKeepsBlankAndEmptyAssistantText(t *testing.T) {
	body := `{"model":"m/x","messages":[
		{"role":"user","content":"   "},
		{"role":"assistant","content":""},
		{"role":"user","content":"again"}
	]}`

	var req ChatRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	upstream := ToUpstreamMessages(req.ToModel().Messages)
	want := []string{"   ", "", "again"}
	if len(upstream) != len(want) {
		t.Fatalf("messages = %d, want %d", len(upstream), len(want))
	}
	for i, msg := range upstream {
		if msg.Content != want[i] {
			t.Errorf("message[%d] content = %#v, want %q", i, msg.Content, want[i])
		}
	}
}

func TestChatRequestValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"missing model", `{"messages":[{"role":"user","content":"hi"}]}`, errEmptyModel},
		{"no messages", `{"model":"m/x","messages":[]}`, errEmptyMessages},
		{"bad role", `{"model":"m/x","messages":[{"role":"tool","content":"hi"}]}`, errInvalidRole},
		{"empty user text", `{"model":"m/x","messages":[{"role":"user","content":""}]}`, errInvalidContent},
		{"empty system text", `{"model":"m/x","messages":[{"role":"system","content":""}]}`, errInvalidContent},
		{"empty parts", `{"model":"m/x","messages":[{"role":"user","content":[]}]}`, errInvalidContent},
		{"null content", `{"model":"m/x","messages":[{"role":"user","content":null}]}`, errInvalidContent},
		{"numeric content", `{"model":"m/x","messages":[{"role":"user","content":42}]}`, errInvalidContent},
		{"temperature too high", `{"model":"m/x","messages":[{"role":"user","content":"hi"}],"hyper_params":{"temperature":2.5}}`, errInvalidParameter},
		{"top_p negative", `{"model":"m/x","messages":[{"role":"user","content":"hi"}],"hyper_params":{"top_p":-0.1}}`, errInvalidParameter},
		{"max_tokens zero", `{"model":"m/x","messages":[{"role":"user","content":"hi"}],"hyper_params":{"max_tokens":0}}`, errInvalidParameter},
		{"unknown modality", `{"model":"m/x","messages":[{"role":"user","content":"hi"}],"modalities":["smell"]}`, errInvalidModality},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req ChatRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Unmarshal() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodePartVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want models.PartKind
	}{
		{"text", `{"type":"text","text":"hello"}`, models.PartText},
		{"empty text", `{"type":"text","text":""}`, models.PartText},
		{"image", `{"type":"image_url","image_url":{"url":"data:image/png;base64,AAAA"}}`, models.PartImage},
		{"audio", `{"type":"input_audio","input_audio":{"data":"UklGR","format":"wav"}}`, models.PartAudio},
		{"image without url", `{"type":"image_url","image_url":{}}`, models.PartOpaque},
		{"text without text", `{"type":"text"}`, models.PartOpaque},
		{"unknown type", `{"type":"file","file":{"file_id":"f1"}}`, models.PartOpaque},
		{"bare string", `"just words"`, models.PartOpaque},
		{"wrong field type", `{"type":"text","text":7}`, models.PartOpaque},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			part := DecodePart(json.RawMessage(tt.raw))
			if part.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", part.Kind, tt.want)
			}
		})
	}
}

func TestToUpstreamTextIdentity(t *testing.T) {
	inputs := []string{"hi", "  padded  ", "multi\nline", "unicode ✓ 你好", `{"looks":"like json"}`}
	for _, in := range inputs {
		out := ToUpstream(models.Message{Role: models.RoleUser, Text: in})
		got, ok := out.Content.(string)
		if !ok {
			t.Fatalf("Content type = %T, want string", out.Content)
		}
		if got != in {
			t.Errorf("Content = %q, want %q", got, in)
		}
		if out.Role != models.RoleUser {
			t.Errorf("Role = %q, want user", out.Role)
		}
	}
}

func TestToUpstreamPartsPreserveOrder(t *testing.T) {
	opaque := json.RawMessage(`{"type":"file","file":{"file_id":"f1"}}`)
	msg := models.Message{
		Role: models.RoleUser,
		Parts: []models.ContentPart{
			models.TextPart("describe"),
			models.ImagePart("https://example.com/cat.png", "low"),
			models.AudioPart("UklGR", "wav"),
			models.OpaquePart(opaque),
			models.TextPart("thanks"),
		},
	}

	data, err := json.Marshal(ToUpstream(msg))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded struct {
		Role    string            `json:"role"`
		Content []json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := []string{
		`{"type":"text","text":"describe"}`,
		`{"type":"image_url","image_url":{"url":"https://example.com/cat.png","detail":"low"}}`,
		`{"type":"input_audio","input_audio":{"data":"UklGR","format":"wav"}}`,
		`{"type":"file","file":{"file_id":"f1"}}`,
		`{"type":"text","text":"thanks"}`,
	}
	if len(decoded.Content) != len(want) {
		t.Fatalf("len(Content) = %d, want %d", len(decoded.Content), len(want))
	}
	for i := range want {
		if string(decoded.Content[i]) != want[i] {
			t.Errorf("Content[%d] = %s, want %s", i, decoded.Content[i], want[i])
		}
	}
}

func TestMessageRoundTripThroughRequest(t *testing.T) {
	body := `{"model":"m/x","messages":[
		{"role":"system","content":"be brief"},
		{"role":"user","content":[{"type":"text","text":"what is this?"},{"type":"image_url","image_url":{"url":"https://x/y.png"}},{"type":"custom","payload":1}]}
	]}`

	var req ChatRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	canonical := req.ToModel()
	if !canonical.Messages[0].IsText() {
		t.Fatal("system message should be plain text")
	}
	upstream := ToUpstreamMessages(canonical.Messages)
	parts, ok := upstream[1].Content.([]any)
	if !ok {
		t.Fatalf("Content type = %T, want []any", upstream[1].Content)
	}
	if len(parts) != 3 {
		t.Fatalf("len(parts) = %d, want 3", len(parts))
	}
	raw, ok := parts[2].(json.RawMessage)
	if !ok {
		t.Fatalf("parts[2] type = %T, want json.RawMessage", parts[2])
	}
	if string(raw) != `{"type":"custom","payload":1}` {
		t.Errorf("opaque part = %s", raw)
	}
}
