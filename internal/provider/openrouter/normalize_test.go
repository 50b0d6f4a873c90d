package openrouter

import (
	"encoding/json"
	"slices"
	"testing"

	"llm-playground/internal/models"
)

func decodeChunk(t *testing.T, data string) streamChunk {
	t.Helper()
	var chunk streamChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		t.Fatalf("Unmarshal(%s) error = %v", data, err)
	}
	return chunk
}

func TestChunkEvents(t *testing.T) {
	tests := []struct {
		name  string
		chunk string
		want  []models.StreamEvent
	}{
		{
			name:  "text delta",
			chunk: `{"choices":[{"delta":{"content":"Hi"}}]}`,
			want:  []models.StreamEvent{models.TextDelta("Hi")},
		},
		{
			name:  "empty content",
			chunk: `{"choices":[{"delta":{"role":"assistant","content":""}}]}`,
			want:  nil,
		},
		{
			name:  "no choices",
			chunk: `{"id":"gen-1","choices":[],"usage":{"total_tokens":3}}`,
			want:  nil,
		},
		{
			name:  "content parts",
			chunk: `{"choices":[{"delta":{"content":[{"type":"text","text":"a"},{"type":"image_url","image_url":{"url":"http://img/1"}},{"type":"image","url":"http://img/2","image_url":{"url":"http://ignored"}},"plain",{"type":"tool","x":1}]}}]}`,
			want: []models.StreamEvent{
				models.TextDelta("a"),
				models.ImageDelta("http://img/1"),
				models.ImageDelta("http://img/2"),
				models.TextDelta("plain"),
			},
		},
		{
			name:  "choice extension images",
			chunk: `{"choices":[{"index":0,"delta":{},"images":[{"url":"http://x"}]}]}`,
			want:  []models.StreamEvent{models.ImageDelta("http://x")},
		},
		{
			name:  "delta extension images prefer image_url",
			chunk: `{"choices":[{"delta":{"content":"t","images":[{"type":"image_url","image_url":{"url":"data:image/png;base64,AA"},"url":"http://other"}]}}]}`,
			want:  []models.StreamEvent{models.TextDelta("t"), models.ImageDelta("data:image/png;base64,AA")},
		},
		{
			name:  "extension entries must be objects",
			chunk: `{"choices":[{"delta":{"images":["http://bare"]}}]}`,
			want:  nil,
		},
		{
			name:  "top level strings without choices",
			chunk: `{"images":["http://a","http://b"]}`,
			want:  []models.StreamEvent{models.ImageDelta("http://a"), models.ImageDelta("http://b")},
		},
		{
			name:  "top level objects with choices match both sites",
			chunk: `{"choices":[{"delta":{}}],"images":[{"url":"http://top"}]}`,
			want:  []models.StreamEvent{models.ImageDelta("http://top"), models.ImageDelta("http://top")},
		},
		{
			name:  "all sites in order",
			chunk: `{"choices":[{"delta":{"content":"x","images":[{"url":"http://delta"}]},"images":[{"url":"http://choice"}]}]}`,
			want: []models.StreamEvent{
				models.TextDelta("x"),
				models.ImageDelta("http://choice"),
				models.ImageDelta("http://delta"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chunkEvents(decodeChunk(t, tt.chunk))
			if !slices.Equal(got, tt.want) {
				t.Errorf("chunkEvents() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestImageStrategiesIndependent(t *testing.T) {
	chunk := decodeChunk(t, `{
		"choices": [{"delta": {"images": [{"url": "http://delta"}]}, "images": [{"url": "http://choice"}]}],
		"images": [{"image_url": {"url": "http://chunk"}}, "http://bare"]
	}`)

	tests := []struct {
		name     string
		strategy imageStrategy
		want     []models.StreamEvent
	}{
		{"chunk extension", chunkExtensionImages, []models.StreamEvent{models.ImageDelta("http://chunk")}},
		{"choice extension", choiceExtensionImages, []models.StreamEvent{models.ImageDelta("http://choice")}},
		{"delta extension", deltaExtensionImages, []models.StreamEvent{models.ImageDelta("http://delta")}},
		{"images attribute", chunkImagesAttribute, []models.StreamEvent{models.ImageDelta("http://chunk"), models.ImageDelta("http://bare")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.strategy(chunk); !slices.Equal(got, tt.want) {
				t.Errorf("strategy() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtensionBagExcludesDocumentedFields(t *testing.T) {
	chunk := decodeChunk(t, `{"id":"gen","model":"m","choices":[{"index":0,"delta":{"role":"assistant","content":"x","reasoning":"r"},"native_finish_reason":null}],"provider":"OpenAI"}`)

	if _, ok := chunk.Extra["choices"]; ok {
		t.Error("choices should not be in the extension bag")
	}
	if _, ok := chunk.Extra["provider"]; !ok {
		t.Error("provider should be in the extension bag")
	}
	if _, ok := chunk.Choices[0].Extra["native_finish_reason"]; !ok {
		t.Error("native_finish_reason should be in the choice extension bag")
	}
	if _, ok := chunk.Choices[0].Delta.Extra["reasoning"]; !ok {
		t.Error("reasoning should be in the delta extension bag")
	}
	if _, ok := chunk.Choices[0].Delta.Extra["content"]; ok {
		t.Error("content should not be in the delta extension bag")
	}
}

func decodeResponse(t *testing.T, data string) chatResponse {
	t.Helper()
	var resp chatResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		t.Fatalf("Unmarshal(%s) error = %v", data, err)
	}
	return resp
}

func TestCollectResponse(t *testing.T) {
	t.Run("text parts concatenated", func(t *testing.T) {
		resp := decodeResponse(t, `{"choices":[{"message":{"role":"assistant","content":[{"type":"text","text":"A"},{"type":"text","text":"B"}]}}]}`)
		got := collectResponse(resp)
		if got.Text != "AB" {
			t.Errorf("Text = %q, want AB", got.Text)
		}
		if got.Images == nil || len(got.Images) != 0 {
			t.Errorf("Images = %v, want empty", got.Images)
		}
	})

	t.Run("string content", func(t *testing.T) {
		got := collectResponse(decodeResponse(t, `{"choices":[{"message":{"content":"hello"}}]}`))
		if got.Text != "hello" {
			t.Errorf("Text = %q, want hello", got.Text)
		}
	})

	t.Run("no choices", func(t *testing.T) {
		got := collectResponse(decodeResponse(t, `{"choices":[],"images":["http://ignored"]}`))
		if got.Text != "" || len(got.Images) != 0 || len(got.Audio) != 0 {
			t.Errorf("result = %+v, want empty", got)
		}
	})

	t.Run("image discovery order", func(t *testing.T) {
		resp := decodeResponse(t, `{
			"choices": [{"message": {
				"content": [
					{"type": "image_url", "image_url": {"url": "http://ignored"}, "url": "http://1"},
					{"type": "image_url", "image_url": {"url": "http://1b"}},
					{"type": "image", "url": "http://2"},
					"tail"
				],
				"images": [{"image_url": {"url": "http://3"}}, "http://4"]
			}}],
			"images": ["http://5"]
		}`)
		got := collectResponse(resp)

		want := []string{"http://1", "http://1b", "http://2", "http://3", "http://4", "http://5", "http://5"}
		if !slices.Equal(got.Images, want) {
			t.Errorf("Images = %v, want %v", got.Images, want)
		}
		if got.Text != "tail" {
			t.Errorf("Text = %q, want tail", got.Text)
		}
	})

	t.Run("audio", func(t *testing.T) {
		resp := decodeResponse(t, `{"choices":[{"message":{"content":null,"audio":{"id":"audio_1","data":"UklGRg==","transcript":"hi","expires_at":1700000000}}}]}`)
		got := collectResponse(resp)
		if len(got.Audio) != 1 {
			t.Fatalf("Audio = %+v, want one entry", got.Audio)
		}
		if got.Audio[0].Data != "UklGRg==" || got.Audio[0].Transcript != "hi" || got.Audio[0].ExpiresAt != 1700000000 {
			t.Errorf("Audio[0] = %+v", got.Audio[0])
		}
	})
}
