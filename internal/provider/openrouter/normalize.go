package openrouter

import (
	"encoding/json"

	"llm-playground/internal/models"
)

// object is a loosely decoded JSON object from an upstream payload.
type object map[string]json.RawMessage

func decodeObject(raw json.RawMessage) (object, bool) {
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func decodeString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeList(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 || raw[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

func (o object) str(key string) string {
	s, _ := decodeString(o[key])
	return s
}

func (o object) nestedURL() string {
	inner, ok := decodeObject(o["image_url"])
	if !ok {
		return ""
	}
	return inner.str("url")
}

// directURL prefers url over image_url.url.
func (o object) directURL() string {
	if url := o.str("url"); url != "" {
		return url
	}
	return o.nestedURL()
}

// nestedFirstURL prefers image_url.url over url.
func (o object) nestedFirstURL() string {
	if url := o.nestedURL(); url != "" {
		return url
	}
	return o.str("url")
}

// imageURLs reads an "images" array. Object entries yield image_url.url or url; bare
// strings are used as the url when allowStrings is set.
func imageURLs(raw json.RawMessage, allowStrings bool) []string {
	var urls []string
	for _, item := range decodeList(raw) {
		if obj, ok := decodeObject(item); ok {
			if url := obj.nestedFirstURL(); url != "" {
				urls = append(urls, url)
			}
			continue
		}
		if !allowStrings {
			continue
		}
		if url, ok := decodeString(item); ok && url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}

func imageEvents(urls []string) []models.StreamEvent {
	if len(urls) == 0 {
		return nil
	}
	events := make([]models.StreamEvent, 0, len(urls))
	for _, url := range urls {
		events = append(events, models.ImageDelta(url))
	}
	return events
}

// imageStrategy extracts image events from one location of a stream chunk.
type imageStrategy func(chunk streamChunk) []models.StreamEvent

// imageStrategies are applied to every chunk in this order and their results
// concatenated. A single chunk may match several of them.
var imageStrategies = []imageStrategy{
	chunkExtensionImages,
	choiceExtensionImages,
	deltaExtensionImages,
	chunkImagesAttribute,
}

func chunkExtensionImages(chunk streamChunk) []models.StreamEvent {
	if len(chunk.Choices) == 0 {
		return nil
	}
	return imageEvents(imageURLs(chunk.Extra["images"], false))
}

func choiceExtensionImages(chunk streamChunk) []models.StreamEvent {
	if len(chunk.Choices) == 0 {
		return nil
	}
	return imageEvents(imageURLs(chunk.Choices[0].Extra["images"], false))
}

func deltaExtensionImages(chunk streamChunk) []models.StreamEvent {
	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta == nil {
		return nil
	}
	return imageEvents(imageURLs(chunk.Choices[0].Delta.Extra["images"], false))
}

// chunkImagesAttribute reads the typed top-level images field, which also accepts
// bare url strings. It applies even when the chunk has no choices.
func chunkImagesAttribute(chunk streamChunk) []models.StreamEvent {
	return imageEvents(imageURLs(chunk.Images, true))
}

// contentEvents converts a delta's content into text and image events.
func contentEvents(raw json.RawMessage) []models.StreamEvent {
	if text, ok := decodeString(raw); ok {
		if text == "" {
			return nil
		}
		return []models.StreamEvent{models.TextDelta(text)}
	}

	var events []models.StreamEvent
	for _, item := range decodeList(raw) {
		if obj, ok := decodeObject(item); ok {
			switch obj.str("type") {
			case "text":
				events = append(events, models.TextDelta(obj.str("text")))
			case "image_url", "image":
				if url := obj.directURL(); url != "" {
					events = append(events, models.ImageDelta(url))
				}
			}
			continue
		}
		if text, ok := decodeString(item); ok {
			events = append(events, models.TextDelta(text))
		}
	}
	return events
}

// chunkEvents normalizes one upstream stream chunk.
func chunkEvents(chunk streamChunk) []models.StreamEvent {
	var events []models.StreamEvent
	if len(chunk.Choices) > 0 && chunk.Choices[0].Delta != nil {
		events = append(events, contentEvents(chunk.Choices[0].Delta.Content)...)
	}
	for _, strategy := range imageStrategies {
		events = append(events, strategy(chunk)...)
	}
	return events
}

// collectResponse aggregates a non-streaming response into a ChatResult.
func collectResponse(resp chatResponse) models.ChatResult {
	result := models.NewChatResult()
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil {
		return result
	}
	msg := resp.Choices[0].Message

	if text, ok := decodeString(msg.Content); ok {
		result.Text = text
	} else {
		var text []byte
		for _, item := range decodeList(msg.Content) {
			if obj, ok := decodeObject(item); ok {
				switch obj.str("type") {
				case "text":
					text = append(text, obj.str("text")...)
				case "image_url", "image":
					if url := obj.directURL(); url != "" {
						result.Images = append(result.Images, url)
					}
				}
				continue
			}
			if s, ok := decodeString(item); ok {
				text = append(text, s...)
			}
		}
		result.Text = string(text)
	}

	result.Images = append(result.Images, imageURLs(msg.Extra["images"], true)...)
	result.Images = append(result.Images, imageURLs(resp.Images, true)...)
	result.Images = append(result.Images, imageURLs(resp.Extra["images"], true)...)

	if msg.Audio != nil && msg.Audio.Data != "" {
		result.Audio = append(result.Audio, *msg.Audio)
	}
	return result
}
