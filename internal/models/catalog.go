package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Category is the capability bucket a model is listed under.
type Category string

const (
	CategoryText            Category = "text"
	CategoryVision          Category = "vision"
	CategoryImageGeneration Category = "image_generation"
	CategoryAudio           Category = "audio"
)

// Categories lists every bucket in display order.
var Categories = []Category{CategoryText, CategoryVision, CategoryImageGeneration, CategoryAudio}

// RawModel is one entry of the upstream /models listing.
type RawModel struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name,omitempty"`
	Description         string        `json:"description,omitempty"`
	ContextLength       *int          `json:"context_length,omitempty"`
	Architecture        *Architecture `json:"architecture,omitempty"`
	Pricing             *RawPricing   `json:"pricing,omitempty"`
	TopProvider         *TopProvider  `json:"top_provider,omitempty"`
	SupportedParameters []string      `json:"supported_parameters"`
}

// Architecture describes the modalities a model declares. Nil modality lists mean the
// upstream did not specify them.
type Architecture struct {
	Modality         string   `json:"modality,omitempty"`
	InputModalities  []string `json:"input_modalities"`
	OutputModalities []string `json:"output_modalities"`
}

// RawPricing carries per-token prices as reported upstream.
type RawPricing struct {
	Prompt     Price `json:"prompt,omitempty"`
	Completion Price `json:"completion,omitempty"`
}

// TopProvider holds limits of the provider OpenRouter routes to by default.
type TopProvider struct {
	MaxCompletionTokens *int `json:"max_completion_tokens,omitempty"`
}

// Price is a decimal price string. Numeric JSON values are accepted and kept verbatim.
type Price string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (p *Price) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = Price(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("price must be a string or number: %w", err)
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return fmt.Errorf("invalid price %q: %w", n, err)
	}
	*p = Price(n.String())
	return nil
}

// ModelPricing is the client-facing price pair.
type ModelPricing struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

// ModelInfo is the normalized, capability-tagged catalog entry returned to clients.
type ModelInfo struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Description         string       `json:"description"`
	ContextLength       *int         `json:"context_length"`
	MaxCompletionTokens *int         `json:"max_completion_tokens"`
	InputModalities     []string     `json:"input_modalities"`
	OutputModalities    []string     `json:"output_modalities"`
	Modality            string       `json:"modality"`
	Pricing             ModelPricing `json:"pricing"`
	SupportedParameters []string     `json:"supported_parameters"`
}
