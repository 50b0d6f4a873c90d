package catalog

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"llm-playground/internal/models"
)

// RecommendedModel is a hand-picked model shown at the top of the playground picker.
type RecommendedModel struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Recommended groups curated models by category.
type Recommended map[models.Category][]RecommendedModel

// DefaultRecommended is the curated list shipped with the binary.
func DefaultRecommended() Recommended {
	return Recommended{
		models.CategoryText: {
			{ID: "openai/gpt-4o", Name: "GPT-4o", Description: "OpenAI's flagship multi-modal model"},
			{ID: "openai/gpt-4o-mini", Name: "GPT-4o Mini", Description: "Lightweight multi-modal model"},
			{ID: "anthropic/claude-3.5-sonnet", Name: "Claude 3.5 Sonnet", Description: "Anthropic's latest model"},
			{ID: "anthropic/claude-3-opus", Name: "Claude 3 Opus", Description: "Anthropic's most capable model"},
			{ID: "google/gemini-pro-1.5", Name: "Gemini Pro 1.5", Description: "Google's latest model"},
			{ID: "meta-llama/llama-3.1-405b-instruct", Name: "Llama 3.1 405B", Description: "Meta's open-weights large model"},
			{ID: "deepseek/deepseek-chat", Name: "DeepSeek Chat", Description: "DeepSeek conversational model"},
		},
		models.CategoryVision: {
			{ID: "openai/gpt-4o", Name: "GPT-4o", Description: "Image understanding"},
			{ID: "anthropic/claude-3.5-sonnet", Name: "Claude 3.5 Sonnet", Description: "Image analysis"},
			{ID: "google/gemini-pro-1.5", Name: "Gemini Pro 1.5", Description: "Multi-modal understanding"},
		},
		models.CategoryImageGeneration: {
			{ID: "black-forest-labs/flux-1.1-pro", Name: "FLUX 1.1 Pro", Description: "High quality image generation"},
			{ID: "black-forest-labs/flux-schnell", Name: "FLUX Schnell", Description: "Fast image generation"},
			{ID: "stabilityai/stable-diffusion-xl", Name: "SDXL", Description: "Stable Diffusion XL"},
		},
		models.CategoryAudio: {
			{ID: "openai/gpt-4o-audio-preview", Name: "GPT-4o Audio", Description: "Audio understanding and generation"},
		},
	}
}

// LoadRecommended reads a curated list from a YAML file keyed by category.
func LoadRecommended(path string) (Recommended, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recommended models %q: %w", path, err)
	}

	var raw map[string][]RecommendedModel
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse recommended models %q: %w", path, err)
	}

	list := make(Recommended, len(models.Categories))
	for _, c := range models.Categories {
		list[c] = []RecommendedModel{}
	}

	for key, entries := range raw {
		category := models.Category(key)
		if _, ok := list[category]; !ok {
			return nil, fmt.Errorf("recommended models %q: unknown category %q", path, key)
		}
		for i, entry := range entries {
			if strings.TrimSpace(entry.ID) == "" {
				return nil, fmt.Errorf("recommended models %q: %s[%d].id is required", path, key, i)
			}
			if entry.Name == "" {
				entry.Name = DisplayName(models.RawModel{ID: entry.ID})
			}
			list[category] = append(list[category], entry)
		}
	}
	return list, nil
}

// RecommendedStore holds the current curated list; it is swapped on reload.
type RecommendedStore struct {
	mu   sync.RWMutex
	list Recommended
}

// NewRecommendedStore creates a store seeded with list.
func NewRecommendedStore(list Recommended) *RecommendedStore {
	return &RecommendedStore{list: list}
}

// Get returns a copy of the current list.
func (s *RecommendedStore) Get() Recommended {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(Recommended, len(s.list))
	for c, entries := range s.list {
		out[c] = append(make([]RecommendedModel, 0, len(entries)), entries...)
	}
	return out
}

// Set replaces the current list.
func (s *RecommendedStore) Set(list Recommended) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = list
}
