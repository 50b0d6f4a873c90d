package catalog

import (
	"slices"
	"strings"

	"llm-playground/internal/models"
)

// Listing limits applied to catalog responses.
const (
	MaxListed      = 200
	MaxPerCategory = 50
	MaxSearch      = 50
)

const (
	defaultModality = "text->text"
	defaultPrice    = "0"
)

var defaultModalities = []string{models.ModalityText}

// Listing is the response body of the model listing endpoint.
type Listing struct {
	Categorized map[models.Category][]models.ModelInfo `json:"categorized"`
	All         []models.ModelInfo                     `json:"all"`
}

// Categorize assigns a model to exactly one capability bucket. Checks run in a fixed
// order and the first match wins.
func Categorize(m models.RawModel) models.Category {
	input, output := modalities(m)

	switch {
	case slices.Contains(output, models.ModalityImage):
		return models.CategoryImageGeneration
	case slices.Contains(input, models.ModalityAudio) || slices.Contains(output, models.ModalityAudio):
		return models.CategoryAudio
	case slices.Contains(input, models.ModalityImage) || slices.Contains(input, models.ModalityVideo):
		return models.CategoryVision
	default:
		return models.CategoryText
	}
}

// Format converts a raw upstream entry into the client-facing shape.
func Format(m models.RawModel) models.ModelInfo {
	input, output := modalities(m)

	info := models.ModelInfo{
		ID:                  m.ID,
		Name:                DisplayName(m),
		Description:         m.Description,
		ContextLength:       m.ContextLength,
		InputModalities:     slices.Clone(input),
		OutputModalities:    slices.Clone(output),
		Modality:            defaultModality,
		Pricing:             models.ModelPricing{Prompt: defaultPrice, Completion: defaultPrice},
		SupportedParameters: []string{},
	}

	if m.Architecture != nil && m.Architecture.Modality != "" {
		info.Modality = m.Architecture.Modality
	}
	if m.TopProvider != nil {
		info.MaxCompletionTokens = m.TopProvider.MaxCompletionTokens
	}
	if m.Pricing != nil {
		if m.Pricing.Prompt != "" {
			info.Pricing.Prompt = string(m.Pricing.Prompt)
		}
		if m.Pricing.Completion != "" {
			info.Pricing.Completion = string(m.Pricing.Completion)
		}
	}
	if m.SupportedParameters != nil {
		info.SupportedParameters = slices.Clone(m.SupportedParameters)
	}
	return info
}

// DisplayName returns the explicit name or, failing that, the id suffix after the last "/".
func DisplayName(m models.RawModel) string {
	if m.Name != "" {
		return m.Name
	}
	if i := strings.LastIndex(m.ID, "/"); i >= 0 {
		return m.ID[i+1:]
	}
	return m.ID
}

// List formats the catalog, bucketing by category. Upstream order is preserved.
func List(raw []models.RawModel) Listing {
	listing := Listing{
		Categorized: make(map[models.Category][]models.ModelInfo, len(models.Categories)),
		All:         make([]models.ModelInfo, 0, min(len(raw), MaxListed)),
	}
	for _, c := range models.Categories {
		listing.Categorized[c] = []models.ModelInfo{}
	}

	for _, m := range raw {
		formatted := Format(m)
		if len(listing.All) < MaxListed {
			listing.All = append(listing.All, formatted)
		}

		category := Categorize(m)
		if len(listing.Categorized[category]) < MaxPerCategory {
			listing.Categorized[category] = append(listing.Categorized[category], formatted)
		}
	}
	return listing
}

// Search returns up to MaxSearch models whose id, name or description contains query
// (case-insensitive) and, when category is non-empty, whose category equals it.
func Search(raw []models.RawModel, query, category string) []models.ModelInfo {
	needle := strings.ToLower(query)
	results := []models.ModelInfo{}

	for _, m := range raw {
		if needle != "" && !matches(m, needle) {
			continue
		}
		if category != "" && string(Categorize(m)) != category {
			continue
		}

		results = append(results, Format(m))
		if len(results) >= MaxSearch {
			break
		}
	}
	return results
}

// Find returns the formatted entry with the exact id.
func Find(raw []models.RawModel, id string) (models.ModelInfo, bool) {
	for _, m := range raw {
		if m.ID == id {
			return Format(m), true
		}
	}
	return models.ModelInfo{}, false
}

func matches(m models.RawModel, needle string) bool {
	return strings.Contains(strings.ToLower(m.ID), needle) ||
		strings.Contains(strings.ToLower(DisplayName(m)), needle) ||
		strings.Contains(strings.ToLower(m.Description), needle)
}

func modalities(m models.RawModel) (input, output []string) {
	input, output = defaultModalities, defaultModalities
	if m.Architecture == nil {
		return input, output
	}
	if m.Architecture.InputModalities != nil {
		input = m.Architecture.InputModalities
	}
	if m.Architecture.OutputModalities != nil {
		output = m.Architecture.OutputModalities
	}
	return input, output
}
