package provider

import (
	"context"
	"fmt"
	"iter"

	"llm-playground/internal/models"
)

// Upstream is the chat completion service the gateway forwards to.
type Upstream interface {
	// StreamChat yields normalized events. The sequence always ends with exactly one
	// done event, preceded by an error event if the call failed.
	StreamChat(ctx context.Context, req models.ChatRequest) iter.Seq[models.StreamEvent]
	CompleteChat(ctx context.Context, req models.ChatRequest) (models.ChatResult, error)
	ListModels(ctx context.Context) ([]models.RawModel, error)
}

// APIError is a non-success answer from the upstream service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream error: %s", e.Message)
	}
	return fmt.Sprintf("upstream error status %d: %s", e.Status, e.Message)
}
