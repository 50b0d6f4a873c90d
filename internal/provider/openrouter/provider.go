package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"llm-playground/internal/config"
	"llm-playground/internal/models"
	"llm-playground/internal/provider"
)

const (
	contentTypeJSON = "application/json"
	contentTypeSSE  = "text/event-stream"
	userAgent       = "llm-playground/0.1"
	doneMarker      = "[DONE]"
)

// errStopped reports that the consumer stopped pulling events.
var errStopped = errors.New("stream consumer stopped")

// Provider talks to the OpenRouter chat completions API.
type Provider struct {
	apiKey    string
	referer   string
	title     string
	client    *http.Client
	logger    zerolog.Logger
	chatURL   string
	modelsURL string
}

var _ provider.Upstream = (*Provider)(nil)

// New creates a new OpenRouter provider.
func New(cfg config.UpstreamConfig, client *http.Client, logger zerolog.Logger) (*Provider, error) {
	if client == nil {
		return nil, errors.New("http client must not be nil")
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("base url must not be empty")
	}

	return &Provider{
		apiKey:    cfg.APIKey,
		referer:   cfg.Referer,
		title:     cfg.Title,
		client:    client,
		logger:    logger.With().Str("component", "openrouter").Logger(),
		chatURL:   baseURL + "/chat/completions",
		modelsURL: baseURL + "/models",
	}, nil
}

// StreamChat streams a chat completion as normalized events. Failures are reported as
// an error event; the sequence always ends with a done event unless the consumer
// stops early.
func (p *Provider) StreamChat(ctx context.Context, req models.ChatRequest) iter.Seq[models.StreamEvent] {
	return func(yield func(models.StreamEvent) bool) {
		err := p.stream(ctx, req, yield)
		if errors.Is(err, errStopped) {
			return
		}
		if err != nil {
			p.logger.Error().Err(err).Str("model", req.Model).Msg("Chat stream failed")
			if !yield(models.ErrorEvent(err.Error())) {
				return
			}
		}
		yield(models.Done())
	}
}

func (p *Provider) stream(ctx context.Context, req models.ChatRequest, yield func(models.StreamEvent) bool) error {
	httpReq, err := p.newRequest(ctx, http.MethodPost, p.chatURL, buildChatPayload(req, true))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Accept", contentTypeSSE)

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("openrouter chat request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		return parseAPIError(httpResp)
	}

	reader := newEventReader(httpResp.Body)
	for {
		data, err := reader.next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read upstream stream: %w", err)
		}
		if string(bytes.TrimSpace(data)) == doneMarker {
			return nil
		}

		var chunk streamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			return fmt.Errorf("decode stream chunk: %w", err)
		}
		if chunk.Error != nil {
			return &provider.APIError{Code: chunk.Error.code(), Message: chunk.Error.Message}
		}

		for _, event := range chunkEvents(chunk) {
			if !yield(event) {
				return errStopped
			}
		}
	}
}

// CompleteChat performs a non-streaming completion and aggregates text, images and audio.
func (p *Provider) CompleteChat(ctx context.Context, req models.ChatRequest) (models.ChatResult, error) {
	httpReq, err := p.newRequest(ctx, http.MethodPost, p.chatURL, buildChatPayload(req, false))
	if err != nil {
		return models.ChatResult{}, err
	}

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return models.ChatResult{}, fmt.Errorf("openrouter chat request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		return models.ChatResult{}, parseAPIError(httpResp)
	}

	var resp chatResponse
	if err := decodeJSON(httpResp.Body, &resp); err != nil {
		return models.ChatResult{}, err
	}
	if resp.Error != nil {
		return models.ChatResult{}, &provider.APIError{Code: resp.Error.code(), Message: resp.Error.Message}
	}

	return collectResponse(resp), nil
}

// ListModels fetches the raw upstream model catalog.
func (p *Provider) ListModels(ctx context.Context) ([]models.RawModel, error) {
	httpReq, err := p.newRequest(ctx, http.MethodGet, p.modelsURL, nil)
	if err != nil {
		return nil, err
	}

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openrouter models request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		return nil, parseAPIError(httpResp)
	}

	var resp modelsResponse
	if err := decodeJSON(httpResp.Body, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (p *Provider) newRequest(ctx context.Context, method, url string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("construct request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	if p.referer != "" {
		req.Header.Set("HTTP-Referer", p.referer)
	}
	if p.title != "" {
		req.Header.Set("X-Title", p.title)
	}

	return req, nil
}

func parseAPIError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("upstream error status %d and failed to read body: %w", resp.StatusCode, err)
	}

	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return &provider.APIError{Status: resp.StatusCode, Code: apiErr.Error.code(), Message: apiErr.Error.Message}
	}

	message := strings.TrimSpace(string(body))
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return &provider.APIError{Status: resp.StatusCode, Message: message}
}

func decodeJSON(reader io.Reader, target any) error {
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}
