package router

import (
	"context"
	"iter"
	"time"

	"github.com/rs/zerolog"

	"llm-playground/internal/catalog"
	"llm-playground/internal/models"
	"llm-playground/internal/provider"
	"llm-playground/internal/tokens"
)

// Options configures a Router. Zero values disable the optional collaborators.
type Options struct {
	Cache       catalog.Cache
	Recommended *catalog.RecommendedStore
	Tokens      *tokens.Counter
	Timeout     time.Duration
	Logger      zerolog.Logger
}

// Router applies per-endpoint policy on top of the upstream: chat failures are
// surfaced, catalog failures degrade to an empty list.
type Router struct {
	upstream    provider.Upstream
	cache       catalog.Cache
	recommended *catalog.RecommendedStore
	tokens      *tokens.Counter
	timeout     time.Duration
	logger      zerolog.Logger
}

// New constructs a router backed by the provided upstream.
func New(upstream provider.Upstream, opts Options) *Router {
	recommended := opts.Recommended
	if recommended == nil {
		recommended = catalog.NewRecommendedStore(catalog.DefaultRecommended())
	}
	counter := opts.Tokens
	if counter == nil {
		counter = tokens.NewCounter()
	}

	return &Router{
		upstream:    upstream,
		cache:       opts.Cache,
		recommended: recommended,
		tokens:      counter,
		timeout:     opts.Timeout,
		logger:      opts.Logger.With().Str("component", "router").Logger(),
	}
}

func (r *Router) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Router) logRequest(kind string, req models.ChatRequest) {
	event := r.logger.Debug()
	if !event.Enabled() {
		return
	}
	event.
		Str("kind", kind).
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Int("prompt_tokens", r.tokens.CountMessages(req.Messages)).
		Strs("modalities", req.Modalities).
		Msg("Chat request")
}

// Stream forwards a streaming chat request. The upstream call is cancelled when the
// consumer stops pulling, when ctx ends or when the request timeout elapses.
func (r *Router) Stream(ctx context.Context, req models.ChatRequest) iter.Seq[models.StreamEvent] {
	r.logRequest("stream", req)

	return func(yield func(models.StreamEvent) bool) {
		ctx, cancel := r.withTimeout(ctx)
		defer cancel()

		for event := range r.upstream.StreamChat(ctx, req) {
			if !yield(event) {
				return
			}
		}
	}
}

// Complete forwards a non-streaming chat request.
func (r *Router) Complete(ctx context.Context, req models.ChatRequest) (models.ChatResult, error) {
	r.logRequest("complete", req)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	result, err := r.upstream.CompleteChat(ctx, req)
	if err != nil {
		r.logger.Error().Err(err).Str("model", req.Model).Msg("Chat completion failed")
		return models.ChatResult{}, err
	}
	return result, nil
}

// Catalog returns the raw upstream catalog, served from cache when possible. Any
// failure yields an empty catalog.
func (r *Router) Catalog(ctx context.Context) []models.RawModel {
	if r.cache != nil {
		raw, ok, err := r.cache.Get(ctx)
		if err != nil {
			r.logger.Warn().Err(err).Msg("Catalog cache read failed")
		}
		if ok {
			return raw
		}
	}

	raw, err := r.upstream.ListModels(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to fetch model catalog - returning empty list")
		return []models.RawModel{}
	}
	if len(raw) == 0 {
		return []models.RawModel{}
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, raw); err != nil {
			r.logger.Warn().Err(err).Msg("Catalog cache write failed")
		}
	}
	return raw
}

// ListModels returns the truncated, categorized catalog.
func (r *Router) ListModels(ctx context.Context) catalog.Listing {
	return catalog.List(r.Catalog(ctx))
}

// SearchModels filters the catalog by query and optional category.
func (r *Router) SearchModels(ctx context.Context, query, category string) []models.ModelInfo {
	return catalog.Search(r.Catalog(ctx), query, category)
}

// ModelInfo looks up a single model by id.
func (r *Router) ModelInfo(ctx context.Context, id string) (models.ModelInfo, bool) {
	return catalog.Find(r.Catalog(ctx), id)
}

// Recommended returns the current curated model list.
func (r *Router) Recommended() catalog.Recommended {
	return r.recommended.Get()
}
