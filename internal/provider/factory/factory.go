package factory

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"llm-playground/internal/config"
	"llm-playground/internal/provider/openrouter"
)

const (
	defaultDialTimeout           = 10 * time.Second
	defaultKeepAlive             = 30 * time.Second
	defaultIdleConnTimeout       = 90 * time.Second
	defaultResponseHeaderTimeout = 2 * time.Minute
)

// NewUpstream constructs the OpenRouter client from configuration.
func NewUpstream(cfg config.UpstreamConfig, logger zerolog.Logger) (*openrouter.Provider, error) {
	p, err := openrouter.New(cfg, newHTTPClient(), logger)
	if err != nil {
		return nil, fmt.Errorf("initialise openrouter provider: %w", err)
	}
	return p, nil
}

// newHTTPClient sets no overall timeout. Calls are bounded by the request context.
func newHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: defaultResponseHeaderTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Transport: transport,
	}
}
