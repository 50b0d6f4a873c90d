package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"llm-playground/internal/models"
	"llm-playground/internal/translator"
)

const sseDone = "data: [DONE]\n\n"

func (s *Server) handleChatStream(c echo.Context) error {
	var req translator.ChatRequest
	if err := decodeRequestBody(c, &req, s.cfg.Server.MaxBodyBytes); err != nil {
		return err
	}

	writer := c.Response().Writer
	flusher, ok := writer.(http.Flusher)
	if !ok {
		s.logger.Error().Msg("http writer does not support flushing")
		return requestError{
			Status:  http.StatusInternalServerError,
			Message: "server does not support streaming responses",
		}
	}

	header := c.Response().Header()
	header.Set(echo.HeaderContentType, "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	c.Response().WriteHeader(http.StatusOK)
	flusher.Flush()

	for event := range s.router.Stream(c.Request().Context(), req.ToModel()) {
		if event.Type == models.EventDone {
			continue
		}
		if err := writeSSEEvent(c.Response(), event); err != nil {
			s.logger.Debug().Err(err).Msg("client went away during stream")
			return nil
		}
		flusher.Flush()
	}

	if _, err := io.WriteString(c.Response(), sseDone); err != nil {
		s.logger.Debug().Err(err).Msg("client went away before stream end")
		return nil
	}
	flusher.Flush()
	return nil
}

func (s *Server) handleChatComplete(c echo.Context) error {
	var req translator.ChatRequest
	if err := decodeRequestBody(c, &req, s.cfg.Server.MaxBodyBytes); err != nil {
		return err
	}

	result, err := s.router.Complete(c.Request().Context(), req.ToModel())
	if err != nil {
		return requestError{
			Status:  http.StatusInternalServerError,
			Message: err.Error(),
		}
	}
	return c.JSON(http.StatusOK, result)
}

func writeSSEEvent(w io.Writer, event models.StreamEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal SSE payload: %w", err)
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write SSE data: %w", err)
	}
	return nil
}
