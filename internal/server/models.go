package server

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"llm-playground/internal/models"
)

type searchResponse struct {
	Models []models.ModelInfo `json:"models"`
}

type notFoundResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleListModels(c echo.Context) error {
	return c.JSON(http.StatusOK, s.router.ListModels(c.Request().Context()))
}

func (s *Server) handleRecommended(c echo.Context) error {
	return c.JSON(http.StatusOK, s.router.Recommended())
}

func (s *Server) handleSearch(c echo.Context) error {
	found := s.router.SearchModels(c.Request().Context(), c.QueryParam("q"), c.QueryParam("category"))
	return c.JSON(http.StatusOK, searchResponse{Models: found})
}

// handleModelInfo answers 200 even for unknown ids; clients inspect the body.
func (s *Server) handleModelInfo(c echo.Context) error {
	id, err := url.PathUnescape(c.Param("*"))
	if err != nil {
		return requestError{Status: http.StatusBadRequest, Message: "invalid model id"}
	}

	info, ok := s.router.ModelInfo(c.Request().Context(), id)
	if !ok {
		return c.JSON(http.StatusOK, notFoundResponse{Error: "Model not found"})
	}
	return c.JSON(http.StatusOK, info)
}
