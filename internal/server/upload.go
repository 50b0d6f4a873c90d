package server

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const defaultContentType = "application/octet-stream"

type uploadResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	FileType    string `json:"file_type"`
	DataURL     string `json:"data_url"`
	Size        int    `json:"size"`
}

func (s *Server) handleUpload(c echo.Context) error {
	limit := s.cfg.Server.MaxUploadBytes
	req := c.Request()
	if req.ContentLength > limit {
		return requestError{
			Status:  http.StatusRequestEntityTooLarge,
			Message: fmt.Sprintf("upload exceeds %d bytes", limit),
		}
	}
	req.Body = http.MaxBytesReader(c.Response(), req.Body, limit)

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return requestError{
				Status:  http.StatusRequestEntityTooLarge,
				Message: fmt.Sprintf("upload exceeds %d bytes", maxErr.Limit),
			}
		}
		return requestError{
			Status:  http.StatusBadRequest,
			Message: "multipart field \"file\" is required",
		}
	}

	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("open uploaded file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read uploaded file: %w", err)
	}

	contentType := header.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = defaultContentType
	}

	return c.JSON(http.StatusOK, uploadResponse{
		Filename:    header.Filename,
		ContentType: contentType,
		FileType:    fileType(contentType),
		DataURL:     "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(content),
		Size:        len(content),
	})
}

func fileType(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "audio/"):
		return "audio"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	default:
		return "unknown"
	}
}
