package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	"github.com/anonto42/yatube/internal/storage"
)

// sniffLen is how much of a file mimetype looks at
const sniffLen = 3072

// MediaHandler streams stored post images
type MediaHandler struct {
	images storage.ImageStorage
}

func NewMediaHandler(images storage.ImageStorage) *MediaHandler {
	return &MediaHandler{images: images}
}

func (h *MediaHandler) RegisterMediaRoutes(g *echo.Group) {
	g.GET("/*", h.Image)
}

func (h *MediaHandler) Image(c echo.Context) error {
	rc, err := h.images.Open(c.Request().Context(), c.Param("*"))
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidRef) {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	if err != nil {
		return err
	}
	defer rc.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}
	head = head[:n]

	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=86400")
	return c.Stream(http.StatusOK, mimetype.Detect(head).String(), io.MultiReader(bytes.NewReader(head), rc))
}
