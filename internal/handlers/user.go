package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/render"
	"github.com/anonto42/yatube/internal/services"
)

// UserHandler serves author profiles
type UserHandler struct {
	blog *services.Blog
}

func NewUserHandler(blog *services.Blog) *UserHandler {
	return &UserHandler{blog: blog}
}

func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile/:username/", h.Profile)
}

func (h *UserHandler) Profile(c echo.Context) error {
	profile, err := h.blog.Profile(c.Request().Context(), middleware.Viewer(c), c.Param("username"), pageNumber(c))
	if err != nil {
		return notFoundOr(err)
	}
	return c.Render(http.StatusOK, "posts/profile.html", render.Data{
		"Author":    profile.Author,
		"PageObj":   profile.Page,
		"Following": profile.Following,
		"Followers": profile.Followers,
		"Follows":   profile.Follows,
	})
}
