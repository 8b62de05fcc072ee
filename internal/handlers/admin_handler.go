package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/anonto42/yatube/internal/forms"
	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/render"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/services"
)

// AdminHandler is the staff-only group administration
type AdminHandler struct {
	blog      *services.Blog
	validator *forms.Validator
}

func NewAdminHandler(blog *services.Blog, validator *forms.Validator) *AdminHandler {
	return &AdminHandler{blog: blog, validator: validator}
}

func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.Use(middleware.StaffRequired())
	g.GET("/groups/", h.Groups)
	g.Match([]string{http.MethodGet, http.MethodPost}, "/groups/new/", h.NewGroup)
	g.POST("/groups/:slug/delete/", h.DeleteGroup)
}

func (h *AdminHandler) Groups(c echo.Context) error {
	groups, err := h.blog.Groups(c.Request().Context())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "admin/groups.html", render.Data{"Groups": groups})
}

func (h *AdminHandler) NewGroup(c echo.Context) error {
	form := forms.NewGroupForm()

	if c.Request().Method == http.MethodPost {
		if err := c.Bind(form); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
		}
		if form.Validate(h.validator) {
			group, err := h.blog.CreateGroup(c.Request().Context(), form)
			switch {
			case errors.Is(err, repositories.ErrDuplicateSlug):
				form.DuplicateSlug()
			case err != nil:
				return err
			default:
				log.Info().Str("slug", group.Slug).Str("by", middleware.Viewer(c).Username).Msg("Group created")
				return c.Redirect(http.StatusFound, "/admin/groups/")
			}
		}
	}

	return c.Render(http.StatusOK, "admin/group_form.html", render.Data{"Form": form})
}

func (h *AdminHandler) DeleteGroup(c echo.Context) error {
	slug := c.Param("slug")
	if err := h.blog.DeleteGroup(c.Request().Context(), slug); err != nil {
		return notFoundOr(err)
	}
	log.Info().Str("slug", slug).Str("by", middleware.Viewer(c).Username).Msg("Group deleted")
	return c.Redirect(http.StatusFound, "/admin/groups/")
}
