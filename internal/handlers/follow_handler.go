package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/yatube/internal/forms"
	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/render"
	"github.com/anonto42/yatube/internal/services"
)

// FollowHandler handles the follow feed and follow/unfollow requests
type FollowHandler struct {
	blog      *services.Blog
	validator *forms.Validator
}

func NewFollowHandler(blog *services.Blog, validator *forms.Validator) *FollowHandler {
	return &FollowHandler{blog: blog, validator: validator}
}

func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.GET("/follow/", h.FollowIndex, middleware.LoginRequired())
	g.GET("/profile/:username/follow/", h.ProfileFollow, middleware.LoginRequired())
	g.GET("/profile/:username/unfollow/", h.ProfileUnfollow, middleware.LoginRequired())
}

func (h *FollowHandler) FollowIndex(c echo.Context) error {
	page, err := h.blog.FollowFeed(c.Request().Context(), middleware.Viewer(c), pageNumber(c))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posts/follow.html", render.Data{"PageObj": page})
}

// ProfileFollow follows the author and goes back to their profile.
// Following yourself or someone already followed changes nothing.
func (h *FollowHandler) ProfileFollow(c echo.Context) error {
	form, err := h.followForm(c)
	if err != nil {
		return err
	}
	author, err := h.blog.Follow(c.Request().Context(), middleware.Viewer(c), form.User)
	if err != nil {
		return notFoundOr(err)
	}
	return c.Redirect(http.StatusFound, profileURL(author.Username))
}

func (h *FollowHandler) ProfileUnfollow(c echo.Context) error {
	form, err := h.followForm(c)
	if err != nil {
		return err
	}
	author, err := h.blog.Unfollow(c.Request().Context(), middleware.Viewer(c), form.User)
	if err != nil {
		return notFoundOr(err)
	}
	return c.Redirect(http.StatusFound, profileURL(author.Username))
}

// followForm checks the username in the path; no user can carry a name
// that fails it, so a failure is a 404
func (h *FollowHandler) followForm(c echo.Context) (*forms.FollowForm, error) {
	form := forms.NewFollowForm(c.Param("username"))
	if !form.Validate(h.validator) {
		return nil, echo.NewHTTPError(http.StatusNotFound)
	}
	return form, nil
}
