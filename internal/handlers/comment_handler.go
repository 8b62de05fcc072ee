package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/yatube/internal/forms"
	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/render"
	"github.com/anonto42/yatube/internal/services"
)

// CommentHandler handles comment submission
type CommentHandler struct {
	blog      *services.Blog
	validator *forms.Validator
}

func NewCommentHandler(blog *services.Blog, validator *forms.Validator) *CommentHandler {
	return &CommentHandler{blog: blog, validator: validator}
}

func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comment/", h.AddComment, middleware.LoginRequired())
}

// AddComment stores a comment and returns to the post. An invalid comment
// re-renders the post page with the errors.
func (h *CommentHandler) AddComment(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	form := forms.NewCommentForm()
	if err := c.Bind(form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	if !form.Validate(h.validator) {
		return renderDetail(c, h.blog, id, form, http.StatusOK)
	}

	if _, err := h.blog.AddComment(c.Request().Context(), middleware.Viewer(c), id, form); err != nil {
		return notFoundOr(err)
	}
	return c.Redirect(http.StatusFound, postURL(id))
}

func renderDetail(c echo.Context, blog *services.Blog, id uint, form *forms.CommentForm, status int) error {
	detail, err := blog.PostDetail(c.Request().Context(), id)
	if err != nil {
		return notFoundOr(err)
	}
	return c.Render(status, "posts/post_detail.html", render.Data{
		"Post":        detail.Post,
		"Comments":    detail.Comments,
		"AuthorPosts": detail.AuthorPosts,
		"Form":        form,
	})
}
