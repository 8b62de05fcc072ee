package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/yatube/internal/forms"
	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/render"
	"github.com/anonto42/yatube/internal/services"
)

// PostHandler serves the post listings and the post create and edit pages
type PostHandler struct {
	blog      *services.Blog
	validator *forms.Validator
}

func NewPostHandler(blog *services.Blog, validator *forms.Validator) *PostHandler {
	return &PostHandler{blog: blog, validator: validator}
}

// RegisterPostRoutes registers post-related routes. indexCache wraps the
// main listing only.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, indexCache ...echo.MiddlewareFunc) {
	g.GET("/", h.Index, indexCache...)
	g.GET("/group/:slug/", h.GroupPosts)
	g.GET("/posts/:id/", h.PostDetail)
	g.Match([]string{http.MethodGet, http.MethodPost}, "/create/", h.CreatePost, middleware.LoginRequired())
	g.Match([]string{http.MethodGet, http.MethodPost}, "/posts/:id/edit/", h.EditPost, middleware.LoginRequired())
}

func (h *PostHandler) Index(c echo.Context) error {
	page, err := h.blog.ListPosts(c.Request().Context(), pageNumber(c))
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "posts/index.html", render.Data{"PageObj": page})
}

func (h *PostHandler) GroupPosts(c echo.Context) error {
	group, page, err := h.blog.GroupPosts(c.Request().Context(), c.Param("slug"), pageNumber(c))
	if err != nil {
		return notFoundOr(err)
	}
	return c.Render(http.StatusOK, "posts/group_list.html", render.Data{
		"Group":   group,
		"PageObj": page,
	})
}

func (h *PostHandler) PostDetail(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}
	return renderDetail(c, h.blog, id, forms.NewCommentForm(), http.StatusOK)
}

func (h *PostHandler) CreatePost(c echo.Context) error {
	ctx := c.Request().Context()
	viewer := middleware.Viewer(c)

	groups, err := h.blog.Groups(ctx)
	if err != nil {
		return err
	}
	form := forms.NewPostForm(groups)

	if c.Request().Method == http.MethodPost {
		if err := bindPostForm(c, form); err != nil {
			return err
		}
		if form.Validate(h.validator) {
			if _, err := h.blog.CreatePost(ctx, viewer, form); err != nil {
				return err
			}
			return c.Redirect(http.StatusFound, profileURL(viewer.Username))
		}
	}

	return c.Render(http.StatusOK, "posts/create_post.html", render.Data{
		"Form":   form,
		"IsEdit": false,
	})
}

// EditPost lets the author change a post. Anyone else is sent back to the
// post page without a word.
func (h *PostHandler) EditPost(c echo.Context) error {
	ctx := c.Request().Context()
	viewer := middleware.Viewer(c)

	id, err := postID(c)
	if err != nil {
		return err
	}
	post, err := h.blog.EditablePost(ctx, viewer, id)
	if errors.Is(err, services.ErrNotAuthor) {
		return c.Redirect(http.StatusFound, postURL(post.ID))
	}
	if err != nil {
		return notFoundOr(err)
	}

	groups, err := h.blog.Groups(ctx)
	if err != nil {
		return err
	}
	form := forms.EditPostForm(post, groups)

	if c.Request().Method == http.MethodPost {
		form.Text, form.Group = "", ""
		if err := bindPostForm(c, form); err != nil {
			return err
		}
		if form.Validate(h.validator) {
			if err := h.blog.EditPost(ctx, viewer, post, form); err != nil {
				return err
			}
			return c.Redirect(http.StatusFound, postURL(post.ID))
		}
	}

	return c.Render(http.StatusOK, "posts/create_post.html", render.Data{
		"Form":   form,
		"IsEdit": true,
		"Post":   post,
	})
}

func bindPostForm(c echo.Context, form *forms.PostForm) error {
	if err := c.Bind(form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
	}
	// a urlencoded submission simply carries no image
	file, err := c.FormFile("image")
	switch {
	case err == nil:
		if file.Size > 0 {
			form.Image = file
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid upload")
	}
	form.ImageClear = c.FormValue("image-clear") != ""
	return nil
}
