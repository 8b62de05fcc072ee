package services_test

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anonto42/yatube/internal/forms"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/services"
	"github.com/anonto42/yatube/internal/storage"
	"github.com/anonto42/yatube/internal/testutil"
)

// smallGIF is a valid 1x1 gif
var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

type env struct {
	db     *gorm.DB
	blog   *services.Blog
	posts  *repositories.PostgresPostRepository
	images *storage.FileSystemStorage
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testutil.NewDB(t)
	images, err := storage.NewFileSystemStorage(t.TempDir())
	require.NoError(t, err)

	posts := repositories.NewPostgresPostRepository(db)
	blog := services.NewBlog(
		repositories.NewPostgresUserRepository(db),
		repositories.NewPostgresGroupRepository(db),
		posts,
		repositories.NewPostgresCommentRepository(db),
		repositories.NewPostgresFollowRepository(db),
		images,
	)
	return &env{db: db, blog: blog, posts: posts, images: images}
}

func upload(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/create/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func postForm(t *testing.T, groups []models.Group, text, group string) *forms.PostForm {
	t.Helper()

	form := forms.NewPostForm(groups)
	form.Text = text
	form.Group = group
	require.True(t, form.Validate(forms.NewValidator()), form.Errors)
	return form
}

func TestListings(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	leo := testutil.CreateUser(t, e.db, "leo")
	cats := testutil.CreateGroup(t, e.db, "cats")
	testutil.CreatePosts(t, e.db, leo, cats, 13)

	t.Run("pages", func(t *testing.T) {
		page, err := e.blog.ListPosts(t.Context(), 1)
		require.NoError(t, err)
		require.Equal(t, 10, page.Len())
		require.Equal(t, 2, page.NumPages)

		page, err = e.blog.ListPosts(t.Context(), 2)
		require.NoError(t, err)
		require.Equal(t, 3, page.Len())

		page, err = e.blog.ListPosts(t.Context(), 99)
		require.NoError(t, err)
		require.Equal(t, 2, page.Number)
	})

	t.Run("group", func(t *testing.T) {
		group, page, err := e.blog.GroupPosts(t.Context(), "cats", 1)
		require.NoError(t, err)
		require.Equal(t, cats.ID, group.ID)
		require.EqualValues(t, 13, page.Count)

		_, _, err = e.blog.GroupPosts(t.Context(), "does-not-exist", 1)
		require.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("profile", func(t *testing.T) {
		profile, err := e.blog.Profile(t.Context(), nil, "leo", 1)
		require.NoError(t, err)
		require.False(t, profile.Following)
		require.EqualValues(t, 13, profile.Page.Count)

		_, err = e.blog.Profile(t.Context(), nil, "nobody", 1)
		require.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestCreatePost(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	leo := testutil.CreateUser(t, e.db, "leo")
	cats := testutil.CreateGroup(t, e.db, "cats")
	groups := []models.Group{*cats}

	form := postForm(t, groups, "  hello  ", "")
	post, err := e.blog.CreatePost(t.Context(), leo, form)
	require.NoError(t, err)
	require.Equal(t, "hello", post.Text)
	require.Equal(t, leo.ID, post.AuthorID)
	require.Nil(t, post.GroupID)

	form = forms.NewPostForm(groups)
	form.Text = "with picture"
	form.Group = strconv.FormatUint(uint64(cats.ID), 10)
	form.Image = upload(t, "small.gif", smallGIF)
	require.True(t, form.Validate(forms.NewValidator()), form.Errors)

	post, err = e.blog.CreatePost(t.Context(), leo, form)
	require.NoError(t, err)
	require.Equal(t, cats.ID, *post.GroupID)
	require.Regexp(t, `^posts/[0-9a-f-]{36}\.gif$`, post.Image)

	rc, err := e.images.Open(t.Context(), post.Image)
	require.NoError(t, err)
	rc.Close()

	_, err = e.blog.CreatePost(t.Context(), nil, form)
	require.ErrorIs(t, err, services.ErrLoginRequired)
}

func TestEditPost(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	leo := testutil.CreateUser(t, e.db, "leo")
	mia := testutil.CreateUser(t, e.db, "mia")
	original := testutil.CreatePosts(t, e.db, leo, nil, 1)[0]

	t.Run("not the author", func(t *testing.T) {
		post, err := e.blog.EditablePost(t.Context(), mia, original.ID)
		require.ErrorIs(t, err, services.ErrNotAuthor)
		require.Equal(t, original.ID, post.ID)

		err = e.blog.EditPost(t.Context(), mia, post, postForm(t, nil, "hijacked", ""))
		require.ErrorIs(t, err, services.ErrNotAuthor)

		got, err := e.posts.GetPostByID(t.Context(), original.ID)
		require.NoError(t, err)
		require.Equal(t, original.Text, got.Text)
	})

	t.Run("author", func(t *testing.T) {
		post, err := e.blog.EditablePost(t.Context(), leo, original.ID)
		require.NoError(t, err)
		require.NoError(t, e.blog.EditPost(t.Context(), leo, post, postForm(t, nil, "edited", "")))

		got, err := e.posts.GetPostByID(t.Context(), original.ID)
		require.NoError(t, err)
		require.Equal(t, "edited", got.Text)
		require.True(t, got.CreatedAt.Equal(original.CreatedAt))
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := e.blog.EditablePost(t.Context(), leo, 9999)
		require.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestAddComment(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	leo := testutil.CreateUser(t, e.db, "leo")
	mia := testutil.CreateUser(t, e.db, "mia")
	post := testutil.CreatePosts(t, e.db, leo, nil, 1)[0]

	form := forms.NewCommentForm()
	form.Text = "nice"
	_, err := e.blog.AddComment(t.Context(), mia, post.ID, form)
	require.NoError(t, err)

	detail, err := e.blog.PostDetail(t.Context(), post.ID)
	require.NoError(t, err)
	require.Len(t, detail.Comments, 1)
	require.Equal(t, "mia", detail.Comments[0].Author.Username)
	require.EqualValues(t, 1, detail.AuthorPosts)

	_, err = e.blog.AddComment(t.Context(), mia, 9999, form)
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestFollow(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	leo := testutil.CreateUser(t, e.db, "leo")
	mia := testutil.CreateUser(t, e.db, "mia")
	testutil.CreatePosts(t, e.db, leo, nil, 2)
	testutil.CreatePosts(t, e.db, mia, nil, 5)

	countEdges := func() int64 {
		var n int64
		require.NoError(t, e.db.Model(&models.Follow{}).Count(&n).Error)
		return n
	}

	_, err := e.blog.Follow(t.Context(), mia, "mia")
	require.NoError(t, err)
	require.Zero(t, countEdges())

	for range 2 {
		author, err := e.blog.Follow(t.Context(), mia, "leo")
		require.NoError(t, err)
		require.Equal(t, leo.ID, author.ID)
	}
	require.EqualValues(t, 1, countEdges())

	profile, err := e.blog.Profile(t.Context(), mia, "leo", 1)
	require.NoError(t, err)
	require.True(t, profile.Following)
	require.EqualValues(t, 1, profile.Followers)

	feed, err := e.blog.FollowFeed(t.Context(), mia, 1)
	require.NoError(t, err)
	require.EqualValues(t, 2, feed.Count)

	feed, err = e.blog.FollowFeed(t.Context(), leo, 1)
	require.NoError(t, err)
	require.Zero(t, feed.Len())

	_, err = e.blog.Unfollow(t.Context(), mia, "leo")
	require.NoError(t, err)
	require.Zero(t, countEdges())

	_, err = e.blog.Follow(t.Context(), mia, "nobody")
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGroups(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	form := forms.NewGroupForm()
	form.Title, form.Slug, form.Description = "Cats", "cats", "All about cats"

	_, err := e.blog.CreateGroup(t.Context(), form)
	require.NoError(t, err)
	_, err = e.blog.CreateGroup(t.Context(), form)
	require.ErrorIs(t, err, repositories.ErrDuplicateSlug)

	groups, err := e.blog.Groups(t.Context())
	require.NoError(t, err)
	require.Len(t, groups, 1)

	require.NoError(t, e.blog.DeleteGroup(t.Context(), "cats"))
	require.ErrorIs(t, e.blog.DeleteGroup(t.Context(), "cats"), repositories.ErrNotFound)
}
