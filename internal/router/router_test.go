package router_test

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anonto42/yatube/internal/cache"
	"github.com/anonto42/yatube/internal/metrics"
	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/repositories"
	"github.com/anonto42/yatube/internal/router"
	"github.com/anonto42/yatube/internal/services"
	"github.com/anonto42/yatube/internal/storage"
	dbtest "github.com/anonto42/yatube/internal/testutil"
)

const password = "correct horse battery"

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00,
	0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

type site struct {
	e        *echo.Echo
	db       *gorm.DB
	pages    *cache.MemoryStore
	metrics  *metrics.Metrics
	accounts *services.Accounts
}

func newSite(t *testing.T) *site {
	t.Helper()

	db := dbtest.NewDB(t)
	images, err := storage.NewFileSystemStorage(t.TempDir())
	require.NoError(t, err)
	pages, err := cache.NewMemoryStore(1 << 24)
	require.NoError(t, err)
	t.Cleanup(pages.Close)
	m := metrics.New(prometheus.NewRegistry())

	e, err := router.New(router.Dependencies{
		DB:            db,
		Images:        images,
		PageCache:     pages,
		PageCacheTTL:  time.Minute,
		Metrics:       m,
		SessionSecret: "test secret",
	})
	require.NoError(t, err)

	return &site{
		e:        e,
		db:       db,
		pages:    pages,
		metrics:  m,
		accounts: services.NewAccounts(repositories.NewPostgresUserRepository(db)),
	}
}

func (s *site) serve(req *http.Request, session *http.Cookie) *httptest.ResponseRecorder {
	if session != nil {
		req.AddCookie(session)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *site) get(target string, session *http.Cookie) *httptest.ResponseRecorder {
	return s.serve(httptest.NewRequest(http.MethodGet, target, nil), session)
}

func (s *site) post(target string, form url.Values, session *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return s.serve(req, session)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.SessionCookie {
			return cookie
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

// login creates the user and logs in through the login form
func (s *site) login(t *testing.T, username string, staff bool) (*models.User, *http.Cookie) {
	t.Helper()

	user, err := s.accounts.CreateUser(t.Context(), username, "", password, staff)
	require.NoError(t, err)

	rec := s.post("/auth/login/", url.Values{"username": {username}, "password": {password}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	return user, sessionCookie(t, rec)
}

func location(rec *httptest.ResponseRecorder) string {
	return rec.Header().Get(echo.HeaderLocation)
}

func articles(rec *httptest.ResponseRecorder) int {
	return strings.Count(rec.Body.String(), "<article>")
}

func TestIndexPageCache(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	leo, session := s.login(t, "leo", false)
	dbtest.CreatePosts(t, s.db, leo, nil, 1)

	first := s.get("/", nil)
	require.Equal(t, http.StatusOK, first.Code)

	rec := s.post("/create/", url.Values{"text": {"a brand new post"}}, session)
	require.Equal(t, http.StatusFound, rec.Code)

	cached := s.get("/", nil)
	require.Equal(t, http.StatusOK, cached.Code)
	require.Equal(t, first.Body.Bytes(), cached.Body.Bytes())
	require.NotContains(t, cached.Body.String(), "a brand new post")

	require.NoError(t, s.pages.Clear(t.Context()))

	fresh := s.get("/", nil)
	require.NotEqual(t, first.Body.Bytes(), fresh.Body.Bytes())
	require.Contains(t, fresh.Body.String(), "a brand new post")

	require.InDelta(t, 1, testutil.ToFloat64(s.metrics.PageCacheLookups.WithLabelValues("/", "hit")), 0)
	require.InDelta(t, 2, testutil.ToFloat64(s.metrics.PageCacheLookups.WithLabelValues("/", "miss")), 0)
}

func TestIndexPageCacheVariesByViewer(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	_, alice := s.login(t, "alice", true)
	_, bob := s.login(t, "bob", false)

	staff := s.get("/", alice)
	require.Equal(t, http.StatusOK, staff.Code)
	require.Contains(t, staff.Body.String(), `href="/admin/groups/"`)
	require.Contains(t, staff.Header().Get(echo.HeaderVary), echo.HeaderCookie)

	anonymous := s.get("/", nil)
	require.Equal(t, http.StatusOK, anonymous.Code)
	require.NotContains(t, anonymous.Body.String(), `href="/admin/groups/"`)
	require.NotContains(t, anonymous.Body.String(), `href="/profile/alice/"`)
	require.NotContains(t, anonymous.Body.String(), "Log out")
	require.Contains(t, anonymous.Body.String(), `href="/auth/login/"`)

	other := s.get("/", bob)
	require.NotContains(t, other.Body.String(), `href="/profile/alice/"`)
	require.Contains(t, other.Body.String(), `href="/profile/bob/"`)

	require.Equal(t, staff.Body.Bytes(), s.get("/", alice).Body.Bytes())
	require.InDelta(t, 1, testutil.ToFloat64(s.metrics.PageCacheLookups.WithLabelValues("/", "hit")), 0)
	require.InDelta(t, 3, testutil.ToFloat64(s.metrics.PageCacheLookups.WithLabelValues("/", "miss")), 0)
}

func TestLoginRequired(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	leo, _ := s.login(t, "leo", false)
	post := dbtest.CreatePosts(t, s.db, leo, nil, 1)[0]

	for _, target := range []string{
		"/create/",
		"/follow/",
		fmt.Sprintf("/posts/%d/edit/", post.ID),
		"/profile/leo/follow/",
		"/profile/leo/unfollow/",
	} {
		rec := s.get(target, nil)
		require.Equal(t, http.StatusFound, rec.Code, target)
		require.Equal(t, "/auth/login/?next="+target, location(rec), target)
	}

	rec := s.post(fmt.Sprintf("/posts/%d/comment/", post.ID), url.Values{"text": {"hi"}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.True(t, strings.HasPrefix(location(rec), "/auth/login/?next="))
}

func TestPublicPages(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	leo, _ := s.login(t, "leo", false)
	cats := dbtest.CreateGroup(t, s.db, "cats")
	post := dbtest.CreatePosts(t, s.db, leo, cats, 1)[0]

	for _, target := range []string{"/", "/group/cats/", "/profile/leo/", fmt.Sprintf("/posts/%d/", post.ID), "/auth/login/", "/auth/signup/"} {
		require.Equal(t, http.StatusOK, s.get(target, nil).Code, target)
	}

	for _, target := range []string{"/group/does-not-exist/", "/profile/nobody/", "/posts/9999/", "/posts/abc/", "/unexisting_page/"} {
		rec := s.get(target, nil)
		require.Equal(t, http.StatusNotFound, rec.Code, target)
		require.Contains(t, rec.Body.String(), "Page not found", target)
	}

	rec := s.get("/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "healthy")
}

func TestPagination(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	_, session := s.login(t, "leo", false)
	mia, _ := s.login(t, "mia", false)
	cats := dbtest.CreateGroup(t, s.db, "cats")
	dbtest.CreatePosts(t, s.db, mia, cats, 13)
	require.Equal(t, http.StatusFound, s.get("/profile/mia/follow/", session).Code)

	for _, base := range []string{"/", "/group/cats/", "/profile/mia/"} {
		require.Equal(t, 10, articles(s.get(base, nil)), base)
		require.Equal(t, 3, articles(s.get(base+"?page=2", nil)), base)
		require.Equal(t, 3, articles(s.get(base+"?page=99", nil)), base)
		require.Equal(t, 10, articles(s.get(base+"?page=abc", nil)), base)
	}

	require.Equal(t, 10, articles(s.get("/follow/", session)))
	require.Equal(t, 3, articles(s.get("/follow/?page=2", session)))
}

func TestCreatePost(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	leo, session := s.login(t, "leo", false)

	rec := s.get("/create/", session)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `name="text"`)

	rec = s.post("/create/", url.Values{"text": {"hello"}}, session)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/profile/leo/", location(rec))

	var posts []models.Post
	require.NoError(t, s.db.Find(&posts).Error)
	require.Len(t, posts, 1)
	require.Equal(t, "hello", posts[0].Text)
	require.Equal(t, leo.ID, posts[0].AuthorID)

	rec = s.post("/create/", url.Values{"text": {"   "}}, session)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "This field is required.")

	rec = s.post("/create/", url.Values{"text": {"grouped"}, "group": {"42"}}, session)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Select a valid choice.")
}

func TestCreatePostWithImage(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	_, session := s.login(t, "leo", false)

	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("text", "with a picture"))
	part, err := w.CreateFormFile("image", "small.gif")
	require.NoError(t, err)
	_, err = part.Write(smallGIF)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/create/", body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := s.serve(req, session)
	require.Equal(t, http.StatusFound, rec.Code)

	var post models.Post
	require.NoError(t, s.db.First(&post).Error)
	require.True(t, strings.HasPrefix(post.Image, storage.Prefix))

	rec = s.get("/media/"+post.Image, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/gif", rec.Header().Get(echo.HeaderContentType))
	got, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Equal(t, smallGIF, got)

	require.Equal(t, http.StatusNotFound, s.get("/media/posts/missing.gif", nil).Code)
	require.Equal(t, http.StatusNotFound, s.get("/media/../go.mod", nil).Code)
}

func TestEditPost(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	leo, author := s.login(t, "leo", false)
	_, stranger := s.login(t, "mia", false)
	post := dbtest.CreatePosts(t, s.db, leo, nil, 1)[0]
	target := fmt.Sprintf("/posts/%d/edit/", post.ID)
	detail := fmt.Sprintf("/posts/%d/", post.ID)

	rec := s.get(target, stranger)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, detail, location(rec))

	rec = s.post(target, url.Values{"text": {"hijacked"}}, stranger)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, detail, location(rec))

	var stored models.Post
	require.NoError(t, s.db.First(&stored, post.ID).Error)
	require.Equal(t, post.Text, stored.Text)

	rec = s.get(target, author)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), post.Text)

	rec = s.post(target, url.Values{"text": {"edited"}}, author)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, detail, location(rec))
	require.NoError(t, s.db.First(&stored, post.ID).Error)
	require.Equal(t, "edited", stored.Text)

	require.Equal(t, http.StatusNotFound, s.get("/posts/9999/edit/", author).Code)
}

func TestComments(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	leo, session := s.login(t, "leo", false)
	post := dbtest.CreatePosts(t, s.db, leo, nil, 1)[0]
	target := fmt.Sprintf("/posts/%d/comment/", post.ID)

	rec := s.post(target, url.Values{"text": {""}}, session)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "This field is required.")

	rec = s.post(target, url.Values{"text": {"first!"}}, session)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, fmt.Sprintf("/posts/%d/", post.ID), location(rec))

	require.Contains(t, s.get(fmt.Sprintf("/posts/%d/", post.ID), nil).Body.String(), "first!")
	require.Equal(t, http.StatusNotFound, s.post("/posts/9999/comment/", url.Values{"text": {"x"}}, session).Code)
}

func TestFollow(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	_, session := s.login(t, "leo", false)
	s.login(t, "mia", false)

	edges := func() int64 {
		var n int64
		require.NoError(t, s.db.Model(&models.Follow{}).Count(&n).Error)
		return n
	}

	rec := s.get("/profile/leo/follow/", session)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/profile/leo/", location(rec))
	require.Zero(t, edges())

	for range 2 {
		rec = s.get("/profile/mia/follow/", session)
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/profile/mia/", location(rec))
	}
	require.EqualValues(t, 1, edges())
	require.Contains(t, s.get("/profile/mia/", session).Body.String(), "Unsubscribe")

	rec = s.get("/profile/mia/unfollow/", session)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Zero(t, edges())

	require.Equal(t, http.StatusNotFound, s.get("/profile/nobody/follow/", session).Code)

	tooLong := "/profile/" + strings.Repeat("m", 151) + "/"
	require.Equal(t, http.StatusNotFound, s.get(tooLong+"follow/", session).Code)
	require.Equal(t, http.StatusNotFound, s.get(tooLong+"unfollow/", session).Code)
	require.Zero(t, edges())
}

func TestAuth(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	_, err := s.accounts.CreateUser(t.Context(), "leo", "", password, false)
	require.NoError(t, err)

	rec := s.post("/auth/login/", url.Values{"username": {"leo"}, "password": {"wrong"}}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Please enter a correct username and password.")

	rec = s.post("/auth/login/", url.Values{"username": {"leo"}, "password": {password}, "next": {"/follow/"}}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/follow/", location(rec))

	rec = s.post("/auth/login/", url.Values{"username": {"leo"}, "password": {password}, "next": {"https://evil.example/"}}, nil)
	require.Equal(t, "/", location(rec))
	session := sessionCookie(t, rec)

	rec = s.get("/auth/logout/", session)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "You have been logged out")
	require.Empty(t, sessionCookie(t, rec).Value)

	signup := url.Values{
		"username":         {"mia"},
		"password":         {password},
		"password_confirm": {password},
	}
	rec = s.post("/auth/signup/", signup, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, http.StatusOK, s.get("/create/", sessionCookie(t, rec)).Code)

	rec = s.post("/auth/signup/", signup, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "A user with that username already exists.")
}

func TestAdminGroups(t *testing.T) {
	t.Parallel()

	s := newSite(t)
	_, staff := s.login(t, "boss", true)
	_, regular := s.login(t, "leo", false)

	require.Equal(t, http.StatusForbidden, s.get("/admin/groups/", regular).Code)
	rec := s.get("/admin/groups/", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/auth/login/?next=/admin/groups/", location(rec))

	group := url.Values{"title": {"Cats"}, "slug": {"cats"}, "description": {"All about cats"}}
	rec = s.post("/admin/groups/new/", group, staff)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, http.StatusOK, s.get("/group/cats/", nil).Code)

	rec = s.post("/admin/groups/new/", group, staff)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Group with this Slug already exists.")

	rec = s.post("/admin/groups/cats/delete/", nil, staff)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, http.StatusNotFound, s.get("/group/cats/", nil).Code)
}
