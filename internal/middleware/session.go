package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/render"
	"github.com/anonto42/yatube/internal/repositories"
)

const (
	SessionCookie = "sessionid"
	SessionTTL    = 14 * 24 * time.Hour
	LoginURL      = "/auth/login/"
)

// UserLoader resolves the user a session belongs to
type UserLoader interface {
	User(ctx context.Context, id uint) (*models.User, error)
}

// Sessions issues and checks the signed session cookie
type Sessions struct {
	secret []byte
	users  UserLoader
	secure bool
}

func NewSessions(secret string, users UserLoader, secure bool) *Sessions {
	return &Sessions{secret: []byte(secret), users: users, secure: secure}
}

// Login starts a session for user
func (s *Sessions) Login(c echo.Context, user *models.User) error {
	now := time.Now()
	claims := &models.SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return err
	}
	c.SetCookie(s.cookie(token, now.Add(SessionTTL)))
	c.Set(render.ViewerKey, user)
	return nil
}

// Logout drops the session cookie
func (s *Sessions) Logout(c echo.Context) {
	cookie := s.cookie("", time.Unix(0, 0))
	cookie.MaxAge = -1
	c.SetCookie(cookie)
	c.Set(render.ViewerKey, nil)
}

func (s *Sessions) cookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Sessions) parse(raw string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// LoadUser puts the session's user, if any, into the context. A broken or
// stale cookie makes the visitor anonymous; it never fails the request.
func (s *Sessions) LoadUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			claims, err := s.parse(cookie.Value)
			if err != nil {
				log.Debug().Err(err).Msg("Ignoring invalid session cookie")
				return next(c)
			}

			user, err := s.users.User(c.Request().Context(), claims.UserID)
			switch {
			case err == nil:
				c.Set(render.ViewerKey, user)
			case errors.Is(err, repositories.ErrNotFound):
				log.Debug().Uint("user", claims.UserID).Msg("Session user no longer exists")
			default:
				return err
			}
			return next(c)
		}
	}
}

// Viewer returns the logged in user or nil
func Viewer(c echo.Context) *models.User {
	user, _ := c.Get(render.ViewerKey).(*models.User)
	return user
}

// ViewerVariant tells cached pages of different viewers apart: the user id,
// or "anonymous"
func ViewerVariant(c echo.Context) string {
	if viewer := Viewer(c); viewer != nil {
		return strconv.FormatUint(uint64(viewer.ID), 10)
	}
	return "anonymous"
}

// LoginURLFor builds the login redirect that brings the user back to next
func LoginURLFor(next string) string {
	return LoginURL + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// LoginRequired sends anonymous visitors to the login page
func LoginRequired() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if Viewer(c) == nil {
				return c.Redirect(http.StatusFound, LoginURLFor(c.Request().URL.RequestURI()))
			}
			return next(c)
		}
	}
}

// StaffRequired lets staff users through and refuses everyone else
func StaffRequired() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			viewer := Viewer(c)
			if viewer == nil {
				return c.Redirect(http.StatusFound, LoginURLFor(c.Request().URL.RequestURI()))
			}
			if !viewer.IsStaff {
				return echo.NewHTTPError(http.StatusForbidden, "Staff only")
			}
			return next(c)
		}
	}
}

// SafeNext accepts only local redirect targets
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return "/"
	}
	return next
}
