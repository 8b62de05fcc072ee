package handlers

import (
	"errors"
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/anonto42/yatube/internal/forms"
	"github.com/anonto42/yatube/internal/middleware"
	"github.com/anonto42/yatube/internal/render"
	"github.com/anonto42/yatube/internal/services"
	"github.com/anonto42/yatube/pkg/firebase"
)

// AuthHandler handles login, signup and logout
type AuthHandler struct {
	accounts  *services.Accounts
	sessions  *middleware.Sessions
	validator *forms.Validator
	firebase  firebase.TokenVerifier
}

// NewAuthHandler creates a new AuthHandler. verifier may be nil, in which
// case Firebase login is not offered.
func NewAuthHandler(accounts *services.Accounts, sessions *middleware.Sessions, validator *forms.Validator, verifier firebase.TokenVerifier) *AuthHandler {
	return &AuthHandler{
		accounts:  accounts,
		sessions:  sessions,
		validator: validator,
		firebase:  verifier,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.Match([]string{http.MethodGet, http.MethodPost}, "/login/", h.Login)
	g.Match([]string{http.MethodGet, http.MethodPost}, "/signup/", h.Signup)
	g.Match([]string{http.MethodGet, http.MethodPost}, "/logout/", h.Logout)
	if h.firebase != nil {
		g.POST("/firebase/", h.FirebaseLogin, middleware.FirebaseToken(h.firebase))
	}
}

func (h *AuthHandler) Login(c echo.Context) error {
	form := forms.NewLoginForm()
	next := c.QueryParam("next")

	if c.Request().Method == http.MethodPost {
		if err := c.Bind(form); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
		}
		next = c.FormValue("next")
		if form.Validate(h.validator) {
			user, err := h.accounts.Authenticate(c.Request().Context(), form.Username, form.Password)
			switch {
			case errors.Is(err, services.ErrInvalidCredentials):
				form.InvalidCredentials()
			case err != nil:
				return err
			default:
				if err := h.sessions.Login(c, user); err != nil {
					return err
				}
				log.Info().Str("username", user.Username).Msg("User logged in")
				return c.Redirect(http.StatusFound, middleware.SafeNext(next))
			}
		}
	}

	return c.Render(http.StatusOK, "users/login.html", render.Data{
		"Form": form,
		"Next": next,
	})
}

func (h *AuthHandler) Signup(c echo.Context) error {
	form := forms.NewSignupForm()

	if c.Request().Method == http.MethodPost {
		if err := c.Bind(form); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid form data")
		}
		if form.Validate(h.validator) {
			user, err := h.accounts.Signup(c.Request().Context(), form)
			if err != nil {
				return err
			}
			if user != nil {
				if err := h.sessions.Login(c, user); err != nil {
					return err
				}
				log.Info().Str("username", user.Username).Msg("User signed up")
				return c.Redirect(http.StatusFound, "/")
			}
		}
	}

	return c.Render(http.StatusOK, "users/signup.html", render.Data{"Form": form})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.Logout(c)
	return c.Render(http.StatusOK, "users/logged_out.html", nil)
}

// FirebaseLogin trades a verified Firebase ID token for a session
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	token, ok := c.Get(middleware.FirebaseTokenKey).(*auth.Token)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Firebase ID token is missing")
	}

	user, err := h.accounts.FirebaseLogin(c.Request().Context(), token)
	if err != nil {
		return err
	}
	if err := h.sessions.Login(c, user); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, middleware.SafeNext(c.FormValue("next")))
}
