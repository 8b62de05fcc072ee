package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/yatube/pkg/firebase"
)

// FirebaseTokenKey holds the verified *auth.Token
const FirebaseTokenKey = "firebaseToken"

// FirebaseToken verifies the Firebase ID token sent either as a Bearer
// Authorization header or as the id_token form value
func FirebaseToken(verifier firebase.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idToken := c.FormValue("id_token")
			if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
				tokenParts := strings.Split(authHeader, " ")
				if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
					return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
				}
				idToken = tokenParts[1]
			}
			if idToken == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Firebase ID token is missing")
			}

			token, err := verifier.VerifyIDToken(c.Request().Context(), idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
			}

			c.Set(FirebaseTokenKey, token)
			return next(c)
		}
	}
}
