package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

var errorPages = map[int]string{
	http.StatusForbidden:           "core/403.html",
	http.StatusNotFound:            "core/404.html",
	http.StatusInternalServerError: "core/500.html",
}

// ErrorHandler renders HTTP errors as HTML pages. Errors that are not
// *echo.HTTPError are internal faults: they are logged and shown as 500.
func ErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}
		if code >= http.StatusInternalServerError {
			log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("Request failed")
		}

		page, ok := errorPages[code]
		if !ok {
			if code > http.StatusInternalServerError {
				page = errorPages[http.StatusInternalServerError]
			} else {
				e.DefaultHTTPErrorHandler(err, c)
				return
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.Render(code, page, nil)
		}
		if err != nil {
			log.Error().Err(err).Msg("Unable to render error page")
		}
	}
}
