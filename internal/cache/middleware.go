package cache

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Observer is told about every lookup; metrics plug in here
type Observer interface {
	Hit(path string)
	Miss(path string)
}

type bodyRecorder struct {
	io.Writer
	http.ResponseWriter
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	return r.Writer.Write(b)
}

func (r *bodyRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// VaryFunc names the variant of a page a request gets. Requests with
// different variants never share a cached body.
type VaryFunc func(c echo.Context) string

// CachePage serves successful GET responses from store, keyed by the full
// request URI (path and query) plus the variant from vary, when set.
// Misses run the handler and store its body.
func CachePage(store Store, ttl time.Duration, observer Observer, vary VaryFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet {
				return next(c)
			}

			ctx := req.Context()
			key := req.URL.RequestURI()
			if vary != nil {
				key += "|" + vary(c)
				c.Response().Header().Add(echo.HeaderVary, echo.HeaderCookie)
			}

			body, err := store.Get(ctx, key)
			if err == nil {
				if observer != nil {
					observer.Hit(c.Path())
				}
				return c.HTMLBlob(http.StatusOK, body)
			}
			if !errors.Is(err, ErrMiss) {
				log.Warn().Err(err).Str("key", key).Msg("Page cache lookup failed")
			}
			if observer != nil {
				observer.Miss(c.Path())
			}

			res := c.Response()
			buf := new(bytes.Buffer)
			recorder := &bodyRecorder{
				Writer:         io.MultiWriter(res.Writer, buf),
				ResponseWriter: res.Writer,
			}
			res.Writer = recorder
			defer func() { res.Writer = recorder.ResponseWriter }()

			if err := next(c); err != nil {
				return err
			}

			if res.Status == http.StatusOK && buf.Len() > 0 {
				if err := store.Set(ctx, key, buf.Bytes(), ttl); err != nil {
					log.Warn().Err(err).Str("key", key).Msg("Page cache store failed")
				}
			}
			return nil
		}
	}
}
