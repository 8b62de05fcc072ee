package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// HTTPServer exposes /metrics on its own port
type HTTPServer struct {
	srv *http.Server
}

func NewHTTPServer(port string, gatherer prometheus.Gatherer) *HTTPServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &HTTPServer{srv: &http.Server{Addr: ":" + port, Handler: mux}}
}

func (s *HTTPServer) Start() {
	go func() {
		log.Info().Str("addr", s.srv.Addr).Msg("Starting metrics server")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Metrics server stopped")
		}
	}()
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
