// Package server exposes sanitizer, splitter, exporter and page storage over
// HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"pagemaker/export"
	"pagemaker/i18n"
	"pagemaker/page"
	"pagemaker/sanitize"
	"pagemaker/split"
)

// Options are defaults applied to every request.
type Options struct {
	Sanitize sanitize.Options
	Split    split.Options
	Export   export.Options

	// ImagesDir is served under ImagesURL, empty disables static images.
	ImagesDir     string
	ImagesURL     string
	MaxUploadSize int64
}

// Server routes API requests to the page processing core.
type Server struct {
	opts    Options
	pages   page.PageService
	images  page.ImageService
	catalog *i18n.Catalog
	log     *zap.Logger
	router  *chi.Mux
}

// New builds server, pages and images may be nil in which case
// corresponding endpoints are not registered.
func New(opts Options, pages page.PageService, images page.ImageService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		opts:    opts,
		pages:   pages,
		images:  images,
		catalog: i18n.Default(),
		log:     log.Named("server"),
	}
	s.router = s.routes()
	return s
}

// Handler returns root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sanitize", s.handleSanitize)
		r.Post("/split", s.handleSplit)
		r.Post("/join", s.handleJoin)
		r.Post("/export", s.handleExport)

		if s.pages != nil {
			r.Route("/pages/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetPage)
				r.Put("/", s.handlePutPage)
				r.Get("/html", s.handlePageHTML)
			})
		}
		if s.images != nil {
			r.Post("/images", s.handleUpload)
		}
	})

	if s.opts.ImagesDir != "" && s.opts.ImagesURL != "" {
		prefix := "/" + strings.Trim(s.opts.ImagesURL, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix, http.FileServer(http.Dir(s.opts.ImagesDir))))
	}
	return r
}

// requestLogger logs every request with its id, status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func(start time.Time) {
			s.log.Debug("Request served",
				zap.String("id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)))
		}(time.Now())
		next.ServeHTTP(ww, r)
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("Server started", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return fmt.Errorf("unable to stop server: %w", err)
	}
	s.log.Info("Server stopped")
	return nil
}

func (s *Server) translator(r *http.Request) i18n.Func {
	return s.catalog.Translator(r.Header.Get("Accept-Language"))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeHTML(w http.ResponseWriter, markup string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(markup))
}
