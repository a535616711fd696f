// Package server publishes the viewer configuration over HTTP as the
// `app-config.js` script loaded by the viewer, and as plain JSON.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dccn-tg/viewer-toolset/pkg/ctxlog"
	"github.com/dccn-tg/viewer-toolset/pkg/store"
	"github.com/dccn-tg/viewer-toolset/pkg/viewer"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const headerRequestID = "X-Request-ID"

// Options configures a Server.
type Options struct {
	// CacheMaxAge is the max-age of the Cache-Control header.
	CacheMaxAge time.Duration
	// Revisions, when set, records each published configuration.
	Revisions *store.Revisions
	// Registry collects the server metrics; a new registry is used if nil.
	Registry *prometheus.Registry
}

// published is an immutable snapshot of a served configuration.
type published struct {
	cfg    viewer.Config
	js     []byte
	json   []byte
	digest string
	seq    uint64
}

// Server serves the current viewer configuration.
type Server struct {
	mu       sync.Mutex // serializes Reload
	current  atomic.Pointer[published]
	opts     Options
	registry *prometheus.Registry
	metrics  *metrics
}

// New returns a Server publishing `cfg`, which must be valid.
func New(cfg viewer.Config, opts Options) (*Server, error) {
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Server{
		opts:     opts,
		registry: reg,
		metrics:  newMetrics(reg),
	}

	if _, err := s.Reload(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload validates `cfg` and, if valid, publishes it in place of the
// current configuration. An invalid configuration is rejected and the
// current one keeps being served. The returned bool tells whether the
// served configuration changed.
func (s *Server) Reload(cfg viewer.Config) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := cfg.Validate(); err != nil {
		s.metrics.reloads.WithLabelValues("rejected").Inc()
		return false, err
	}

	cfg = cfg.Normalize()
	digest := cfg.Digest()

	if cur := s.current.Load(); cur != nil && cur.digest == digest {
		s.metrics.reloads.WithLabelValues("unchanged").Inc()
		return false, nil
	}

	p := &published{cfg: cfg, digest: digest}

	var buf bytes.Buffer
	if err := viewer.RenderJS(cfg, &buf); err != nil {
		s.metrics.reloads.WithLabelValues("rejected").Inc()
		return false, err
	}
	p.js = append([]byte(nil), buf.Bytes()...)

	buf.Reset()
	if err := viewer.RenderJSON(cfg, &buf); err != nil {
		s.metrics.reloads.WithLabelValues("rejected").Inc()
		return false, err
	}
	p.json = append([]byte(nil), buf.Bytes()...)

	if s.opts.Revisions != nil {
		rev, _, err := s.opts.Revisions.Record(cfg)
		if err != nil {
			s.metrics.reloads.WithLabelValues("rejected").Inc()
			return false, errors.Wrap(err, "cannot record revision")
		}
		p.seq = rev.Seq
	}

	s.current.Store(p)
	s.metrics.reloads.WithLabelValues("applied").Inc()
	s.metrics.published(digest)

	ctxlog.Logger(context.Background()).Info("viewer configuration published",
		zap.String("digest", digest),
		zap.Uint64("revision", p.seq),
	)

	return true, nil
}

// Current returns the configuration being served.
func (s *Server) Current() viewer.Config {
	return s.current.Load().cfg.Clone()
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/app-config.js", s.serveConfig("application/javascript; charset=utf-8", func(p *published) []byte { return p.js }))
	r.Get("/app-config.json", s.serveConfig("application/json", func(p *published) []byte { return p.json }))
	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

// Run serves the handler on `addr` until `ctx` is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	ctxlog.Logger(ctx).Info("server started", zap.String("addr", addr))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) serveConfig(contentType string, body func(*published) []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := s.current.Load()
		etag := strconv.Quote(p.digest)

		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.opts.CacheMaxAge.Seconds())))

		if matchETag(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		ctxlog.Logger(ctxlog.WithDigest(r.Context(), p.digest)).Debug("serving viewer configuration",
			zap.String("path", r.URL.Path),
		)

		w.Header().Set("Content-Type", contentType)
		w.Write(body(p))
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	p := s.current.Load()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":   "ok",
		"digest":   p.digest,
		"revision": p.seq,
	})
}

func matchETag(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, t := range strings.Split(header, ",") {
		t = strings.TrimSpace(t)
		if t == "*" || strings.TrimPrefix(t, "W/") == etag {
			return true
		}
	}
	return false
}

// requestID attaches a request ID, taken from the X-Request-ID header or
// freshly generated, to the request context.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(headerRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctxlog.WithRqID(r.Context(), id)))
	})
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()

		ctxlog.Logger(r.Context()).Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
