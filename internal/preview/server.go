package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/mdsite/internal/config"
	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/metrics"
	"git.home.luguber.info/inful/mdsite/internal/site"
)

// Builder runs one site build.
type Builder interface {
	Build(ctx context.Context) (*site.Report, error)
}

// Server serves the output directory and rebuilds on source changes.
type Server struct {
	cfg      *config.Config
	builder  Builder
	registry *prom.Registry
	status   buildStatus
	hub      *LiveReloadHub
}

// New creates a preview server. reg may be nil when metrics are disabled.
func New(cfg *config.Config, builder Builder, reg *prom.Registry) *Server {
	return &Server{
		cfg:      cfg,
		builder:  builder,
		registry: reg,
		hub:      NewLiveReloadHub(),
	}
}

// Handler returns the HTTP handler of the preview server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", injectLiveReload(s.guard(http.FileServer(http.Dir(s.cfg.Output.Dir)))))
	mux.Handle("/livereload", s.hub)
	mux.HandleFunc("/livereload.js", serveScript)
	if s.cfg.Metrics.Enabled && s.registry != nil {
		mux.Handle(s.cfg.Metrics.Path, metrics.HTTPHandler(s.registry))
	}
	return mux
}

// guard answers 503 with the build error until the first build succeeds.
func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err, good := s.status.get(); err != nil && !good {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = fmt.Fprintf(w, "build failed:\n\n%v\n", err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run builds once, then serves and watches until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.rebuild(ctx)

	ln, err := net.Listen("tcp", s.cfg.Preview.Addr)
	if err != nil {
		return ferrors.RuntimeError("failed to start preview server").WithCause(err).
			WithContext("addr", s.cfg.Preview.Addr).
			Build()
	}
	httpServer := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second, IdleTimeout: 120 * time.Second}
	go func() {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Preview server error", logfields.Error(err))
		}
	}()
	defer s.shutdown(httpServer)
	slog.Info("Preview server listening", logfields.Addr(ln.Addr().String()), slog.String("url", "http://"+ln.Addr().String()+"/"))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return ferrors.RuntimeError("failed to create file watcher").WithCause(err).Build()
	}
	defer func() { _ = watcher.Close() }()

	ws := s.watchSet()
	if err := ws.watch(watcher); err != nil {
		return err
	}

	debounce := newDebouncer(s.cfg.Preview.DebounceDuration())
	defer debounce.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-debounce.C():
				slog.Info("Change detected; rebuilding site")
				s.rebuild(ctx)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			<-done
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ws.handleEvent(watcher, ev) {
				debounce.Trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", logfields.Error(err))
		}
	}
}

func (s *Server) watchSet() *watchSet {
	ws := newWatchSet()
	ws.addDir(s.cfg.Content.Dir)
	ws.addDir(s.cfg.Static.Dir)
	ws.addFile(s.cfg.Template.Path)
	ws.addIgnore(s.cfg.Output.Dir)
	if s.cfg.Build.StatePath != "" {
		ws.addIgnore(filepath.Dir(s.cfg.Build.StatePath))
	}
	return ws
}

// rebuild runs one build. A failure keeps the last good output in place.
func (s *Server) rebuild(ctx context.Context) {
	report, err := s.builder.Build(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if _, good := s.status.get(); good {
			slog.Warn("Rebuild failed; serving last good site", logfields.Error(err))
		} else {
			slog.Error("Initial build failed", logfields.Error(err))
		}
		s.status.setError(err)
		return
	}
	s.status.setSuccess()
	s.hub.Broadcast(report.BuildID)
}

func (s *Server) shutdown(httpServer *http.Server) {
	slog.Info("Shutting down preview server...")
	s.hub.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Warn("HTTP server shutdown error", logfields.Error(err))
	}
}
