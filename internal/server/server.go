// Package server exposes a laid out history over HTTP.
//
// Routes:
//
//	GET  /healthz                 build id and readiness
//	GET  /api/graph               scene JSON
//	GET  /api/graph.svg           the whole stage as SVG
//	GET  /api/dag.svg             graphviz node-link diagram
//	GET  /api/pages               page geometry
//	GET  /api/pages/{page}.png    one rasterized viewport page
//	POST /api/click               {"page","x","y"} -> clicked commit
//	GET  /api/session             page and highlight of this viewer
//
// Every rebuild gets a fresh build id, used as the ETag of scene responses.
// Viewers are told apart by a session cookie; a click records the page and
// the highlighted commit in the viewer's session.
package server

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/historygraph/pkg/canvas"
	"github.com/matzehuels/historygraph/pkg/errors"
	"github.com/matzehuels/historygraph/pkg/history"
	"github.com/matzehuels/historygraph/pkg/pipeline"
	"github.com/matzehuels/historygraph/pkg/scene"
	"github.com/matzehuels/historygraph/pkg/session"
	"github.com/matzehuels/historygraph/pkg/watch"
)

// Server serves one input file.
type Server struct {
	runner *pipeline.Runner
	opts   pipeline.Options
	logger *log.Logger

	mu    sync.RWMutex
	build *build

	clickMu  sync.Mutex
	sessions session.Store

	watcher *watch.FileWatcher
}

// build is one laid out version of the input.
type build struct {
	id        string
	scene     *scene.Scene
	sceneHash string
	seq       history.Sequence
	assets    pipeline.Assets
	view      *canvas.Canvas // hit testing for clicks
	at        time.Time
}

// New creates a server for opts.Input. Call [Server.Rebuild] before
// serving.
func New(runner *pipeline.Runner, opts pipeline.Options, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	opts.Logger = logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Server{runner: runner, opts: opts, logger: logger, sessions: session.NewMemoryStore()}, nil
}

// Rebuild imports and lays out the input again, replacing the served
// version on success. The previous version keeps being served on failure.
func (s *Server) Rebuild(ctx context.Context) error {
	opts := s.opts
	sr, err := s.runner.Scene(ctx, opts)
	if err != nil {
		return err
	}
	seq := sr.Sequence
	if seq == nil {
		// scene cache hit; the DAG view still needs the commits
		if seq, _, err = s.runner.Import(ctx, opts); err != nil {
			return err
		}
	}
	assets, err := pipeline.LoadAssets(ctx, s.opts)
	if err != nil {
		return err
	}

	view := canvas.New(canvas.NewSVG(s.opts.Width, s.opts.Height, assets.Fonts),
		canvas.WithColors(s.opts.Colors),
		canvas.WithLogger(s.logger),
		canvas.WithClickHandler(func(hash, message string) {
			s.logger.Debug("commit clicked", "hash", hash, "message", message)
		}),
	)
	view.Ready(assets.Sprites)
	if err := view.Render(sr.Scene); err != nil {
		return err
	}

	b := &build{
		id:        uuid.NewString(),
		scene:     sr.Scene,
		sceneHash: sr.Hash,
		seq:       seq,
		assets:    assets,
		view:      view,
		at:        time.Now(),
	}
	s.mu.Lock()
	s.build = b
	s.mu.Unlock()

	s.logger.Info("scene ready", "build", b.id, "commits", len(b.scene.Commits), "cached", sr.Hit)
	return nil
}

// Watch rebuilds whenever the input file changes, until ctx is done.
func (s *Server) Watch(ctx context.Context) error {
	w, err := watch.New(s.opts.Input, func([]byte) {
		s.logger.Info("input changed, rebuilding", "path", s.opts.Input)
		if err := s.Rebuild(ctx); err != nil {
			s.logger.Error("rebuild failed", "error", err)
		}
	}, watch.WithLogger(s.logger))
	if err != nil {
		return err
	}
	s.watcher = w
	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	return nil
}

func (s *Server) current() (*build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.build == nil {
		return nil, errors.New(errors.ErrCodeNotReady, "scene not built yet")
	}
	return s.build, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/graph.svg", s.handleGraphSVG)
		r.Get("/dag.svg", s.handleDAG)
		r.Get("/pages", s.handlePages)
		r.Get("/pages/{page}.png", s.handlePage)
		r.Post("/click", s.handleClick)
		r.Get("/session", s.handleSession)
	})
	return r
}

// sessionCookie names the cookie carrying the viewer's session id.
const sessionCookie = "historygraph_session"

// sessionSweep is how often expired sessions are dropped.
const sessionSweep = 10 * time.Minute

func (s *Server) expireSessions(ctx context.Context) {
	t := time.NewTicker(sessionSweep)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.sessions.Cleanup(ctx); err != nil {
				s.logger.Warn("session cleanup failed", "error", err)
			}
		}
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	go s.expireSessions(ctx)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
