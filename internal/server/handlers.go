package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/historygraph/pkg/buildinfo"
	"github.com/matzehuels/historygraph/pkg/cache"
	"github.com/matzehuels/historygraph/pkg/errors"
	"github.com/matzehuels/historygraph/pkg/observability"
	"github.com/matzehuels/historygraph/pkg/pipeline"
	"github.com/matzehuels/historygraph/pkg/scene"
	"github.com/matzehuels/historygraph/pkg/session"
)

// PageInfo describes how the stage is split into pages.
type PageInfo struct {
	Build       string `json:"build"`
	Width       int    `json:"width"`
	PageHeight  int    `json:"page_height"`
	StageHeight int    `json:"stage_height"`
	Pages       int    `json:"pages"`
}

// ClickRequest is the body of POST /api/click. X and Y are viewport
// coordinates on the given page.
type ClickRequest struct {
	Page int     `json:"page"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// ClickResponse identifies the clicked commit.
type ClickResponse struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
}

// SessionResponse is the browsing state of the requesting viewer.
type SessionResponse struct {
	Build     string `json:"build"`
	Page      int    `json:"page"`
	Highlight string `json:"highlight,omitempty"`
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok", "version": buildinfo.Short()}
	if b, err := s.current(); err == nil {
		resp["build"] = b.id
		resp["built_at"] = b.at.UTC().Format(time.RFC3339)
	} else {
		resp["status"] = "building"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	b, ok := s.ready(w)
	if !ok || notModified(w, r, b) {
		return
	}
	data, err := scene.Marshal(b.scene)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "encode scene"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleGraphSVG(w http.ResponseWriter, r *http.Request) {
	b, ok := s.ready(w)
	if !ok || notModified(w, r, b) {
		return
	}
	data, err := s.artifact(r, b, pipeline.FormatSVG, 0, func() ([]byte, error) {
		return pipeline.RenderSVG(b.scene, b.assets, s.opts)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(data)
}

func (s *Server) handleDAG(w http.ResponseWriter, r *http.Request) {
	b, ok := s.ready(w)
	if !ok || notModified(w, r, b) {
		return
	}
	data, err := s.artifact(r, b, pipeline.FormatDOT, 0, func() ([]byte, error) {
		return pipeline.RenderDOT(r.Context(), b.seq, s.opts)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(data)
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	b, ok := s.ready(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, PageInfo{
		Build:       b.id,
		Width:       s.opts.Width,
		PageHeight:  s.opts.Height,
		StageHeight: pipeline.StageHeight(b.scene),
		Pages:       pipeline.PageCount(b.scene, s.opts.Height),
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	b, ok := s.ready(w)
	if !ok {
		return
	}
	page, err := s.pageParam(chi.URLParam(r, "page"), b)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if notModified(w, r, b) {
		return
	}
	data, err := s.artifact(r, b, pipeline.FormatPNG, page, func() ([]byte, error) {
		return pipeline.RenderPage(b.scene, b.assets, s.opts, page)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	b, ok := s.ready(w)
	if !ok {
		return
	}
	var req ClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode click"))
		return
	}
	if _, err := s.pageParam(strconv.Itoa(req.Page), b); err != nil {
		s.writeError(w, err)
		return
	}

	s.clickMu.Lock()
	commit, hit, err := clickPage(b, req)
	s.clickMu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !hit {
		s.writeError(w, errors.New(errors.ErrCodeCommitNotFound, "no commit at (%.0f, %.0f) on page %d", req.X, req.Y, req.Page))
		return
	}

	sess, err := s.viewerSession(r, b)
	if err == nil && sess == nil {
		sess, err = s.startSession(w, b)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess.Page, sess.Highlight = req.Page, commit.CommitHash
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		s.logger.Warn("saving session failed", "error", err)
	}
	writeJSON(w, http.StatusOK, ClickResponse{Hash: commit.CommitHash, Message: commit.CommitMessage})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	b, ok := s.ready(w)
	if !ok {
		return
	}
	sess, err := s.viewerSession(r, b)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sess == nil {
		writeJSON(w, http.StatusOK, SessionResponse{Build: b.id})
		return
	}
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		s.logger.Warn("saving session failed", "error", err)
	}
	writeJSON(w, http.StatusOK, SessionResponse{Build: b.id, Page: sess.Page, Highlight: sess.Highlight})
}

// viewerSession returns the session named by the request cookie, or nil
// when there is none. Sessions are only stored once a click gives them
// state. A session from an older build keeps its highlight only if the
// commit is still in the scene, and its page is clamped to the new page
// count.
func (s *Server) viewerSession(r *http.Request, b *build) (*session.Session, error) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, nil
	}
	sess, err := s.sessions.Get(r.Context(), c.Value)
	if err != nil || sess == nil {
		return nil, err
	}
	if sess.SceneHash != b.sceneHash {
		if _, ok := b.scene.CommitAt(sess.Highlight); !ok {
			sess.Highlight = ""
		}
		sess.Page = min(sess.Page, pipeline.PageCount(b.scene, s.opts.Height)-1)
		sess.SceneHash = b.sceneHash
	}
	sess.Touch(time.Now(), session.DefaultTTL)
	return sess, nil
}

// startSession creates a session for b and hands its id to the viewer.
func (s *Server) startSession(w http.ResponseWriter, b *build) (*session.Session, error) {
	id, err := session.GenerateID()
	if err != nil {
		return nil, err
	}
	sess := session.New(id, session.DefaultTTL)
	sess.SceneHash = b.sceneHash
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

// clickPage moves the build's view to the requested page and hit-tests.
func clickPage(b *build, req ClickRequest) (scene.Commit, bool, error) {
	if err := b.view.Goto(req.Page); err != nil {
		return scene.Commit{}, false, err
	}
	return b.view.Click(req.X, req.Y)
}

// artifact returns a cached rendering or produces and caches it.
func (s *Server) artifact(r *http.Request, b *build, format string, page int, render func() ([]byte, error)) ([]byte, error) {
	key := s.runner.Keyer.ArtifactKey(b.sceneHash, s.opts.ArtifactKeyOpts(format, page))
	if data, err := cache.Lookup(r.Context(), s.runner.Cache, key); err == nil {
		observability.Cache().OnCacheHit(r.Context(), key)
		return data, nil
	}
	observability.Cache().OnCacheMiss(r.Context(), key)
	data, err := render()
	if err != nil {
		return nil, err
	}
	if err := s.runner.Cache.Set(r.Context(), key, data, cache.TTLArtifact); err != nil {
		s.logger.Warn("caching artifact failed", "format", format, "error", err)
	}
	return data, nil
}

func (s *Server) pageParam(raw string, b *build) (int, error) {
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid page %q", raw)
	}
	if n := pipeline.PageCount(b.scene, s.opts.Height); page < 0 || page >= n {
		return 0, errors.New(errors.ErrCodePageNotFound, "page %d out of range [0, %d)", page, n)
	}
	return page, nil
}

func (s *Server) ready(w http.ResponseWriter) (*build, bool) {
	b, err := s.current()
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return b, true
}

// notModified sets the ETag and answers 304 when the client already has
// this build.
func notModified(w http.ResponseWriter, r *http.Request, b *build) bool {
	etag := `"` + b.id + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

// observe logs requests and reports them to the server hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.Server().OnRequest(r.Context(), r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		observability.Server().OnResponse(r.Context(), r.Method, r.URL.Path, status, dur)
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", dur)
	})
}
