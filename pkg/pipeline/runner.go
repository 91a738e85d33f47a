package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/historygraph/pkg/cache"
	"github.com/matzehuels/historygraph/pkg/canvas"
	"github.com/matzehuels/historygraph/pkg/errors"
	"github.com/matzehuels/historygraph/pkg/fonts"
	"github.com/matzehuels/historygraph/pkg/history"
	pkgio "github.com/matzehuels/historygraph/pkg/io"
	"github.com/matzehuels/historygraph/pkg/layout"
	"github.com/matzehuels/historygraph/pkg/observability"
	"github.com/matzehuels/historygraph/pkg/scene"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete import → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	sr, err := r.Scene(ctx, opts)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Scene:     sr.Scene,
		SceneHash: sr.Hash,
		Sequence:  sr.Sequence,
		Import:    sr.Import,
		Artifacts: make(map[string][]byte),
	}
	result.Stats.Commits = len(sr.Scene.Commits)
	result.Stats.ImportTime = sr.ImportTime
	result.Stats.LayoutTime = sr.LayoutTime
	result.CacheInfo.SceneHit = sr.Hit

	r.Logger.Info("laid out history",
		"commits", result.Stats.Commits,
		"height", sr.Scene.Height,
		"cached", sr.Hit,
		"duration", sr.LayoutTime)

	if opts.Wants(FormatDOT) && result.Sequence == nil {
		seq, _, err := r.Import(ctx, opts)
		if err != nil {
			return nil, err
		}
		result.Sequence = seq
	}

	renderStart := time.Now()
	rr, err := r.Render(ctx, result.Scene, result.SceneHash, result.Sequence, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = rr.Artifacts
	result.Pages = rr.Pages
	result.Stats.Pages = PageCount(result.Scene, opts.Height)
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = rr.Hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"pages", result.Stats.Pages,
		"cached", rr.Hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// =============================================================================
// Scene Stage
// =============================================================================

// SceneResult is the output of the import and layout stages.
type SceneResult struct {
	Scene      *scene.Scene
	Hash       string // hash of the scene JSON
	Sequence   history.Sequence
	Import     pkgio.Stats
	Hit        bool
	ImportTime time.Duration
	LayoutTime time.Duration
}

// Scene imports the input and lays it out, using the cache when the input
// bytes and the geometry match an earlier run.
func (r *Runner) Scene(ctx context.Context, opts Options) (*SceneResult, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}

	data, err := readInput(opts)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.SceneKey(cache.Hash(data), opts.SceneKeyOpts())

	if !opts.Refresh {
		if cached, err := cache.Lookup(ctx, r.Cache, key); err == nil {
			if s, err := scene.Unmarshal(cached); err == nil {
				observability.Cache().OnCacheHit(ctx, key)
				return &SceneResult{Scene: s, Hash: cache.Hash(cached), Hit: true}, nil
			}
			r.Logger.Debug("discarding unreadable cached scene", "key", key)
		}
		observability.Cache().OnCacheMiss(ctx, key)
	}

	importStart := time.Now()
	seq, stats, err := r.importBytes(ctx, data, opts)
	if err != nil {
		return nil, err
	}
	importTime := time.Since(importStart)

	layoutStart := time.Now()
	s, err := BuildScene(ctx, seq, opts.Layout)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	layoutTime := time.Since(layoutStart)

	encoded, err := scene.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}
	if err := r.Cache.Set(ctx, key, encoded, cache.TTLScene); err == nil {
		observability.Cache().OnCacheSet(ctx, key, len(encoded))
	} else {
		r.Logger.Warn("caching scene failed", "error", err)
	}

	return &SceneResult{
		Scene:      s,
		Hash:       cache.Hash(encoded),
		Sequence:   seq,
		Import:     stats,
		ImportTime: importTime,
		LayoutTime: layoutTime,
	}, nil
}

// BuildScene lays out seq with cfg, firing the layout hooks.
func BuildScene(ctx context.Context, seq history.Sequence, cfg layout.Config) (*scene.Scene, error) {
	observability.Pipeline().OnLayoutStart(ctx, len(seq))
	start := time.Now()
	err := seq.Validate()
	var s *scene.Scene
	if err == nil {
		s = layout.New(cfg).Build(seq)
	} else {
		err = errors.Wrap(errors.ErrCodeInvalidInput, err, "commit sequence")
	}
	observability.Pipeline().OnLayoutComplete(ctx, len(seq), time.Since(start), err)
	return s, err
}

// Import reads and decodes the input without laying it out.
func (r *Runner) Import(ctx context.Context, opts Options) (history.Sequence, pkgio.Stats, error) {
	r.applyLogger(&opts)
	data, err := readInput(opts)
	if err != nil {
		return nil, pkgio.Stats{}, err
	}
	return r.importBytes(ctx, data, opts)
}

func (r *Runner) importBytes(ctx context.Context, data []byte, opts Options) (history.Sequence, pkgio.Stats, error) {
	source := opts.Input
	if source == "" {
		source = "<data>"
	}
	observability.Pipeline().OnImportStart(ctx, source)
	start := time.Now()
	seq, stats, err := pkgio.ReadCommits(bytes.NewReader(data))
	observability.Pipeline().OnImportComplete(ctx, source, stats.Commits, time.Since(start), err)
	if err != nil {
		return nil, stats, fmt.Errorf("import %s: %w", source, err)
	}
	if stats.Dangling > 0 {
		r.Logger.Warn("dropped dangling links", "source", source, "count", stats.Dangling)
	}
	if stats.IgnoredRefs > 0 {
		r.Logger.Warn("ignored malformed ref names", "source", source, "count", stats.IgnoredRefs)
	}
	r.Logger.Debug("imported commits", "source", source, "commits", stats.Commits, "links", stats.Links)
	return seq, stats, nil
}

func readInput(opts Options) ([]byte, error) {
	if opts.Data != nil {
		return opts.Data, nil
	}
	if opts.Input == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "input path or data is required")
	}
	data, err := os.ReadFile(opts.Input)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", opts.Input)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", opts.Input, err)
	}
	return data, nil
}

// =============================================================================
// Render Stage
// =============================================================================

// RenderResult is the output of the render stage.
type RenderResult struct {
	Artifacts map[string][]byte
	Pages     [][]byte
	Hit       bool // every requested artifact came from the cache
}

// Render produces the requested formats for s. sceneHash keys the artifact
// cache; seq is only needed for the DOT format.
func (r *Runner) Render(ctx context.Context, s *scene.Scene, sceneHash string, seq history.Sequence, opts Options) (*RenderResult, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	res, err := r.render(ctx, s, sceneHash, seq, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return res, err
}

func (r *Runner) render(ctx context.Context, s *scene.Scene, sceneHash string, seq history.Sequence, opts Options) (*RenderResult, error) {
	res := &RenderResult{Artifacts: make(map[string][]byte), Hit: true}

	var assets *Assets
	getAssets := func() (Assets, error) {
		if assets == nil {
			a, err := LoadAssets(ctx, opts)
			if err != nil {
				return Assets{}, err
			}
			assets = &a
		}
		return *assets, nil
	}

	for _, format := range opts.Formats {
		if format == FormatPNG {
			pages, hit, err := r.renderPages(ctx, s, sceneHash, opts, getAssets)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", format, err)
			}
			res.Pages = pages
			res.Artifacts[format] = pages[0]
			res.Hit = res.Hit && hit
			continue
		}

		key := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format, 0))
		if data, ok := r.cached(ctx, key, opts); ok {
			res.Artifacts[format] = data
			continue
		}
		res.Hit = false

		var data []byte
		var err error
		switch format {
		case FormatJSON:
			data, err = scene.Marshal(s)
		case FormatDOT:
			if seq == nil {
				return nil, errors.New(errors.ErrCodeInvalidInput, "dot output needs the commit sequence")
			}
			data, err = RenderDOT(ctx, seq, opts)
		case FormatSVG, FormatPDF:
			var a Assets
			if a, err = getAssets(); err == nil {
				if format == FormatSVG {
					data, err = RenderSVG(s, a, opts)
				} else {
					data, err = RenderPDF(s, a, opts)
				}
			}
		default:
			err = errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", format, err)
		}
		res.Artifacts[format] = data
		r.store(ctx, key, data)
	}
	return res, nil
}

func (r *Runner) renderPages(ctx context.Context, s *scene.Scene, sceneHash string, opts Options, getAssets func() (Assets, error)) ([][]byte, bool, error) {
	n := 1
	if !opts.FullPage {
		n = PageCount(s, opts.Height)
	}
	keys := make([]string, n)
	pages := make([][]byte, n)
	hit := true
	for i := range keys {
		keys[i] = r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(FormatPNG, i))
		data, ok := r.cached(ctx, keys[i], opts)
		if !ok {
			hit = false
			break
		}
		pages[i] = data
	}
	if hit {
		return pages, true, nil
	}

	a, err := getAssets()
	if err != nil {
		return nil, false, err
	}
	pages, err = RenderPages(s, a, opts)
	if err != nil {
		return nil, false, err
	}
	for i, p := range pages {
		if i < len(keys) {
			r.store(ctx, keys[i], p)
		}
	}
	return pages, false, nil
}

func (r *Runner) cached(ctx context.Context, key string, opts Options) ([]byte, bool) {
	if opts.Refresh {
		return nil, false
	}
	data, err := cache.Lookup(ctx, r.Cache, key)
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, key)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, key)
	return data, true
}

func (r *Runner) store(ctx context.Context, key string, data []byte) {
	if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
		r.Logger.Warn("caching artifact failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, key, len(data))
}

// LoadAssets loads the font set and waits up to opts.LoadTimeout for the
// sprite sheet.
func LoadAssets(ctx context.Context, opts Options) (Assets, error) {
	fs, err := fonts.New(opts.FontSize)
	if err != nil {
		return Assets{}, errors.Wrap(errors.ErrCodeAssetLoad, err, "fonts")
	}

	src, name := canvas.Builtin(), "builtin sprites"
	if opts.Sprites != "" {
		src, name = canvas.FromFile(opts.Sprites), opts.Sprites
	}
	timeout := opts.LoadTimeout
	if timeout <= 0 {
		timeout = DefaultLoadTimeout
	}
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sheet, err := canvas.Load(wctx, name, src).Wait(wctx)
	if err != nil {
		return Assets{}, err
	}
	return Assets{Fonts: fs, Sprites: sheet}, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
