package canvas

import (
	"context"
	"sync"
	"time"

	"github.com/matzehuels/historygraph/pkg/errors"
	"github.com/matzehuels/historygraph/pkg/observability"
)

// State is the readiness of an Asset.
type State int

const (
	Loading State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "loading"
	}
}

// Source produces a sprite sheet.
type Source func(ctx context.Context) (*SpriteSheet, error)

// Builtin is the Source of [DefaultSprites].
func Builtin() Source {
	return func(context.Context) (*SpriteSheet, error) { return DefaultSprites() }
}

// FromFile is the Source of [FileSprites].
func FromFile(path string) Source {
	return func(context.Context) (*SpriteSheet, error) { return FileSprites(path) }
}

// Asset tracks a sprite sheet load. It starts Loading and moves exactly once
// to Ready or Failed.
type Asset struct {
	name string

	mu       sync.Mutex
	state    State
	sheet    *SpriteSheet
	err      error
	callback func(*SpriteSheet, error)
	done     chan struct{}
}

// Load starts loading src in the background. name identifies the asset in
// errors and hooks.
func Load(ctx context.Context, name string, src Source) *Asset {
	a := &Asset{name: name, done: make(chan struct{})}
	go func() {
		start := time.Now()
		sheet, err := src(ctx)
		if err == nil && sheet == nil {
			err = errors.New(errors.ErrCodeAssetLoad, "%s: source returned no sprite sheet", name)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeAssetLoad) {
			err = errors.Wrap(errors.ErrCodeAssetLoad, err, "load %s", name)
		}
		observability.Canvas().OnAssetLoaded(ctx, name, time.Since(start), err)
		a.complete(sheet, err)
	}()
	return a
}

// Loaded returns an asset that is already Ready.
func Loaded(name string, sheet *SpriteSheet) *Asset {
	a := &Asset{name: name, done: make(chan struct{})}
	a.complete(sheet, nil)
	return a
}

func (a *Asset) complete(sheet *SpriteSheet, err error) {
	a.mu.Lock()
	if err != nil {
		a.state, a.err = Failed, err
	} else {
		a.state, a.sheet = Ready, sheet
	}
	cb := a.callback
	a.callback = nil
	close(a.done)
	a.mu.Unlock()

	if cb != nil {
		cb(sheet, err)
	}
}

// State returns the current readiness.
func (a *Asset) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// OnComplete registers the transition callback. Only one callback is kept;
// a later registration replaces an earlier one that has not fired. If the
// load already finished, fn runs immediately on the calling goroutine.
func (a *Asset) OnComplete(fn func(*SpriteSheet, error)) {
	a.mu.Lock()
	if a.state == Loading {
		a.callback = fn
		a.mu.Unlock()
		return
	}
	sheet, err := a.sheet, a.err
	a.mu.Unlock()
	fn(sheet, err)
}

// Wait blocks until the asset is Ready or Failed, or ctx is done. An expired
// context yields an ASSET_TIMEOUT error.
func (a *Asset) Wait(ctx context.Context) (*SpriteSheet, error) {
	select {
	case <-a.done:
	case <-ctx.Done():
		return nil, errors.Wrap(errors.ErrCodeAssetTimeout, ctx.Err(), "waiting for %s", a.name)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sheet, a.err
}
