package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/matzehuels/historygraph/pkg/cache"
	"github.com/matzehuels/historygraph/pkg/errors"
	"github.com/matzehuels/historygraph/pkg/history"
	"github.com/matzehuels/historygraph/pkg/layout"
	"github.com/matzehuels/historygraph/pkg/observability"
	"github.com/matzehuels/historygraph/pkg/scene"
)

const sampleDoc = `{"commits":[
	{"hash":"aaaa1111","message":"tip","lane":0,"refs":["HEAD","refs/remotes/origin/main"],"parents":["cccc3333"]},
	{"hash":"bbbb2222","message":"side","lane":1,"parents":["cccc3333","ffff9999"]},
	{"hash":"cccc3333","message":"base","lane":0}
]}`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"png", false},
		{"svg", false},
		{"pdf", false},
		{"dot", false},
		{"gif", true},
		{"PNG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"json", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"json"}},
		{"png", []string{"png"}},
		{"json, PNG ,svg", []string{"json", "png", "svg"}},
		{"png,png,,", []string{"png"}},
	}
	for _, tt := range tests {
		if got := ParseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Data: []byte(sampleDoc)}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("viewport = %dx%d", opts.Width, opts.Height)
	}
	if opts.Layout != layout.DefaultConfig() {
		t.Errorf("layout = %+v", opts.Layout)
	}
	if opts.LoadTimeout != DefaultLoadTimeout || opts.FontSize != DefaultFontSize {
		t.Errorf("timeout %v, font size %v", opts.LoadTimeout, opts.FontSize)
	}
	if !reflect.DeepEqual(opts.Formats, []string{FormatJSON}) {
		t.Errorf("formats = %v", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("logger not defaulted")
	}
}

func TestValidateAndSetDefaultsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no input", Options{}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Input: "x.json", Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad layout", Options{Input: "x.json", Layout: layout.Config{LeftPad: -1}}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExecuteJSON(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{Data: []byte(sampleDoc)})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Stats.Commits != 3 || res.Import.Dangling != 1 {
		t.Errorf("stats = %+v, import = %+v", res.Stats, res.Import)
	}
	if res.Scene.Height != 150 {
		t.Errorf("scene height = %d, want 150", res.Scene.Height)
	}

	got, err := scene.Unmarshal(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(res.Scene) {
		t.Error("json artifact does not match the scene")
	}
	if res.SceneHash != cache.Hash(res.Artifacts[FormatJSON]) {
		t.Error("scene hash is not the hash of the scene JSON")
	}
}

func TestExecutePNGPages(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Data:    []byte(sampleDoc),
		Formats: []string{FormatPNG},
		Width:   300,
		Height:  120,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// stage 150 + 50 over pages of 120
	if len(res.Pages) != 2 || res.Stats.Pages != 2 {
		t.Fatalf("got %d pages (stats %d), want 2", len(res.Pages), res.Stats.Pages)
	}
	for i, p := range res.Pages {
		img, err := png.Decode(bytes.NewReader(p))
		if err != nil {
			t.Fatalf("page %d: %v", i, err)
		}
		if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 120 {
			t.Errorf("page %d is %v", i, b)
		}
	}
	if !bytes.Equal(res.Artifacts[FormatPNG], res.Pages[0]) {
		t.Error("png artifact should be the first page")
	}
}

func TestExecuteFullPage(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Data:     []byte(sampleDoc),
		Formats:  []string{FormatPNG},
		Width:    300,
		Height:   120,
		FullPage: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(res.Pages))
	}
	img, err := png.Decode(bytes.NewReader(res.Pages[0]))
	if err != nil {
		t.Fatal(err)
	}
	if h := img.Bounds().Dy(); h != 200 {
		t.Errorf("full page height = %d, want 200", h)
	}
}

func TestExecuteUsesCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	opts := Options{Data: []byte(sampleDoc), Formats: []string{FormatJSON, FormatSVG}}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.SceneHit || first.CacheInfo.RenderHit {
		t.Errorf("first run hit the cache: %+v", first.CacheInfo)
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.SceneHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run missed the cache: %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}
	if second.Sequence != nil {
		t.Error("scene cache hit should not import")
	}

	opts.Layout = layout.Config{RowHeight: 60}
	third, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.SceneHit {
		t.Error("changed geometry hit the scene cache")
	}
	if third.Scene.Height != 90 {
		t.Errorf("height = %d, want 90", third.Scene.Height)
	}
}

func TestExecuteMissingFile(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{Input: filepath.Join(t.TempDir(), "none.json")})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestExecuteMissingSprites(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{
		Data:    []byte(sampleDoc),
		Formats: []string{FormatPNG},
		Sprites: filepath.Join(t.TempDir(), "sprites.png"),
	})
	if !errors.Is(err, errors.ErrCodeAssetLoad) {
		t.Errorf("error = %v, want ASSET_LOAD", err)
	}
}

type hookRecorder struct {
	observability.NoopPipelineHooks
	layouts int
	renders []string
}

func (h *hookRecorder) OnLayoutComplete(_ context.Context, n int, _ time.Duration, err error) {
	if err == nil {
		h.layouts += n
	}
}

func (h *hookRecorder) OnRenderComplete(_ context.Context, formats []string, _ time.Duration, err error) {
	if err == nil {
		h.renders = append(h.renders, formats...)
	}
}

func TestExecuteFiresHooks(t *testing.T) {
	rec := &hookRecorder{}
	observability.SetPipelineHooks(rec)
	t.Cleanup(observability.Reset)

	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), Options{Data: []byte(sampleDoc)}); err != nil {
		t.Fatal(err)
	}
	if rec.layouts != 3 {
		t.Errorf("layout hook saw %d commits, want 3", rec.layouts)
	}
	if !reflect.DeepEqual(rec.renders, []string{FormatJSON}) {
		t.Errorf("render hook formats = %v", rec.renders)
	}
}

func TestBuildSceneRejectsBadSequence(t *testing.T) {
	seq := history.Sequence{{Hash: "a", Row: 1}, {Hash: "b", Row: 0}}
	if _, err := BuildScene(context.Background(), seq, layout.DefaultConfig()); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}
