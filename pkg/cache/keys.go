package cache

// Keyer builds cache keys. Implementations must be deterministic: equal
// inputs give equal keys.
type Keyer interface {
	// SceneKey keys a laid out scene by the hash of its input document and
	// the layout geometry.
	SceneKey(inputHash string, opts SceneKeyOpts) string

	// ArtifactKey keys a rendered output by the hash of the scene it was
	// rendered from and the render options.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// SceneKeyOpts are the layout settings that change a scene.
type SceneKeyOpts struct {
	LaneWidth int `json:"lane_width"`
	RowHeight int `json:"row_height"`
	LineWidth int `json:"line_width"`
	LeftPad   int `json:"left_pad"`
	LabelGap  int `json:"label_gap"`
	LabelPad  int `json:"label_pad"`
}

// ArtifactKeyOpts are the render settings that change an artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Page     int     `json:"page"`
	FullPage bool    `json:"full_page"`
	FontSize float64 `json:"font_size"`
	Sprites  string  `json:"sprites"`
	Colors   string  `json:"colors"` // palette fingerprint
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SceneKey returns "scene:<sha256>".
func (DefaultKeyer) SceneKey(inputHash string, opts SceneKeyOpts) string {
	return hashKey("scene", inputHash, opts)
}

// ArtifactKey returns "artifact:<format>:<sha256>".
func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, sceneHash, opts)
}
