package batch

import (
	"encoding/json"
	"os"
)

// Manifest describes one batch run.
type Manifest struct {
	Scene  string          `json:"scene"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Format string          `json:"format"`
	Frames []ManifestEntry `json:"frames"`
}

// ManifestEntry represents one rendered frame.
type ManifestEntry struct {
	Frame    int     `json:"frame"`
	Image    string  `json:"image,omitempty"`
	AngleDeg float32 `json:"angle_deg"`
	Error    string  `json:"error,omitempty"`
}

// WriteManifest writes manifest.json describing results to path.
func WriteManifest(path, scenePath string, cfg Config, results []Result) error {
	m := Manifest{
		Scene:  scenePath,
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: cfg.Format,
		Frames: make([]ManifestEntry, len(results)),
	}
	for i, r := range results {
		m.Frames[i] = ManifestEntry{Frame: r.Frame, Image: r.Image, AngleDeg: r.AngleDeg, Error: r.Error}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
