package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mitchellh/go-homedir"

	"obj-scene-renderer/internal/obj"
	"obj-scene-renderer/internal/scene"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	Scene       string   `json:"scene"`
	OutputDir   string   `json:"output_dir"`
	TextureDirs []string `json:"texture_dirs"`

	// Render settings
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Supersample int    `json:"supersample"`
	Format      string `json:"format"` // webp or png
	Workers     int    `json:"workers"`
	Frames      int    `json:"frames"`
	Shading     string `json:"shading"` // overrides the scene when set
	Wireframe   bool   `json:"wireframe"`
	CullBack    bool   `json:"cull_back"`
	Skybox      bool   `json:"skybox"`

	// Import settings
	Reindex string `json:"reindex"` // remap or window
	Lenient bool   `json:"lenient"`

	dir string // directory of the config file, for relative paths
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: expand %s: %w", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Scene     string
	OutputDir string
	Format    string
	Shading   string
	Width     int
	Height    int
	Workers   int
	Frames    int
	Lenient   bool
	Wireframe bool
}

// Resolve applies flags, fills in defaults and expands paths. CLI flags take
// priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) error {
	if flags.Scene != "" {
		c.Scene = flags.Scene
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Shading != "" {
		c.Shading = flags.Shading
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	c.Lenient = c.Lenient || flags.Lenient
	c.Wireframe = c.Wireframe || flags.Wireframe

	if c.OutputDir == "" {
		c.OutputDir = "renders"
	}

	var err error
	if c.Scene, err = c.path(c.Scene); err != nil {
		return err
	}
	if c.OutputDir, err = c.path(c.OutputDir); err != nil {
		return err
	}
	for i, d := range c.TextureDirs {
		if c.TextureDirs[i], err = c.path(d); err != nil {
			return err
		}
	}

	// Defaults for render settings
	if c.Width <= 0 {
		c.Width = 640
	}
	if c.Height <= 0 {
		c.Height = 480
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Format == "" {
		c.Format = "webp"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Frames <= 0 {
		c.Frames = 1
	}
	if c.Reindex == "" {
		c.Reindex = obj.Remap.String()
	}

	switch c.Format {
	case "webp", "png":
	default:
		return fmt.Errorf("config: unknown output format %q", c.Format)
	}
	if _, err := obj.ParseReindex(c.Reindex); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := scene.ParseShading(c.Shading); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ReindexStrategy returns the parsed reindex setting; call after Resolve.
func (c *Config) ReindexStrategy() obj.Reindex {
	r, _ := obj.ParseReindex(c.Reindex)
	return r
}

// ShadingOverride returns the parsed shading setting; call after Resolve.
func (c *Config) ShadingOverride() scene.Shading {
	s, _ := scene.ParseShading(c.Shading)
	return s
}

// path expands ~ and makes p relative to the config file's directory.
func (c *Config) path(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	p, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("config: expand %s: %w", p, err)
	}
	if !filepath.IsAbs(p) && c.dir != "" {
		p = filepath.Join(c.dir, p)
	}
	return p, nil
}
