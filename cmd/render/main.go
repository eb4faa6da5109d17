package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"obj-scene-renderer/internal/batch"
	"obj-scene-renderer/internal/config"
	"obj-scene-renderer/internal/obj"
	"obj-scene-renderer/internal/raster"
	"obj-scene-renderer/internal/scene"
	"obj-scene-renderer/internal/texture"
	"obj-scene-renderer/internal/watch"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	scenePath := flag.String("scene", "", "Scene description (.yaml or .toml)")
	outputDir := flag.String("output", "", "Output directory (default: renders)")
	frames := flag.Int("frames", 0, "Number of turntable frames (default: 1)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	format := flag.String("format", "", "Output format: webp or png (default: webp)")
	width := flag.Int("width", 0, "Frame width (default: 640)")
	height := flag.Int("height", 0, "Frame height (default: 480)")
	shading := flag.String("shading", "", "Override shading: flat, phong or environment")
	lenient := flag.Bool("lenient", false, "Skip unknown OBJ directives instead of failing")
	wireframe := flag.Bool("wireframe", false, "Draw triangle edges only")
	watchFiles := flag.Bool("watch", false, "Re-render when the scene or its models change")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	if err := cfg.Resolve(config.Flags{
		Scene:     *scenePath,
		OutputDir: *outputDir,
		Format:    *format,
		Shading:   *shading,
		Width:     *width,
		Height:    *height,
		Workers:   *workers,
		Frames:    *frames,
		Lenient:   *lenient,
		Wireframe: *wireframe,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Scene == "" {
		fmt.Fprintln(os.Stderr, "Error: no scene. Use -scene flag or config.json.")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sc, err := renderOnce(ctx, &cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !*watchFiles {
		return
	}

	paths := watchedPaths(cfg.Scene, sc)
	fmt.Printf("Watching %d files, Ctrl-C to stop\n", len(paths))
	err = watch.Files(ctx, paths, 300*time.Millisecond, func() error {
		_, err := renderOnce(ctx, &cfg)
		return err
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func renderOnce(ctx context.Context, cfg *config.Config) (*scene.Scene, error) {
	desc, err := scene.LoadDescription(cfg.Scene)
	if err != nil {
		return nil, err
	}
	sceneDir := filepath.Dir(cfg.Scene)
	sc, err := scene.Build(desc, sceneDir, obj.Options{
		Reindex: cfg.ReindexStrategy(),
		Lenient: cfg.Lenient,
		Logger:  slog.Default(),
	})
	if err != nil {
		return nil, err
	}

	// Build texture index
	texIndex := texture.BuildIndex(append([]string{sceneDir}, cfg.TextureDirs...)...)
	texCache := texture.NewCache(texIndex, slog.Default())
	fmt.Printf("Textures: %d indexed\n", texIndex.Len())

	env := texCache.Resolve(sc.Environment)
	if sc.Environment != "" && env == nil {
		slog.Warn("environment image unavailable, using light only", "path", sc.Environment)
	}

	meshes, tris := sc.Stats()
	fmt.Printf("OBJ scene renderer → %s\n", cfg.Format)
	fmt.Printf("Scene: %s (%d meshes, %d triangles)\n", cfg.Scene, meshes, tris)
	fmt.Printf("Frames: %d, Size: %dx%d, Workers: %d\n", cfg.Frames, cfg.Width, cfg.Height, cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	batchCfg := batch.Config{
		OutputDir:   cfg.OutputDir,
		Format:      cfg.Format,
		Frames:      cfg.Frames,
		Workers:     cfg.Workers,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Supersample: cfg.Supersample,
		Render: raster.Options{
			Textures:    texCache,
			Environment: env,
			Skybox:      cfg.Skybox,
			Wireframe:   cfg.Wireframe,
			CullBack:    cfg.CullBack,
			Shading:     cfg.ShadingOverride(),
		},
		Progress: os.Stdout,
		Logger:   slog.Default(),
	}
	results := batch.Run(ctx, sc, batchCfg)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success := 0
	var failed []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed = append(failed, r)
		}
	}
	fmt.Printf("Rendered: %d/%d\n", success, len(results))

	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		limit := min(len(failed), 20)
		for _, r := range failed[:limit] {
			fmt.Printf("  frame %d: %s\n", r.Frame, r.Error)
		}
		if len(failed) > limit {
			fmt.Printf("  ... and %d more\n", len(failed)-limit)
		}
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return sc, err
	}
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, cfg.Scene, batchCfg, results); err != nil {
		return sc, fmt.Errorf("write manifest: %w", err)
	}
	fmt.Printf("Manifest: %s\n", manifestPath)
	return sc, nil
}

// watchedPaths lists the description and every model file it references.
func watchedPaths(descPath string, sc *scene.Scene) []string {
	paths := []string{descPath}
	seen := map[string]bool{descPath: true}
	sc.Walk(func(n *scene.Node, _ mgl32.Mat4, _ scene.Shading) bool {
		if n.Model != "" && !seen[n.Model] {
			seen[n.Model] = true
			paths = append(paths, n.Model)
		}
		return true
	})
	return paths
}
