// Package batch renders turntable frames of a scene with a worker pool.
package batch

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"obj-scene-renderer/internal/camera"
	"obj-scene-renderer/internal/postprocess"
	"obj-scene-renderer/internal/raster"
	"obj-scene-renderer/internal/scene"
)

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir   string
	Format      string // webp or png
	Frames      int
	Workers     int
	Width       int
	Height      int
	Supersample int

	// Render carries the raster settings; its size is set per frame.
	Render raster.Options

	// Progress receives a status line every two seconds when non-nil.
	Progress io.Writer
	Logger   *slog.Logger
}

// Result holds the outcome of rendering one frame.
type Result struct {
	Frame    int
	Image    string // file name relative to OutputDir
	AngleDeg float32
	Success  bool
	Error    string
}

// Run renders cfg.Frames frames of sc, turning the camera a full circle
// around the vertical axis. Frames not started when ctx is cancelled are
// reported as failures.
func Run(ctx context.Context, sc *scene.Scene, cfg Config) []Result {
	if cfg.Frames < 1 {
		cfg.Frames = 1
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	total := cfg.Frames
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress != nil {
		go func() {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						fmt.Fprintf(cfg.Progress, "  [%d/%d] %.1f frames/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	frameChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range frameChan {
				if err := ctx.Err(); err != nil {
					results[i] = failed(i, total, err)
				} else {
					results[i] = renderFrame(sc, cfg, i)
				}
				if !results[i].Success {
					log.Warn("frame failed", "frame", i, "err", results[i].Error)
				}
				processed.Add(1)
			}
		}()
	}

	for i := 0; i < total; i++ {
		frameChan <- i
	}
	close(frameChan)

	wg.Wait()
	close(done)

	return results
}

// FrameCamera returns the camera of frame i out of n: an orbit camera turns
// around its center, a first-person camera turns in place.
func FrameCamera(base camera.Camera, i, n int) camera.Camera {
	step := float32(2 * math.Pi * float64(i) / float64(n))
	switch c := base.(type) {
	case camera.Orbit:
		return c.Turn(step)
	case camera.FirstPerson:
		c.Yaw += step
		return c
	}
	return base
}

// FrameName returns the output file name of frame i.
func FrameName(i int, format string) string {
	return fmt.Sprintf("frame_%04d.%s", i, format)
}

func angleDeg(i, n int) float32 {
	return float32(360 * float64(i) / float64(n))
}

func failed(i, n int, err error) Result {
	return Result{Frame: i, AngleDeg: angleDeg(i, n), Error: err.Error()}
}

func renderFrame(sc *scene.Scene, cfg Config, i int) Result {
	opts := cfg.Render
	opts.Width, opts.Height = postprocess.Supersampled(cfg.Width, cfg.Height, cfg.Supersample)

	img := raster.Render(sc, FrameCamera(sc.Camera, i, cfg.Frames), opts)

	// Post-processing: supersample downsample
	if cfg.Supersample > 1 {
		img = postprocess.Downsample(img, cfg.Width, cfg.Height)
	}

	name := FrameName(i, cfg.Format)
	if err := save(filepath.Join(cfg.OutputDir, name), cfg.Format, img); err != nil {
		return failed(i, cfg.Frames, err)
	}
	return Result{Frame: i, Image: name, AngleDeg: angleDeg(i, cfg.Frames), Success: true}
}

func save(path, format string, img image.Image) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	switch format {
	case "png":
		err = png.Encode(f, img)
	default:
		err = nativewebp.Encode(f, img, nil)
	}
	if err != nil {
		return fmt.Errorf("batch: encode %s: %w", path, err)
	}
	return nil
}
