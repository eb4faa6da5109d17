package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"obj-scene-renderer/internal/loaderr"
	"obj-scene-renderer/internal/obj"
)

func main() {
	reindex := flag.String("reindex", "remap", "Reindex strategy: remap or window")
	lenient := flag.Bool("lenient", false, "Skip unknown directives instead of failing")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: inspect [flags] file.obj...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	strategy, err := obj.ParseReindex(*reindex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	status := 0
	for _, path := range flag.Args() {
		meshes, err := obj.Import(path, obj.Options{Reindex: strategy, Lenient: *lenient, Logger: logger})
		if err != nil {
			var le *loaderr.Error
			if errors.As(err, &le) {
				fmt.Printf("%s: %s (line %d)\n", path, le.Kind, le.Line)
			}
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			status = 1
			continue
		}
		report(path, meshes)
	}
	os.Exit(status)
}

func report(path string, meshes []obj.Mesh) {
	verts, tris := 0, 0
	for i := range meshes {
		verts += len(meshes[i].Vertices)
		tris += meshes[i].TriangleCount()
	}
	fmt.Printf("%s: %d meshes, %d vertices, %d triangles\n", path, len(meshes), verts, tris)

	for i := range meshes {
		m := &meshes[i]
		lo, hi := m.Bounds()
		fmt.Printf("  Mesh[%d] %q: verts=%d, tris=%d, normals=%t, uvs=%t, lines %d-%d\n",
			i, m.Name, len(m.Vertices), m.TriangleCount(), m.Normals != nil, m.TexCoords != nil, m.FirstLine, m.LastLine)
		fmt.Printf("    BBox: X[%.3f, %.3f] Y[%.3f, %.3f] Z[%.3f, %.3f]\n", lo[0], hi[0], lo[1], hi[1], lo[2], hi[2])
		mat := m.Material
		fmt.Printf("    Kd=(%.2f %.2f %.2f) Ns=%.1f d=%.2f", mat.Diffuse[0], mat.Diffuse[1], mat.Diffuse[2], mat.Shininess, mat.Opacity)
		if mat.DiffuseMap != "" {
			fmt.Printf(" map_Kd=%s", mat.DiffuseMap)
		}
		fmt.Println()
	}
}
