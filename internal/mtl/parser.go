// Package mtl loads Wavefront material libraries (*.mtl).
//
// Only the reflectance, exponent, opacity, illumination model and diffuse
// texture directives are read; everything else is ignored.
package mtl

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"obj-scene-renderer/internal/loaderr"
)

// Load reads a material library from disk.
func Load(path string) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mtl: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, path)
}

// LoadFS reads a material library from fsys.
func LoadFS(fsys fs.FS, name string) (*Library, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("mtl: open %s: %w", name, err)
	}
	defer f.Close()
	return Parse(f, name)
}

// Parse reads a material library from r. name is only used in errors.
func Parse(r io.Reader, name string) (*Library, error) {
	p := parser{name: name, lib: NewLibrary()}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("mtl: read %s: %w", name, err)
	}

	// Last material has no newmtl after it
	if p.cur != nil {
		p.lib.Add(p.cur)
	}
	if p.lib.Len() == 0 {
		return nil, loaderr.New("mtl", loaderr.EmptyFile, name, 0, "no newmtl directive")
	}

	slog.Debug("material library loaded", "file", name, "materials", p.lib.Len())
	return p.lib, nil
}

type parser struct {
	name string
	line int
	lib  *Library
	cur  *Material
}

func (p *parser) parseLine(text string) error {
	fields := strings.Fields(text)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	key, args := fields[0], fields[1:]
	switch key {
	case "newmtl":
		if len(args) != 1 {
			return p.malformed("newmtl takes 1 name, got %d fields", len(args))
		}
		if p.cur != nil {
			p.lib.Add(p.cur)
		}
		p.cur = New(args[0])
		slog.Debug("material definition", "file", p.name, "line", p.line, "name", args[0])
		return nil
	case "Ka", "Kd", "Ks", "Ns", "d", "Tr", "illum", "map_Kd":
		if p.cur == nil {
			return loaderr.New("mtl", loaderr.UnflushedMaterialContext, p.name, p.line, "%s before newmtl", key)
		}
	default:
		slog.Debug("ignoring material directive", "file", p.name, "line", p.line, "directive", key)
		return nil
	}

	m := p.cur
	switch key {
	case "Ka", "Kd", "Ks":
		c, err := p.color(key, args)
		if err != nil {
			return err
		}
		switch key {
		case "Ka":
			m.Ambient = c
		case "Kd":
			m.Diffuse = c
		case "Ks":
			m.Specular = c
		}
	case "Ns":
		v, err := p.scalar(key, args)
		if err != nil {
			return err
		}
		m.Shininess = v
	case "d":
		v, err := p.scalar(key, args)
		if err != nil {
			return err
		}
		m.Opacity = v
	case "Tr":
		v, err := p.scalar(key, args)
		if err != nil {
			return err
		}
		m.Opacity = 1 - v
	case "illum":
		if len(args) != 1 {
			return p.malformed("illum takes 1 value, got %d", len(args))
		}
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return loaderr.Wrap("mtl", loaderr.MalformedLine, p.name, p.line, err, "illum")
		}
		m.Illum = v
	case "map_Kd":
		// map_Kd [-options args] filename
		if len(args) == 0 {
			return p.malformed("map_Kd without filename")
		}
		m.DiffuseMap = args[len(args)-1]
	}
	return nil
}

func (p *parser) color(key string, args []string) (mgl32.Vec3, error) {
	var c mgl32.Vec3
	if len(args) != 3 {
		return c, p.malformed("%s takes 3 components, got %d", key, len(args))
	}
	for i, f := range args {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return c, loaderr.Wrap("mtl", loaderr.MalformedLine, p.name, p.line, err, "%s component %d", key, i)
		}
		c[i] = float32(v)
	}
	return c, nil
}

func (p *parser) scalar(key string, args []string) (float32, error) {
	if len(args) != 1 {
		return 0, p.malformed("%s takes 1 value, got %d", key, len(args))
	}
	v, err := strconv.ParseFloat(args[0], 32)
	if err != nil {
		return 0, loaderr.Wrap("mtl", loaderr.MalformedLine, p.name, p.line, err, "%s", key)
	}
	return float32(v), nil
}

func (p *parser) malformed(format string, args ...any) error {
	return loaderr.New("mtl", loaderr.MalformedLine, p.name, p.line, format, args...)
}
