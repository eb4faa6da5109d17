package obj

import (
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"obj-scene-renderer/internal/loaderr"
)

// ParseLine classifies one line of an OBJ file. It returns a nil Record and a
// nil error for blank lines. line is the 1-based line number used in errors.
func ParseLine(text string, line int) (Record, error) {
	return parseLine(text, "", line)
}

func parseLine(text, file string, line int) (Record, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, nil
	}

	key, args := fields[0], fields[1:]
	if strings.HasPrefix(key, "#") {
		body := strings.TrimPrefix(strings.TrimSpace(text), "#")
		return Comment{Text: strings.TrimSpace(body)}, nil
	}

	lx := lexer{file: file, line: line}
	switch key {
	// Vertex position
	case "v":
		v, err := lx.vec3(key, args)
		if err != nil {
			return nil, err
		}
		return Vertex{Pos: v}, nil
	// Vertex normal
	case "vn":
		v, err := lx.vec3(key, args)
		if err != nil {
			return nil, err
		}
		return Normal{Dir: v}, nil
	// Texture coordinate
	case "vt":
		if len(args) != 2 {
			return nil, lx.malformed("vt takes 2 coordinates, got %d", len(args))
		}
		var uv mgl32.Vec2
		for i, f := range args {
			val, err := lx.float(key, f)
			if err != nil {
				return nil, err
			}
			uv[i] = val
		}
		return TexCoord{UV: uv}, nil
	// Face
	case "f":
		if len(args) != 3 && len(args) != 4 {
			return nil, lx.malformed("f takes 3 or 4 corners, got %d", len(args))
		}
		corners := make([]Corner, len(args))
		for i, tok := range args {
			c, err := lx.corner(tok)
			if err != nil {
				return nil, err
			}
			corners[i] = c
		}
		return Face{Corners: corners}, nil
	// Material library
	case "mtllib":
		if len(args) != 1 {
			return nil, lx.malformed("mtllib takes 1 filename, got %d", len(args))
		}
		return MaterialLib{File: args[0]}, nil
	// Use material
	case "usemtl":
		if len(args) != 1 {
			return nil, lx.malformed("usemtl takes 1 material name, got %d", len(args))
		}
		return UseMaterial{Name: args[0]}, nil
	}
	return nil, loaderr.New("obj", loaderr.UnknownDirective, file, line, "%q", key)
}

type lexer struct {
	file string
	line int
}

func (lx lexer) vec3(key string, args []string) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	if len(args) != 3 {
		return v, lx.malformed("%s takes 3 coordinates, got %d", key, len(args))
	}
	for i, f := range args {
		val, err := lx.float(key, f)
		if err != nil {
			return v, err
		}
		v[i] = val
	}
	return v, nil
}

func (lx lexer) float(key, s string) (float32, error) {
	val, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, loaderr.Wrap("obj", loaderr.MalformedLine, lx.file, lx.line, err, "%s", key)
	}
	return float32(val), nil
}

// corner parses v, v/vt, v//vn or v/vt/vn.
func (lx lexer) corner(tok string) (Corner, error) {
	var c Corner
	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return c, lx.malformed("face corner %q has %d indices", tok, len(parts))
	}

	v, err := lx.index(tok, parts[0])
	if err != nil {
		return c, err
	}
	c.V = v

	if len(parts) > 1 && parts[1] != "" {
		if c.T, err = lx.index(tok, parts[1]); err != nil {
			return c, err
		}
		c.HasT = true
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.N, err = lx.index(tok, parts[2]); err != nil {
			return c, err
		}
		c.HasN = true
	}
	return c, nil
}

func (lx lexer) index(tok, s string) (int, error) {
	if s == "" {
		return 0, lx.malformed("face corner %q has no vertex index", tok)
	}
	val, err := strconv.ParseUint(s, 10, 31)
	if err != nil {
		return 0, loaderr.Wrap("obj", loaderr.MalformedLine, lx.file, lx.line, err, "face corner %q", tok)
	}
	return int(val), nil
}

func (lx lexer) malformed(format string, args ...any) error {
	return loaderr.New("obj", loaderr.MalformedLine, lx.file, lx.line, format, args...)
}
