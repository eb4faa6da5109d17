package texture

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// Formats that carry alpha win when two files share a stem.
var alphaFormats = map[string]bool{".png": true, ".tga": true, ".webp": true}

// Index finds textures by name regardless of case, directory prefix or
// extension. Exporters often write map_Kd paths from another machine
// ("C:\\maps\\Wood.JPG") that only match a local file loosely.
type Index struct {
	names map[string]string // lowercase base name → path
	stems map[string]string // lowercase stem → path
}

// BuildIndex scans dirs recursively for decodable images. Unreadable
// directories are skipped.
func BuildIndex(dirs ...string) *Index {
	idx := &Index{names: make(map[string]string), stems: make(map[string]string)}
	for _, dir := range dirs {
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			idx.add(path)
			return nil
		})
	}
	return idx
}

func (idx *Index) add(path string) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := decoders[ext]; !ok {
		return
	}
	base := strings.ToLower(filepath.Base(path))
	if _, exists := idx.names[base]; !exists {
		idx.names[base] = path
	}
	stem := strings.TrimSuffix(base, ext)
	existing, exists := idx.stems[stem]
	if !exists || (alphaFormats[ext] && !alphaFormats[strings.ToLower(filepath.Ext(existing))]) {
		idx.stems[stem] = path
	}
}

// ResolvePath returns the indexed path for a texture reference, or ("", false).
// An exact base-name match wins over a stem match.
func (idx *Index) ResolvePath(texName string) (string, bool) {
	texName = strings.ReplaceAll(texName, "\\", "/")
	base := strings.ToLower(filepath.Base(texName))
	if p, ok := idx.names[base]; ok {
		return p, true
	}
	p, ok := idx.stems[strings.TrimSuffix(base, filepath.Ext(base))]
	return p, ok
}

// Len returns the number of indexed files.
func (idx *Index) Len() int {
	return len(idx.names)
}
