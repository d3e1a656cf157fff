package interp

import (
	"io/fs"
	"os"
	"path/filepath"
)

// Loader reads whole files for the interpreter.
type Loader interface {
	ReadFile(name string) ([]byte, error)
}

// OSLoader reads from the local file system.
type OSLoader struct{}

func (OSLoader) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// MapLoader serves files from memory, keyed by cleaned path.
type MapLoader map[string]string

func (m MapLoader) ReadFile(name string) ([]byte, error) {
	if text, ok := m[filepath.Clean(name)]; ok {
		return []byte(text), nil
	}
	if text, ok := m[name]; ok {
		return []byte(text), nil
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// OverlayLoader serves in-memory documents first and falls back to another
// loader for everything else.
type OverlayLoader struct {
	Overlay  MapLoader
	Fallback Loader
}

func (o OverlayLoader) ReadFile(name string) ([]byte, error) {
	if data, err := o.Overlay.ReadFile(name); err == nil {
		return data, nil
	}
	if o.Fallback == nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return o.Fallback.ReadFile(name)
}
