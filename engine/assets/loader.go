package assets

import (
	"path"
	"strings"

	"github.com/pkg/errors"
)

// Loader reads the raw bytes of an asset. Implementations must be safe for concurrent use.
type Loader interface {
	LoadFile(path string) ([]byte, error)
}

// LoaderFunc adapts a function to Loader
type LoaderFunc func(path string) ([]byte, error)

// LoadFile calls f(path)
func (f LoaderFunc) LoadFile(path string) ([]byte, error) {
	return f(path)
}

// LoadError is returned when the Loader fails to load an asset
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return "load asset " + e.Path + ": " + e.Err.Error()
}

// Cause returns the loader error
func (e *LoadError) Cause() error {
	return e.Err
}

// Unwrap returns the loader error
func (e *LoadError) Unwrap() error {
	return e.Err
}

// ErrNotFound is returned by loaders for paths that name no asset
var ErrNotFound = errors.New("asset not found")

// ErrInvalidPath is the cause of a LoadError for paths that can not name an asset
var ErrInvalidPath = errors.New("invalid asset path")

// CanonicalPath cleans p into the cache key form: slash separated, no leading "/" or "./",
// and never escaping the asset root.
func CanonicalPath(p string) (string, error) {
	p = strings.Replace(p, "\\", "/", -1)
	cp := strings.TrimPrefix(path.Clean("/"+p), "/")
	if cp == "" || strings.TrimSpace(p) == "" {
		return "", errors.Wrapf(ErrInvalidPath, "%q", p)
	}
	if strings.HasPrefix(path.Clean(p), "../") || path.Clean(p) == ".." {
		return "", errors.Wrapf(ErrInvalidPath, "%q escapes the asset root", p)
	}
	return cp, nil
}
