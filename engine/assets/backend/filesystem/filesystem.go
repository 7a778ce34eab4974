package assetsfilesystem

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/assets"
	"github.com/xiaonanln/goworld2d/engine/gwlog"
)

// FileSystemLoader loads assets from files under a root directory
type FileSystemLoader struct {
	directory string
}

// OpenDirectory opens directory as an asset loader
func OpenDirectory(directory string) (*FileSystemLoader, error) {
	abs, err := filepath.Abs(directory)
	if err != nil {
		return nil, errors.Wrapf(err, "asset directory %s", directory)
	}
	st, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "asset directory %s", directory)
	}
	if !st.IsDir() {
		return nil, errors.Errorf("asset directory %s is not a directory", directory)
	}
	gwlog.Infof("assets: loading from directory %s", abs)
	return &FileSystemLoader{directory: abs}, nil
}

func (fs *FileSystemLoader) filePath(path string) (string, error) {
	cp, err := assets.CanonicalPath(path)
	if err != nil {
		return "", err
	}
	fp := filepath.Join(fs.directory, filepath.FromSlash(cp))
	if fp != fs.directory && !strings.HasPrefix(fp, fs.directory+string(filepath.Separator)) {
		return "", errors.Wrapf(assets.ErrInvalidPath, "%s escapes %s", path, fs.directory)
	}
	return fp, nil
}

// LoadFile reads the file of path
func (fs *FileSystemLoader) LoadFile(path string) ([]byte, error) {
	fp, err := fs.filePath(path)
	if err != nil {
		return nil, err
	}
	data, err := ioutil.ReadFile(fp)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(assets.ErrNotFound, "%s", path)
		}
		return nil, err
	}
	return data, nil
}

// Close does nothing
func (fs *FileSystemLoader) Close() error {
	return nil
}
