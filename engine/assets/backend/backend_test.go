package backend

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/bmizerany/assert"
	"github.com/xiaonanln/goworld2d/engine/config"
)

func TestOpenFileSystem(t *testing.T) {
	dir, err := ioutil.TempDir("", "goworld2d_backend")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	ioutil.WriteFile(filepath.Join(dir, "a.txt"), []byte("A"), 0644)

	cfg := config.Default()
	cfg.Assets.Directory = dir
	loader, err := Open(&cfg.Assets)
	assert.Equal(t, nil, err)
	defer loader.Close()
	data, err := loader.LoadFile("a.txt")
	assert.Equal(t, nil, err)
	assert.Equal(t, "A", string(data))

	cfg.Assets.Directory = filepath.Join(dir, "missing")
	loader, err = Open(&cfg.Assets)
	assert.T(t, err != nil && loader == nil, "missing directory")
}

func TestOpenRedis(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.Set("_ASSET_a.txt", "A")

	cfg, err := config.LoadBytes([]byte("[assets]\ntype = redis\nurl = redis://" + s.Addr() + "\n"))
	if err != nil {
		t.Fatal(err)
	}
	loader, err := Open(&cfg.Assets)
	assert.Equal(t, nil, err)
	defer loader.Close()
	data, err := loader.LoadFile("a.txt")
	assert.Equal(t, nil, err)
	assert.Equal(t, "A", string(data))
}

func TestOpenUnknown(t *testing.T) {
	cfg := config.Default()
	cfg.Assets.Type = "ftp"
	_, err := Open(&cfg.Assets)
	assert.T(t, err != nil, "unknown type")
}
