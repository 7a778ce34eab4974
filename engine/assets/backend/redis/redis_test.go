package assetsredis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/bmizerany/assert"
	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/assets"
)

func TestRedisLoader(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	s.Set("_ASSET_maps/level1.json", `{"w":10}`)

	loader, err := OpenRedis("redis://"+s.Addr(), 0, "_ASSET_")
	if err != nil {
		t.Fatal(err)
	}
	defer loader.Close()

	data, err := loader.LoadFile("maps/level1.json")
	assert.Equal(t, nil, err)
	assert.Equal(t, `{"w":10}`, string(data))

	_, err = loader.LoadFile("maps/level2.json")
	assert.T(t, errors.Cause(err) == assets.ErrNotFound, "not found")

	assert.Equal(t, nil, loader.Store("maps/level2.json", []byte("L2")))
	v, _ := s.Get("_ASSET_maps/level2.json")
	assert.Equal(t, "L2", v)

	cache := assets.NewCache(loader)
	b1, _ := cache.GetOrLoad("maps/level2.json")
	s.Set("_ASSET_maps/level2.json", "changed")
	b2, _ := cache.GetOrLoad("maps/level2.json")
	assert.Equal(t, "L2", string(b2.Bytes()))
	assert.T(t, b1 == b2, "served from cache")
}

func TestOpenRedisFails(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	addr := s.Addr()
	s.Close()
	_, err = OpenRedis("redis://"+addr, 0, "_ASSET_")
	assert.T(t, err != nil, "server is down")
}
