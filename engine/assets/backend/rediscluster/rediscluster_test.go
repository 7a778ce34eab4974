package assetsrediscluster

import (
	"os"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/assets"
	"github.com/xiaonanln/goworld2d/engine/common"
)

// GOWORLD2D_TEST_REDIS_CLUSTER is a comma separated list of start nodes
func TestRedisClusterLoader(t *testing.T) {
	nodes := os.Getenv("GOWORLD2D_TEST_REDIS_CLUSTER")
	if nodes == "" {
		t.Skip("GOWORLD2D_TEST_REDIS_CLUSTER is not set")
	}
	loader, err := OpenRedisCluster(strings.Split(nodes, ","), "_ASSET_TEST_")
	if err != nil {
		t.Fatal(err)
	}
	defer loader.Close()

	path := "test/" + common.GenEntityID().String()
	_, err = loader.LoadFile(path)
	if errors.Cause(err) != assets.ErrNotFound {
		t.Errorf("should be not found: %v", err)
	}
	if err := loader.Store(path, []byte("data")); err != nil {
		t.Fatal(err)
	}
	data, err := loader.LoadFile(path)
	if err != nil || string(data) != "data" {
		t.Errorf("read wrong data: %q %v", data, err)
	}
}
