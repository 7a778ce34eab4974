package assetsrediscluster

import (
	"time"

	rediscluster "github.com/chasex/redis-go-cluster"
	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/assets"
)

// RedisClusterLoader loads assets stored as strings in a redis cluster under prefix+path
type RedisClusterLoader struct {
	c      *rediscluster.Cluster
	prefix string
}

// OpenRedisCluster connects to the cluster through startNodes
func OpenRedisCluster(startNodes []string, prefix string) (*RedisClusterLoader, error) {
	c, err := rediscluster.NewCluster(&rediscluster.Options{
		StartNodes:   startNodes,
		ConnTimeout:  10 * time.Second, // Connection timeout
		ReadTimeout:  60 * time.Second, // Read timeout
		WriteTimeout: 60 * time.Second, // Write timeout
		KeepAlive:    4,                // Maximum keep alive connecion in each node
		AliveTime:    10 * time.Minute, // Keep alive timeout
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect redis cluster failed")
	}
	return &RedisClusterLoader{c: c, prefix: prefix}, nil
}

// LoadFile reads the value of prefix+path
func (rl *RedisClusterLoader) LoadFile(path string) ([]byte, error) {
	r, err := rl.c.Do("GET", rl.prefix+path)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errors.Wrapf(assets.ErrNotFound, "%s", path)
	}
	data, ok := r.([]byte)
	if !ok {
		return nil, errors.Errorf("unexpected reply type %T for %s", r, path)
	}
	return data, nil
}

// Store writes data under prefix+path
func (rl *RedisClusterLoader) Store(path string, data []byte) error {
	_, err := rl.c.Do("SET", rl.prefix+path, data)
	return err
}

// Close closes cluster connections
func (rl *RedisClusterLoader) Close() error {
	rl.c.Close()
	return nil
}
