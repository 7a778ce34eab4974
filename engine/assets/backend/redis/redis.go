package assetsredis

import (
	"time"

	"github.com/garyburd/redigo/redis"
	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/assets"
)

// RedisLoader loads assets stored as redis strings under prefix+path
type RedisLoader struct {
	pool   *redis.Pool
	prefix string
}

// OpenRedis opens redis at url as an asset loader
func OpenRedis(url string, dbindex int, prefix string) (*RedisLoader, error) {
	pool := &redis.Pool{
		MaxIdle:     4,
		IdleTimeout: 5 * time.Minute,
		Dial: func() (redis.Conn, error) {
			c, err := redis.DialURL(url)
			if err != nil {
				return nil, errors.Wrap(err, "redis dail failed")
			}
			if _, err := c.Do("SELECT", dbindex); err != nil {
				c.Close()
				return nil, errors.Wrap(err, "redis select db failed")
			}
			return c, nil
		},
	}

	c := pool.Get()
	defer c.Close()
	if _, err := c.Do("PING"); err != nil {
		pool.Close()
		return nil, errors.Wrapf(err, "connect redis %s", url)
	}
	return &RedisLoader{pool: pool, prefix: prefix}, nil
}

// LoadFile reads the value of prefix+path
func (rl *RedisLoader) LoadFile(path string) ([]byte, error) {
	c := rl.pool.Get()
	defer c.Close()

	data, err := redis.Bytes(c.Do("GET", rl.prefix+path))
	if err == redis.ErrNil {
		return nil, errors.Wrapf(assets.ErrNotFound, "%s", path)
	}
	return data, err
}

// Store writes data under prefix+path
func (rl *RedisLoader) Store(path string, data []byte) error {
	c := rl.pool.Get()
	defer c.Close()
	_, err := c.Do("SET", rl.prefix+path, data)
	return err
}

// Close closes the connection pool
func (rl *RedisLoader) Close() error {
	return rl.pool.Close()
}
