// Package backend opens the asset loader named by the [assets] config section
package backend

import (
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/assets"
	"github.com/xiaonanln/goworld2d/engine/assets/backend/filesystem"
	"github.com/xiaonanln/goworld2d/engine/assets/backend/mongodb"
	"github.com/xiaonanln/goworld2d/engine/assets/backend/redis"
	"github.com/xiaonanln/goworld2d/engine/assets/backend/rediscluster"
	"github.com/xiaonanln/goworld2d/engine/config"
	"github.com/xiaonanln/goworld2d/engine/gwlog"
)

// Loader is an assets.Loader holding connections that must be closed
type Loader interface {
	assets.Loader
	io.Closer
}

// Open creates the loader described by cfg
func Open(cfg *config.AssetsConfig) (Loader, error) {
	gwlog.Infof("Assets loader: %s", cfg.Type)
	var loader Loader
	var err error
	switch cfg.Type {
	case "filesystem":
		loader, err = assetsfilesystem.OpenDirectory(cfg.Directory)
	case "redis":
		var dbindex int
		dbindex, err = strconv.Atoi(cfg.DB)
		if err != nil {
			return nil, errors.Wrap(err, "redis db must be integer")
		}
		loader, err = assetsredis.OpenRedis(cfg.Url, dbindex, cfg.Prefix)
	case "redis_cluster":
		loader, err = assetsrediscluster.OpenRedisCluster(cfg.StartNodes.ToList(), cfg.Prefix)
	case "mongodb":
		loader, err = assetsmongodb.OpenMongoDB(cfg.Url, cfg.DB, cfg.Prefix)
	default:
		err = errors.Errorf("unknown assets type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}
	return loader, nil
}
