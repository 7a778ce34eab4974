package config

import (
	"strconv"

	"github.com/pkg/errors"
)

func validateConfig(cfg *EngineConfig) error {
	if cfg.Game.FPS <= 0 {
		return errors.Errorf("game fps must be positive: %d", cfg.Game.FPS)
	}
	if cfg.Physics.Substeps <= 0 {
		return errors.Errorf("physics substeps must be positive: %d", cfg.Physics.Substeps)
	}
	if cfg.Physics.Backend != "kinematic" {
		return errors.Errorf("unknown physics backend: %s", cfg.Physics.Backend)
	}
	if cfg.Assets.AsyncWorkers <= 0 {
		return errors.Errorf("assets async_workers must be positive: %d", cfg.Assets.AsyncWorkers)
	}
	return validateAssetsConfig(&cfg.Assets)
}

func validateAssetsConfig(ac *AssetsConfig) error {
	switch ac.Type {
	case "filesystem":
		if ac.Directory == "" {
			return errors.Errorf("directory is not set in %s assets config", ac.Type)
		}
	case "redis":
		if ac.Url == "" {
			return errors.Errorf("url is not set in %s assets config", ac.Type)
		}
		if _, err := strconv.Atoi(ac.DB); err != nil {
			return errors.Wrap(err, "redis db must be integer")
		}
	case "redis_cluster":
		if len(ac.StartNodes) == 0 {
			return errors.Errorf("must have at least 1 start_nodes for [assets].redis_cluster")
		}
		for s := range ac.StartNodes {
			if s == "" {
				return errors.Errorf("start_nodes must not be empty")
			}
		}
	case "mongodb":
		if ac.Url == "" {
			return errors.Errorf("url is not set in %s assets config", ac.Type)
		}
	default:
		return errors.Errorf("unknown assets type: %s", ac.Type)
	}
	return nil
}
