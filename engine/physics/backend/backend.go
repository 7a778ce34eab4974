// Package backend opens the physics backend named by the [physics] config section
package backend

import (
	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/common"
	"github.com/xiaonanln/goworld2d/engine/config"
	"github.com/xiaonanln/goworld2d/engine/gwlog"
	"github.com/xiaonanln/goworld2d/engine/physics"
	"github.com/xiaonanln/goworld2d/engine/physics/backend/kinematic"
)

// Open creates the backend described by cfg
func Open(cfg *config.PhysicsConfig) (physics.Backend, error) {
	gwlog.Infof("Physics backend: %s, gravity (%v, %v), %d substeps", cfg.Backend, cfg.GravityX, cfg.GravityY, cfg.Substeps)
	switch cfg.Backend {
	case "kinematic":
		gravity := common.Vector2{X: common.Coord(cfg.GravityX), Y: common.Coord(cfg.GravityY)}
		return kinematic.New(gravity, cfg.Substeps), nil
	default:
		return nil, errors.Errorf("unknown physics backend: %s", cfg.Backend)
	}
}
