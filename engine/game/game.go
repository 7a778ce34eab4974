// Package game is the frame driver. Each frame runs, in order: the delegate update, the physics
// step, rendering and audio dispatch. Timers and posted callbacks run on the same routine
// between frames. Timers and posted callbacks are process wide, so only one Game runs at a time.
package game

import (
	"time"

	"github.com/pkg/errors"
	"github.com/xiaonanln/go-xnsyncutil/xnsyncutil"
	timer "github.com/xiaonanln/goTimer"
	"github.com/xiaonanln/goworld2d/engine/async"
	"github.com/xiaonanln/goworld2d/engine/audio"
	"github.com/xiaonanln/goworld2d/engine/config"
	"github.com/xiaonanln/goworld2d/engine/consts"
	"github.com/xiaonanln/goworld2d/engine/gwlog"
	"github.com/xiaonanln/goworld2d/engine/gwutils"
	"github.com/xiaonanln/goworld2d/engine/gwvar"
	"github.com/xiaonanln/goworld2d/engine/opmon"
	"github.com/xiaonanln/goworld2d/engine/physics"
	"github.com/xiaonanln/goworld2d/engine/post"
	"github.com/xiaonanln/goworld2d/engine/render"
	"github.com/xiaonanln/goworld2d/engine/world"
)

// Delegate is the gameplay code driven by a Game
type Delegate interface {
	// OnInit is called on the game routine before the first frame
	OnInit(g *Game) error
	// OnUpdate is called at the beginning of every frame; input and gameplay happen here
	OnUpdate(g *Game, dt time.Duration)
	// OnCollisions is called after the physics step with the collisions of the frame
	OnCollisions(g *Game, collisions []physics.Collision)
	// OnTerminate is called once on the game routine after the last frame
	OnTerminate(g *Game)
}

// Option configures a Game
type Option func(g *Game)

// WithRenderer sets the renderer. Without one the render step is skipped.
func WithRenderer(r render.Renderer) Option {
	return func(g *Game) {
		g.renderer = r
	}
}

// WithAudio sets the audio engine. Without one audio dispatch is skipped.
func WithAudio(engine audio.Engine) Option {
	return func(g *Game) {
		g.audio = engine
	}
}

// Game drives one world
type Game struct {
	cfg      *config.EngineConfig
	world    *world.World
	delegate Delegate
	renderer render.Renderer
	audio    audio.Engine

	frame       uint64
	lastFrame   time.Time
	frameTimer  *timer.Timer
	terminating xnsyncutil.AtomicBool
	terminated  *xnsyncutil.OneTimeCond
}

// New creates a Game running w
func New(cfg *config.EngineConfig, w *world.World, delegate Delegate, opts ...Option) *Game {
	g := &Game{
		cfg:        cfg,
		world:      w,
		delegate:   delegate,
		terminated: xnsyncutil.NewOneTimeCond(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// World returns the world of the game
func (g *Game) World() *world.World {
	return g.world
}

// Config returns the engine config
func (g *Game) Config() *config.EngineConfig {
	return g.cfg
}

// Frame returns the number of frames run so far
func (g *Game) Frame() uint64 {
	return g.frame
}

// AddTimer calls cb every d on the game routine
func (g *Game) AddTimer(d time.Duration, cb func()) *timer.Timer {
	return timer.AddTimer(d, cb)
}

// AddCallback calls cb once after d on the game routine
func (g *Game) AddCallback(d time.Duration, cb func()) *timer.Timer {
	return timer.AddCallback(d, cb)
}

// Terminate asks the game to stop after the current frame. Safe to call from any goroutine.
func (g *Game) Terminate() {
	g.terminating.Store(true)
}

// WaitTerminated blocks until Run returns
func (g *Game) WaitTerminated() {
	g.terminated.Wait()
}

// Run runs the game on the calling goroutine until Terminate is called
func (g *Game) Run() error {
	defer g.terminated.Signal()

	var err error
	if perr := gwutils.CatchPanic(func() {
		err = g.delegate.OnInit(g)
	}); perr != nil {
		err = perr
	}
	if err != nil {
		return errors.Wrap(err, "init")
	}

	interval := g.cfg.Game.FrameInterval()
	gwlog.Infof("game: running %s at %d fps", g.world, g.cfg.Game.FPS)
	g.lastFrame = time.Now()
	gwvar.IsGameRunning.Set(true)
	g.frameTimer = timer.AddTimer(interval, func() {
		gwutils.RunPanicless(g.runFrame)
	})

	ticker := time.NewTicker(consts.GAME_TICK_INTERVAL)
	defer ticker.Stop()
	for !g.terminating.Load() {
		<-ticker.C
		timer.Tick()
		// after firing timers, check the posted functions
		post.Tick()
	}

	g.doTerminate()
	return nil
}

func (g *Game) doTerminate() {
	g.frameTimer.Cancel()
	gwvar.IsGameRunning.Set(false)
	post.Tick() // just tick is Ok, tick will consume all posts
	gwutils.RunPanicless(func() {
		g.delegate.OnTerminate(g)
	})
	async.Shutdown()
	post.Tick()
	gwlog.Infof("game: terminated after %d frames", g.frame)
}

func (g *Game) runFrame() {
	if g.terminating.Load() {
		return
	}
	op := opmon.StartOperation("game.frame")
	defer op.Finish(g.cfg.Profile.OpmonWarnThreshold)

	now := time.Now()
	dt := now.Sub(g.lastFrame)
	g.lastFrame = now
	g.frame += 1
	gwvar.FrameCount.Set(int64(g.frame))
	gwvar.EntityCount.Set(int64(g.world.Len()))

	g.delegate.OnUpdate(g, dt)

	if g.world.Physics() != nil {
		collisions, err := g.world.StepPhysics(dt.Seconds())
		if err != nil {
			gwlog.Errorf("game: frame %d physics: %v", g.frame, err)
		} else if len(collisions) > 0 {
			g.delegate.OnCollisions(g, collisions)
		}
	}

	if g.renderer != nil {
		if err := render.Frame(g.world, g.renderer); err != nil {
			gwlog.Errorf("game: frame %d render: %v", g.frame, err)
		}
	}

	if g.audio != nil {
		if _, err := audio.Dispatch(g.world, g.audio); err != nil {
			gwlog.Errorf("game: frame %d audio: %v", g.frame, err)
		}
	}
}
