// gwengine runs a world headless: no renderer and no audio engine. It loads the configured
// prefab, steps physics at the configured rate and logs collisions until interrupted.
package main

import (
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/xiaonanln/goworld2d/engine/assets"
	assetsbackend "github.com/xiaonanln/goworld2d/engine/assets/backend"
	"github.com/xiaonanln/goworld2d/engine/binutil"
	"github.com/xiaonanln/goworld2d/engine/config"
	"github.com/xiaonanln/goworld2d/engine/game"
	"github.com/xiaonanln/goworld2d/engine/gwlog"
	"github.com/xiaonanln/goworld2d/engine/opmon"
	"github.com/xiaonanln/goworld2d/engine/physics"
	physicsbackend "github.com/xiaonanln/goworld2d/engine/physics/backend"
	"github.com/xiaonanln/goworld2d/engine/prefab"
	"github.com/xiaonanln/goworld2d/engine/world"
)

var (
	configFile string
	maxFrames  uint64
	compactSec int
	sigChan    = make(chan os.Signal, 1)
)

func parseArgs() {
	flag.StringVar(&configFile, "configfile", "", "set config file path")
	flag.Uint64Var(&maxFrames, "frames", 0, "stop after this many frames, 0 runs until interrupted")
	flag.IntVar(&compactSec, "compact", 60, "compact the world every N seconds, 0 disables")
	flag.Parse()
}

func loadConfig() *config.EngineConfig {
	if configFile == "" {
		if _, err := os.Stat(config.DEFAULT_CONFIG_FILE); err != nil {
			return config.Default()
		}
		configFile = config.DEFAULT_CONFIG_FILE
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		gwlog.Fatalf("gwengine: %v", err)
	}
	return cfg
}

func main() {
	parseArgs()
	cfg := loadConfig()

	binutil.SetupGWLog("gwengine", cfg.Game.LogLevel, cfg.Game.LogFile, cfg.Game.LogStderr)
	if cfg.Game.GoMaxProcs > 0 {
		gwlog.Infof("SET GOMAXPROCS = %d", cfg.Game.GoMaxProcs)
		runtime.GOMAXPROCS(cfg.Game.GoMaxProcs)
	}
	if _, err := binutil.SetupHTTPServer(cfg.Game.HTTPIp, cfg.Game.HTTPPort); err != nil {
		gwlog.Fatalf("gwengine: %v", err)
	}
	opmon.StartDumping(cfg.Profile.OpmonDumpInterval)

	loader, err := assetsbackend.Open(&cfg.Assets)
	if err != nil {
		gwlog.Fatalf("gwengine: open assets: %v", err)
	}
	defer loader.Close()

	cache := assets.NewCache(loader)
	cache.SetWarnThreshold(cfg.Profile.OpmonWarnThreshold)
	cache.SetDebug(cfg.Profile.DebugAssets)
	cache.SetAsyncWorkers(cfg.Assets.AsyncWorkers)

	physicsBackend, err := physicsbackend.Open(&cfg.Physics)
	if err != nil {
		gwlog.Fatalf("gwengine: open physics: %v", err)
	}

	w := world.New(
		world.WithName("main"),
		world.WithPhysics(physics.NewLayer(physicsBackend)),
		world.WithAssets(cache),
		world.WithDebug(cfg.Profile.DebugMerge),
	)

	g := game.New(cfg, w, &headless{})
	setupSignals(g)
	if err := g.Run(); err != nil {
		gwlog.Fatalf("gwengine: %v", err)
	}
	gwlog.Sync()
}

func setupSignals(g *game.Game) {
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for {
			sig := <-sigChan
			if sig == syscall.SIGINT || sig == syscall.SIGTERM {
				gwlog.Infof("gwengine: %s received, terminating ...", sig)
				g.Terminate()
				return
			}
			gwlog.Infof("unexpected signal: %s", sig)
		}
	}()
}

// headless is the Delegate of the driver binary
type headless struct {
	collisions int
}

func (h *headless) OnInit(g *game.Game) error {
	if p := g.Config().Game.Prefab; p != "" {
		entities, err := prefab.Load(g.World(), p)
		if err != nil {
			return err
		}
		gwlog.Infof("gwengine: prefab %s spawned %d entities", p, len(entities))
	}
	if compactSec > 0 {
		g.AddTimer(time.Duration(compactSec)*time.Second, func() {
			n, err := g.World().Compact()
			if err != nil {
				gwlog.Errorf("gwengine: compact: %v", err)
				return
			}
			gwlog.Debugf("gwengine: compacted %d entities", n)
		})
	}
	return nil
}

func (h *headless) OnUpdate(g *game.Game, dt time.Duration) {
	if maxFrames > 0 && g.Frame() >= maxFrames {
		g.Terminate()
	}
}

func (h *headless) OnCollisions(g *game.Game, collisions []physics.Collision) {
	h.collisions += len(collisions)
	for _, c := range collisions {
		gwlog.Debugf("gwengine: frame %d collision %s <-> %s", g.Frame(), c.A, c.B)
	}
}

func (h *headless) OnTerminate(g *game.Game) {
	stats := g.World().Assets().Stats()
	gwlog.Infof("gwengine: %d frames, %d collisions, %d entities, assets %+v",
		g.Frame(), h.collisions, g.World().Len(), stats)
}
