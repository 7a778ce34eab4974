package config

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/go-ini/ini"
	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/common"
	"github.com/xiaonanln/goworld2d/engine/consts"
	"github.com/xiaonanln/goworld2d/engine/gwlog"
)

const (
	// DEFAULT_CONFIG_FILE is the config file used when none is given
	DEFAULT_CONFIG_FILE = "gwengine.ini"

	_DEFAULT_HTTP_IP         = "127.0.0.1"
	_DEFAULT_LOG_LEVEL       = "info"
	_DEFAULT_ASSET_DIRECTORY = "assets"
	_DEFAULT_ASSET_DB        = "goworld2d"
	_DEFAULT_ASSET_PREFIX    = "_ASSET_"
)

// GameSettings defines fields of the [game] section
type GameSettings struct {
	FPS        int
	LogFile    string
	LogStderr  bool
	LogLevel   string
	HTTPIp     string
	HTTPPort   int
	GoMaxProcs int
	Prefab     string // prefab asset spawned at boot, optional
}

// FrameInterval returns the duration of one frame
func (gs *GameSettings) FrameInterval() time.Duration {
	return time.Second / time.Duration(gs.FPS)
}

// ProfileSettings defines fields of the [profile] section
type ProfileSettings struct {
	OpmonDumpInterval  time.Duration
	OpmonWarnThreshold time.Duration
	DebugMerge         bool
	DebugAssets        bool
}

// AssetsConfig defines fields of the [assets] section
type AssetsConfig struct {
	Type         string // Type of asset loader (filesystem, redis, redis_cluster, mongodb)
	Directory    string // Root directory (filesystem)
	Url          string // Connection URL (redis, mongodb)
	DB           string // Database name (redis db index, mongodb database)
	Prefix       string // Key prefix (redis, redis_cluster) or GridFS prefix (mongodb)
	StartNodes   common.StringSet
	AsyncWorkers int
}

// PhysicsConfig defines fields of the [physics] section
type PhysicsConfig struct {
	Backend  string
	GravityX float64
	GravityY float64
	Substeps int
}

// EngineConfig defines the total engine config file structure
type EngineConfig struct {
	Game    GameSettings
	Profile ProfileSettings
	Assets  AssetsConfig
	Physics PhysicsConfig
}

// Default returns the config used when no config file is present
func Default() *EngineConfig {
	cfg := &EngineConfig{}
	defaultGameSettings(&cfg.Game)
	defaultProfileSettings(&cfg.Profile)
	defaultAssetsConfig(&cfg.Assets)
	defaultPhysicsConfig(&cfg.Physics)
	return cfg
}

// Load reads the config file at path on top of the defaults
func Load(path string) (*EngineConfig, error) {
	gwlog.Infof("Using config file: %s", path)
	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}
	return parse(iniFile)
}

// LoadBytes reads config from ini source text
func LoadBytes(data []byte) (*EngineConfig, error) {
	iniFile, err := ini.Load(data)
	if err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return parse(iniFile)
}

func parse(iniFile *ini.File) (*EngineConfig, error) {
	cfg := Default()
	for _, sec := range iniFile.Sections() {
		secName := strings.ToLower(sec.Name())
		var err error
		switch secName {
		case ini.DefaultSection, "default":
			if len(sec.Keys()) > 0 {
				err = errors.Errorf("keys outside of any section: %v", sec.KeyStrings())
			}
		case "game":
			err = readGameSettings(sec, &cfg.Game)
		case "profile":
			err = readProfileSettings(sec, &cfg.Profile)
		case "assets":
			err = readAssetsConfig(sec, &cfg.Assets)
		case "physics":
			err = readPhysicsConfig(sec, &cfg.Physics)
		default:
			err = errors.Errorf("unknown section: %s", sec.Name())
		}
		if err != nil {
			return nil, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DumpPretty format config to string in pretty format
func DumpPretty(cfg interface{}) string {
	s, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return err.Error()
	}
	return string(s)
}

func defaultGameSettings(gs *GameSettings) {
	gs.FPS = consts.DEFAULT_FPS
	gs.LogFile = "gwengine.log"
	gs.LogStderr = true
	gs.LogLevel = _DEFAULT_LOG_LEVEL
	gs.HTTPIp = _DEFAULT_HTTP_IP
	gs.HTTPPort = 0 // pprof not enabled by default
	gs.GoMaxProcs = 0
}

func readGameSettings(sec *ini.Section, gs *GameSettings) error {
	for _, key := range sec.Keys() {
		name := strings.ToLower(key.Name())
		if name == "fps" {
			gs.FPS = key.MustInt(gs.FPS)
		} else if name == "log_file" {
			gs.LogFile = key.MustString(gs.LogFile)
		} else if name == "log_stderr" {
			gs.LogStderr = key.MustBool(gs.LogStderr)
		} else if name == "log_level" {
			gs.LogLevel = key.MustString(gs.LogLevel)
		} else if name == "http_ip" {
			gs.HTTPIp = key.MustString(gs.HTTPIp)
		} else if name == "http_port" {
			gs.HTTPPort = key.MustInt(gs.HTTPPort)
		} else if name == "gomaxprocs" {
			gs.GoMaxProcs = key.MustInt(gs.GoMaxProcs)
		} else if name == "prefab" {
			gs.Prefab = key.MustString(gs.Prefab)
		} else {
			return unknownKey(sec, key)
		}
	}
	return nil
}

func defaultProfileSettings(ps *ProfileSettings) {
	ps.OpmonDumpInterval = 0
	ps.OpmonWarnThreshold = consts.OPMON_DEFAULT_WARN_THRESHOLD
}

func readProfileSettings(sec *ini.Section, ps *ProfileSettings) error {
	for _, key := range sec.Keys() {
		name := strings.ToLower(key.Name())
		if name == "opmon_dump_interval" {
			ps.OpmonDumpInterval = time.Second * time.Duration(key.MustInt(int(ps.OpmonDumpInterval/time.Second)))
		} else if name == "opmon_warn_threshold_ms" {
			ps.OpmonWarnThreshold = time.Millisecond * time.Duration(key.MustInt(int(ps.OpmonWarnThreshold/time.Millisecond)))
		} else if name == "debug_merge" {
			ps.DebugMerge = key.MustBool(ps.DebugMerge)
		} else if name == "debug_assets" {
			ps.DebugAssets = key.MustBool(ps.DebugAssets)
		} else {
			return unknownKey(sec, key)
		}
	}
	return nil
}

func defaultAssetsConfig(ac *AssetsConfig) {
	ac.Type = "filesystem"
	ac.Directory = _DEFAULT_ASSET_DIRECTORY
	ac.DB = ""
	ac.Url = ""
	ac.Prefix = ""
	ac.StartNodes = common.StringSet{}
	ac.AsyncWorkers = 1
}

func readAssetsConfig(sec *ini.Section, ac *AssetsConfig) error {
	for _, key := range sec.Keys() {
		name := strings.ToLower(key.Name())
		if name == "type" {
			ac.Type = key.MustString(ac.Type)
		} else if name == "directory" {
			ac.Directory = key.MustString(ac.Directory)
		} else if name == "url" {
			ac.Url = key.MustString(ac.Url)
		} else if name == "db" {
			ac.DB = key.MustString(ac.DB)
		} else if name == "prefix" {
			ac.Prefix = key.MustString(ac.Prefix)
		} else if name == "async_workers" {
			ac.AsyncWorkers = key.MustInt(ac.AsyncWorkers)
		} else if strings.HasPrefix(name, "start_nodes_") {
			ac.StartNodes.Add(key.MustString(""))
		} else {
			return unknownKey(sec, key)
		}
	}

	switch ac.Type {
	case "redis":
		if ac.DB == "" {
			ac.DB = "0"
		}
		if ac.Prefix == "" {
			ac.Prefix = _DEFAULT_ASSET_PREFIX
		}
	case "redis_cluster":
		if ac.Prefix == "" {
			ac.Prefix = _DEFAULT_ASSET_PREFIX
		}
	case "mongodb":
		if ac.DB == "" {
			ac.DB = _DEFAULT_ASSET_DB
		}
		if ac.Prefix == "" {
			ac.Prefix = "fs"
		}
	}
	return nil
}

func defaultPhysicsConfig(pc *PhysicsConfig) {
	pc.Backend = "kinematic"
	pc.GravityX = 0
	pc.GravityY = 0
	pc.Substeps = 1
}

func readPhysicsConfig(sec *ini.Section, pc *PhysicsConfig) error {
	for _, key := range sec.Keys() {
		name := strings.ToLower(key.Name())
		if name == "backend" {
			pc.Backend = key.MustString(pc.Backend)
		} else if name == "gravity_x" {
			pc.GravityX = key.MustFloat64(pc.GravityX)
		} else if name == "gravity_y" {
			pc.GravityY = key.MustFloat64(pc.GravityY)
		} else if name == "substeps" {
			pc.Substeps = key.MustInt(pc.Substeps)
		} else {
			return unknownKey(sec, key)
		}
	}
	return nil
}

func unknownKey(sec *ini.Section, key *ini.Key) error {
	return errors.Errorf("section %s has unknown key: %s", sec.Name(), key.Name())
}
