package consts

import "time"

// Tunable Options
const (
	// DEFAULT_FPS is the frame rate used when the config does not set one
	DEFAULT_FPS = 60
	// GAME_TICK_INTERVAL is how often the driver ticks timers and posted callbacks
	GAME_TICK_INTERVAL = time.Millisecond * 2

	// PHYSICS_COLLISION_QUEUE_MAXLEN is the max number of undrained collisions a physics layer keeps
	PHYSICS_COLLISION_QUEUE_MAXLEN = 4096

	// ASYNC_JOB_QUEUE_MAXLEN is the max length of each async job group queue
	ASYNC_JOB_QUEUE_MAXLEN = 10000
	// ASSET_PRELOAD_QUEUE_WARN_LEN is the preload queue length that triggers a warning every time it is crossed
	ASSET_PRELOAD_QUEUE_WARN_LEN = 100
	// ASSET_ASYNC_JOB_GROUP is the async worker group used by asset loads
	ASSET_ASYNC_JOB_GROUP = "assets"

	// For Operation Monitor
	// OPMON_DEFAULT_WARN_THRESHOLD is the duration above which monitored operations are warned
	OPMON_DEFAULT_WARN_THRESHOLD = time.Millisecond * 100
	// PHYSICS_STEP_WARN_THRESHOLD is the warn threshold of physics steps
	PHYSICS_STEP_WARN_THRESHOLD = time.Millisecond * 8
)

// Debug Options
const (
	// DEBUG_ENTITIES prints entity spawn/despawn debug logs
	DEBUG_ENTITIES = false
	// DEBUG_BODIES prints physics attach/detach debug logs
	DEBUG_BODIES = false
)
