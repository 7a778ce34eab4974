package post

import (
	"sync"

	"github.com/xiaonanln/goworld2d/engine/gwutils"
)

// PostCallback is the type of functions to be posted
type PostCallback func()

var (
	callbacks []PostCallback
	lock      sync.Mutex
)

// Post a callback which will be executed by the update routine at its next Tick.
//
// Post might be called from other goroutines (asset loaders, async workers), so a lock protects the queue.
func Post(f PostCallback) {
	lock.Lock()
	callbacks = append(callbacks, f)
	lock.Unlock()
}

// Pending returns the number of callbacks waiting for Tick
func Pending() int {
	lock.Lock()
	n := len(callbacks)
	lock.Unlock()
	return n
}

// Tick is called by the update routine to run all posted functions, including the ones posted by
// callbacks during this Tick. Returns the number of callbacks run.
func Tick() (n int) {
	for { // loop until there is no callbacks posted anymore
		lock.Lock()
		if len(callbacks) == 0 {
			lock.Unlock()
			break
		}
		// switch callbacks in locked section
		callbacksCopy := callbacks
		callbacks = make([]PostCallback, 0, len(callbacks))
		lock.Unlock()

		for _, f := range callbacksCopy {
			gwutils.RunPanicless(f)
		}
		n += len(callbacksCopy)
	}
	return
}
