package assets

import (
	"sync"
	"sync/atomic"

	"github.com/xiaonanln/go-xnsyncutil/xnsyncutil"
	"github.com/xiaonanln/goworld2d/engine/consts"
	"github.com/xiaonanln/goworld2d/engine/gwlog"
	"github.com/xiaonanln/goworld2d/engine/gwutils"
)

// Preloader warms a Cache from a background routine. Failed preloads are logged and skipped;
// the next GetOrLoad of the path retries.
type Preloader struct {
	cache      *Cache
	queue      *xnsyncutil.SyncQueue
	terminated *xnsyncutil.OneTimeCond
	loaded     uint64
	failed     uint64
	closeOnce  sync.Once
	closed     xnsyncutil.AtomicBool

	recentWarnedQueueLen int64
}

type stopMarker struct{}

// NewPreloader starts the preload routine of cache
func NewPreloader(cache *Cache) *Preloader {
	p := &Preloader{
		cache:      cache,
		queue:      xnsyncutil.NewSyncQueue(),
		terminated: xnsyncutil.NewOneTimeCond(),
	}
	go p.routine()
	return p
}

// Add queues paths for preloading
func (p *Preloader) Add(paths ...string) {
	if p.closed.Load() {
		gwlog.Warnf("assets: preloader closed, ignoring %d paths", len(paths))
		return
	}
	for _, path := range paths {
		p.queue.Push(path)
	}
	p.checkQueueLen()
}

func (p *Preloader) checkQueueLen() {
	qlen := p.queue.Len()
	if qlen <= consts.ASSET_PRELOAD_QUEUE_WARN_LEN || qlen%consts.ASSET_PRELOAD_QUEUE_WARN_LEN != 0 {
		return
	}
	if old := atomic.SwapInt64(&p.recentWarnedQueueLen, int64(qlen)); old != int64(qlen) {
		gwlog.Warnf("assets: preload queue length = %d", qlen)
	}
}

func (p *Preloader) routine() {
	defer p.terminated.Signal()

	for {
		item := p.queue.Pop()
		if _, stop := item.(stopMarker); stop {
			break
		}
		path := item.(string)
		gwutils.RunPanicless(func() {
			if _, err := p.cache.GetOrLoad(path); err != nil {
				atomic.AddUint64(&p.failed, 1)
				gwlog.Errorf("assets: preload %s failed: %v", path, err)
			} else {
				atomic.AddUint64(&p.loaded, 1)
			}
		})
	}
}

// Close stops the routine once the paths queued so far are loaded. Paths added after Close are ignored.
func (p *Preloader) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.queue.Push(stopMarker{})
	})
}

// Wait closes the preloader and blocks until every queued path is processed. Returns the number
// of paths loaded and failed.
func (p *Preloader) Wait() (loaded, failed int) {
	p.Close()
	p.terminated.Wait()
	return int(atomic.LoadUint64(&p.loaded)), int(atomic.LoadUint64(&p.failed))
}
