package assets

import (
	"strconv"
	"sync/atomic"

	"github.com/xiaonanln/goworld2d/engine/async"
	"github.com/xiaonanln/goworld2d/engine/consts"
)

// LoadCallback receives the result of LoadAsync on the update routine
type LoadCallback func(buf *Buffer, err error)

// SetAsyncWorkers sets how many async job groups LoadAsync spreads loads over
func (c *Cache) SetAsyncWorkers(n int) {
	if n < 1 {
		n = 1
	}
	atomic.StoreUint32(&c.asyncWorkers, uint32(n))
}

// LoadAsync runs GetOrLoad on an async worker; callback is called on the update routine at its
// next post.Tick.
func (c *Cache) LoadAsync(path string, callback LoadCallback) {
	idx := atomic.AddUint32(&c.asyncNext, 1) % atomic.LoadUint32(&c.asyncWorkers)
	group := consts.ASSET_ASYNC_JOB_GROUP + "." + strconv.Itoa(int(idx))
	async.AppendAsyncJob(group, func() (interface{}, error) {
		return c.GetOrLoad(path)
	}, func(res interface{}, err error) {
		if callback == nil {
			return
		}
		buf, _ := res.(*Buffer)
		if err != nil {
			buf = nil
		}
		callback(buf, err)
	})
}
