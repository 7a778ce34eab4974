package async

import (
	"sync"

	"github.com/xiaonanln/goworld2d/engine/consts"
	"github.com/xiaonanln/goworld2d/engine/gwutils"
	"github.com/xiaonanln/goworld2d/engine/post"
)

var (
	numAsyncJobWorkersRunning sync.WaitGroup
)

// AsyncCallback is called on the update routine with the result of an AsyncRoutine
type AsyncCallback func(res interface{}, err error)

// Callback posts the callback to the update routine
func (ac AsyncCallback) Callback(res interface{}, err error) {
	if ac != nil {
		post.Post(func() {
			ac(res, err)
		})
	}
}

// AsyncRoutine runs on a job worker goroutine
type AsyncRoutine func() (res interface{}, err error)

// AsyncJobWorker runs jobs of one group sequentially
type AsyncJobWorker struct {
	jobQueue chan asyncJobItem
}

type asyncJobItem struct {
	routine  AsyncRoutine
	callback AsyncCallback
}

func newAsyncJobWorker() *AsyncJobWorker {
	ajw := &AsyncJobWorker{
		jobQueue: make(chan asyncJobItem, consts.ASYNC_JOB_QUEUE_MAXLEN),
	}
	numAsyncJobWorkersRunning.Add(1)
	go func() {
		gwutils.RepeatUntilPanicless(ajw.loop)
		numAsyncJobWorkersRunning.Done()
	}()
	return ajw
}

func (ajw *AsyncJobWorker) appendJob(routine AsyncRoutine, callback AsyncCallback) {
	ajw.jobQueue <- asyncJobItem{routine, callback}
}

func (ajw *AsyncJobWorker) loop() {
	for item := range ajw.jobQueue {
		res, err := item.routine()
		item.callback.Callback(res, err)
	}
}

var (
	asyncJobWorkersLock sync.RWMutex
	asyncJobWorkers     = map[string]*AsyncJobWorker{}
)

func getAsyncJobWorker(group string) (ajw *AsyncJobWorker) {
	asyncJobWorkersLock.RLock()
	ajw = asyncJobWorkers[group]
	asyncJobWorkersLock.RUnlock()

	if ajw == nil {
		asyncJobWorkersLock.Lock()
		ajw = asyncJobWorkers[group]
		if ajw == nil {
			ajw = newAsyncJobWorker()
			asyncJobWorkers[group] = ajw
		}
		asyncJobWorkersLock.Unlock()
	}
	return
}

// AppendAsyncJob runs routine on the worker of group; callback runs on the update routine via post.Tick
func AppendAsyncJob(group string, routine AsyncRoutine, callback AsyncCallback) {
	ajw := getAsyncJobWorker(group)
	ajw.appendJob(routine, callback)
}

// Shutdown closes all job queues and waits for queued jobs to finish
func Shutdown() {
	asyncJobWorkersLock.Lock()
	for _, alw := range asyncJobWorkers {
		close(alw.jobQueue)
	}
	asyncJobWorkers = map[string]*AsyncJobWorker{}
	asyncJobWorkersLock.Unlock()

	numAsyncJobWorkersRunning.Wait()
}
