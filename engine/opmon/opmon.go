package opmon

import (
	"sort"
	"sync"
	"time"

	"github.com/xiaonanln/goworld2d/engine/gwlog"
)

var (
	operationAllocPool = sync.Pool{
		New: func() interface{} {
			return &Operation{}
		},
	}

	monitor = newMonitor()

	dumpOnce sync.Once
)

// OpInfo is the recorded statistics of one operation name
type OpInfo struct {
	Count         uint64
	TotalDuration time.Duration
	MaxDuration   time.Duration
}

// AvgDuration returns the average duration of the operation
func (info OpInfo) AvgDuration() time.Duration {
	if info.Count == 0 {
		return 0
	}
	return info.TotalDuration / time.Duration(info.Count)
}

type _Monitor struct {
	sync.Mutex
	opInfos map[string]*OpInfo
}

func newMonitor() *_Monitor {
	m := &_Monitor{
		opInfos: map[string]*OpInfo{},
	}
	return m
}

func (monitor *_Monitor) record(opname string, duration time.Duration) {
	monitor.Lock()
	info := monitor.opInfos[opname]
	if info == nil {
		info = &OpInfo{}
		monitor.opInfos[opname] = info
	}
	info.Count += 1
	info.TotalDuration += duration
	if duration > info.MaxDuration {
		info.MaxDuration = duration
	}
	monitor.Unlock()
}

func (monitor *_Monitor) snapshot(reset bool) map[string]OpInfo {
	monitor.Lock()
	opInfos := monitor.opInfos
	if reset {
		monitor.opInfos = map[string]*OpInfo{}
	}
	res := make(map[string]OpInfo, len(opInfos))
	for name, info := range opInfos {
		res[name] = *info
	}
	monitor.Unlock()
	return res
}

// Snapshot returns a copy of the statistics recorded since the last Dump
func Snapshot() map[string]OpInfo {
	return monitor.snapshot(false)
}

// Dump logs the statistics recorded since the last Dump and resets them
func Dump() {
	opInfos := monitor.snapshot(true)
	names := make([]string, 0, len(opInfos))
	for name := range opInfos {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		info := opInfos[name]
		gwlog.Infof("opmon: %-30sx%-10d AVG %-10s MAX %-10s", name, info.Count, info.AvgDuration(), info.MaxDuration)
	}
}

// StartDumping dumps statistics periodically. Only the first call has effect.
func StartDumping(interval time.Duration) {
	if interval <= 0 {
		return
	}
	dumpOnce.Do(func() {
		go func() {
			for {
				time.Sleep(interval)
				Dump()
			}
		}()
	})
}

// Operation is the type of operation to be monitored
type Operation struct {
	name      string
	startTime time.Time
}

// StartOperation creates a new operation
func StartOperation(operationName string) *Operation {
	op := operationAllocPool.Get().(*Operation)
	op.name = operationName
	op.startTime = time.Now()
	return op
}

// Finish finishes the operation and records the duration of operation
func (op *Operation) Finish(warnThreshold time.Duration) {
	takeTime := time.Since(op.startTime)
	monitor.record(op.name, takeTime)
	if takeTime >= warnThreshold {
		gwlog.Warnf("opmon: operation %s takes %s > %s", op.name, takeTime, warnThreshold)
	}
	operationAllocPool.Put(op)
}
