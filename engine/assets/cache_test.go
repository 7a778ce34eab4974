package assets

import (
	"io/ioutil"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bmizerany/assert"
	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/post"
)

type countingLoader struct {
	sync.Mutex
	files  map[string][]byte
	counts map[string]int
	delay  time.Duration
	fail   error
}

func newCountingLoader(files map[string]string) *countingLoader {
	l := &countingLoader{files: map[string][]byte{}, counts: map[string]int{}}
	for k, v := range files {
		l.files[k] = []byte(v)
	}
	return l
}

func (l *countingLoader) LoadFile(path string) ([]byte, error) {
	time.Sleep(l.delay)
	l.Lock()
	defer l.Unlock()
	l.counts[path] += 1
	if l.fail != nil {
		return nil, l.fail
	}
	data, ok := l.files[path]
	if !ok {
		return nil, errors.Errorf("%s not found", path)
	}
	return data, nil
}

func (l *countingLoader) count(path string) int {
	l.Lock()
	defer l.Unlock()
	return l.counts[path]
}

func TestCanonicalPath(t *testing.T) {
	for in, out := range map[string]string{
		"a/b.png":        "a/b.png",
		"./a//b.png":     "a/b.png",
		"/a/b.png":       "a/b.png",
		"a\\b.png":       "a/b.png",
		"a/x/../b.png":   "a/b.png",
		"sprites/hero/.": "sprites/hero",
	} {
		got, err := CanonicalPath(in)
		assert.Equal(t, nil, err)
		assert.Equal(t, out, got)
	}
	for _, bad := range []string{"", " ", ".", "/", "../a", "a/../../b"} {
		_, err := CanonicalPath(bad)
		assert.Tf(t, errors.Cause(err) == ErrInvalidPath, "%q should be invalid", bad)
	}
}

func TestGetOrLoadOnce(t *testing.T) {
	loader := newCountingLoader(map[string]string{"tex/hero.png": "HERO"})
	cache := NewCache(loader)

	b1, err := cache.GetOrLoad("tex/hero.png")
	assert.Equal(t, nil, err)
	b2, err := cache.GetOrLoad("./tex/hero.png")
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, loader.count("tex/hero.png"))
	assert.T(t, b1 == b2, "same buffer")
	assert.T(t, b1.Equal(b2), "byte equal")
	assert.Equal(t, "HERO", string(b1.Bytes()))
	assert.Equal(t, "tex/hero.png", b1.Path())

	stats := cache.Stats()
	assert.Equal(t, Stats{Hits: 1, Misses: 1, Loads: 1}, stats)
	assert.T(t, cache.Contains("/tex/hero.png"), "contains")
	assert.Equal(t, []string{"tex/hero.png"}, cache.Paths())
}

func TestBufferImmutable(t *testing.T) {
	src := []byte("abc")
	cache := NewCache(LoaderFunc(func(path string) ([]byte, error) {
		return src, nil
	}))
	buf, _ := cache.GetOrLoad("x")
	src[0] = 'z'
	b := buf.Bytes()
	b[1] = 'z'
	assert.Equal(t, "abc", string(buf.Bytes()))
	data, _ := ioutil.ReadAll(buf.Reader())
	assert.Equal(t, "abc", string(data))
	assert.Equal(t, 3, buf.Len())
}

func TestConcurrentGetOrLoad(t *testing.T) {
	loader := newCountingLoader(map[string]string{"snd/boom.ogg": "BOOM"})
	loader.delay = 20 * time.Millisecond
	cache := NewCache(loader)

	const N = 64
	var wg sync.WaitGroup
	start := make(chan struct{})
	bufs := make([]*Buffer, N)
	errs := make([]error, N)
	for i := 0; i < N; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			bufs[i], errs[i] = cache.GetOrLoad("snd/boom.ogg")
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, loader.count("snd/boom.ogg"))
	for i := 0; i < N; i++ {
		assert.Equal(t, nil, errs[i])
		assert.T(t, bufs[i].Equal(bufs[0]), "equal buffers")
	}
}

func TestLoadErrorNotCached(t *testing.T) {
	loader := newCountingLoader(map[string]string{"a.txt": "A"})
	boom := errors.New("disk on fire")
	loader.fail = boom
	cache := NewCache(loader)

	_, err := cache.GetOrLoad("a.txt")
	le, ok := err.(*LoadError)
	assert.T(t, ok, "LoadError")
	assert.Equal(t, "a.txt", le.Path)
	assert.T(t, errors.Cause(err) == boom, "cause")
	assert.Equal(t, 0, cache.Len())

	loader.Lock()
	loader.fail = nil
	loader.Unlock()
	buf, err := cache.GetOrLoad("a.txt")
	assert.Equal(t, nil, err)
	assert.Equal(t, "A", string(buf.Bytes()))
	assert.Equal(t, 2, loader.count("a.txt"))
	assert.Equal(t, uint64(1), cache.Stats().Failures)

	_, err = cache.GetOrLoad("../etc/passwd")
	_, ok = err.(*LoadError)
	assert.T(t, ok, "invalid path is a LoadError")
	assert.Equal(t, 2, loader.count("a.txt"))
}

func TestClear(t *testing.T) {
	loader := newCountingLoader(map[string]string{"a": "1", "b": "2"})
	cache := NewCache(loader)
	a, _ := cache.GetOrLoad("a")
	cache.GetOrLoad("b")
	assert.Equal(t, 2, cache.Len())

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
	assert.Equal(t, "1", string(a.Bytes()))

	a2, _ := cache.GetOrLoad("a")
	assert.Equal(t, 2, loader.count("a"))
	assert.T(t, a2 != a && a2.Equal(a), "reloaded buffer")
}

func TestLoadAcrossClearNotStored(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	cache := NewCache(LoaderFunc(func(path string) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []byte("v"), nil
	}))

	done := make(chan *Buffer)
	go func() {
		buf, _ := cache.GetOrLoad("slow")
		done <- buf
	}()
	for atomic.LoadInt32(&calls) == 0 {
		time.Sleep(time.Millisecond)
	}
	cache.Clear()
	close(release)
	buf := <-done
	assert.Equal(t, "v", string(buf.Bytes()))
	assert.T(t, !cache.Contains("slow"), "load across clear is not stored")
}

func TestLoadAsync(t *testing.T) {
	loader := newCountingLoader(map[string]string{"music/theme.ogg": "THEME"})
	cache := NewCache(loader)
	cache.SetAsyncWorkers(2)

	results := make(chan string, 2)
	cache.LoadAsync("music/theme.ogg", func(buf *Buffer, err error) {
		assert.Equal(t, nil, err)
		results <- string(buf.Bytes())
	})
	cache.LoadAsync("music/missing.ogg", func(buf *Buffer, err error) {
		assert.T(t, buf == nil && err != nil, "missing asset")
		results <- "missing"
	})

	got := map[string]bool{}
	deadline := time.Now().Add(5 * time.Second)
	for len(got) < 2 && time.Now().Before(deadline) {
		post.Tick()
		select {
		case r := <-results:
			got[r] = true
		default:
			time.Sleep(time.Millisecond)
		}
	}
	assert.T(t, got["THEME"] && got["missing"], "both callbacks delivered through post")
}

func TestPreloader(t *testing.T) {
	loader := newCountingLoader(map[string]string{"a": "1", "b": "2", "c": "3"})
	cache := NewCache(loader)
	p := NewPreloader(cache)
	p.Add("a", "b", "c", "nope", "a")
	loaded, failed := p.Wait()
	assert.Equal(t, 4, loaded)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 3, cache.Len())
	assert.Equal(t, 1, loader.count("a"))

	p.Add("late")
	assert.Equal(t, 0, loader.count("late"))
}

func TestPreloaderConcurrentAdd(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 10; i++ {
		files[string(rune('a'+i))] = "x"
	}
	loader := newCountingLoader(files)
	loader.delay = time.Millisecond
	cache := NewCache(loader)
	p := NewPreloader(cache)

	var wait sync.WaitGroup
	for g := 0; g < 8; g++ {
		wait.Add(1)
		go func() {
			defer wait.Done()
			for i := 0; i < 50; i++ {
				p.Add(string(rune('a' + i%10)))
			}
		}()
	}
	wait.Wait()
	loaded, failed := p.Wait()
	assert.Equal(t, 400, loaded)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 10, cache.Len())
}

func TestSettingsDuringLoads(t *testing.T) {
	loader := newCountingLoader(map[string]string{"a": "1", "b": "2"})
	loader.delay = time.Millisecond
	cache := NewCache(loader)

	var wait sync.WaitGroup
	for i := 0; i < 16; i++ {
		wait.Add(1)
		go func(i int) {
			defer wait.Done()
			cache.SetDebug(i%2 == 0)
			cache.SetWarnThreshold(time.Duration(i) * time.Millisecond)
			if i%4 == 0 {
				cache.Clear()
			}
			_, err := cache.GetOrLoad([]string{"a", "b"}[i%2])
			assert.Equal(t, nil, err)
		}(i)
	}
	wait.Wait()
	cache.SetDebug(false)
	assert.T(t, cache.Len() <= 2, "at most two entries")
}
