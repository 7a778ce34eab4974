// Package audio hands pending sounds of a world to an audio Engine
package audio

import (
	"github.com/pkg/errors"
	"github.com/xiaonanln/goworld2d/engine/assets"
	"github.com/xiaonanln/goworld2d/engine/entity"
	"github.com/xiaonanln/goworld2d/engine/gwlog"
	"github.com/xiaonanln/goworld2d/engine/store"
	"github.com/xiaonanln/goworld2d/engine/world"
)

// SourceComponent is the registered name of Source
const SourceComponent = "AudioSource"

// Source plays a clip when Pending is set. Dispatch clears Pending once the engine accepted it.
type Source struct {
	Clip    string
	Volume  float64
	Pending bool
}

func init() {
	store.RegisterComponent(SourceComponent, &Source{})
}

// Engine is the audio mixer
type Engine interface {
	Play(path string, buf *assets.Buffer, volume float64) error
}

// Dispatch plays every pending source of w. A source that fails stays pending so it is retried
// next frame. Returns the number of sounds played and the first error.
func Dispatch(w *world.World, engine Engine) (int, error) {
	played := 0
	var firstErr error
	w.EachWith(SourceComponent, func(e *entity.Entity, c store.Component) bool {
		src := c.(*Source)
		if !src.Pending {
			return true
		}
		buf, err := w.Asset(src.Clip)
		if err == nil {
			err = engine.Play(buf.Path(), buf, src.Volume)
		}
		if err != nil {
			gwlog.Warnf("audio: %s clip %s: %v", e, src.Clip, err)
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "play %s", src.Clip)
			}
			return true
		}
		src.Pending = false
		played += 1
		return true
	})
	return played, firstErr
}
