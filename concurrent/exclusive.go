package concurrent

import (
	"errors"
	"sync"

	"github.com/gogpu/pathstream/command"
	"github.com/gogpu/pathstream/scene"
)

// ErrOverlappingSend is returned by an Exclusive listener when Send is
// called while another Send on it has not returned.
var ErrOverlappingSend = errors.New("concurrent: overlapping Send")

type exclusive struct {
	mu    sync.Mutex
	inner scene.Listener
}

// Exclusive wraps l so that it only ever handles one command at a time.
// A Send that overlaps a running one, either reentrant from inside
// l.Send or from another goroutine, fails with ErrOverlappingSend and
// never reaches l.
func Exclusive(l scene.Listener) scene.Listener {
	return &exclusive{inner: l}
}

func (x *exclusive) Send(cmd command.RenderCommand) error {
	if !x.mu.TryLock() {
		return ErrOverlappingSend
	}
	defer x.mu.Unlock()
	return x.inner.Send(cmd)
}
