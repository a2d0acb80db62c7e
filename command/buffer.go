package command

import (
	"slices"
	"sync"
)

// Buffer records every command it is sent. It is safe for concurrent use
// and is mainly useful in tests and for dumping a stream.
type Buffer struct {
	mu       sync.Mutex
	commands []RenderCommand
}

// Send appends cmd. It never fails.
func (b *Buffer) Send(cmd RenderCommand) error {
	b.mu.Lock()
	b.commands = append(b.commands, cmd)
	b.mu.Unlock()
	return nil
}

// Commands returns a copy of the recorded stream.
func (b *Buffer) Commands() []RenderCommand {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.commands)
}

// Len returns the number of recorded commands.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.commands)
}

// Reset discards the recorded stream.
func (b *Buffer) Reset() {
	b.mu.Lock()
	b.commands = b.commands[:0]
	b.mu.Unlock()
}

// Replay sends every recorded command, in order, to send. It stops at the
// first error.
func (b *Buffer) Replay(send func(RenderCommand) error) error {
	for _, cmd := range b.Commands() {
		if err := send(cmd); err != nil {
			return err
		}
	}
	return nil
}

// Equal reports whether two streams are identical, comparing vertex data
// element-wise.
func Equal(a, b []RenderCommand) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalCommand(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalCommand(a, b RenderCommand) bool {
	switch x := a.(type) {
	case UploadGeometryCommand:
		y, ok := b.(UploadGeometryCommand)
		return ok && x.Geometry == y.Geometry && x.Cover == y.Cover &&
			x.Bounds == y.Bounds && slices.Equal(x.Vertices, y.Vertices)
	case DrawPathCommand:
		y, ok := b.(DrawPathCommand)
		return ok && x == y
	}
	return a == nil && b == nil
}
