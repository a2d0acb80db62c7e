package scene

import "github.com/gogpu/pathstream/command"

// Listener receives render commands one at a time, in production order.
//
// Send is called on whatever goroutine the executor delivers from. The
// build never overlaps two calls, but a Listener shared with other code
// must not assume it is only ever called from one goroutine; wrap it with
// concurrent.Exclusive when that matters. A non-nil error aborts the build.
type Listener interface {
	Send(cmd command.RenderCommand) error
}

// ListenerFunc adapts a plain function to Listener.
type ListenerFunc func(cmd command.RenderCommand) error

// Send calls f(cmd).
func (f ListenerFunc) Send(cmd command.RenderCommand) error {
	return f(cmd)
}
