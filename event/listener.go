package event

import "context"

// Listener handles an event. In synchronous dispatch a returned error stops
// the remaining listeners and is returned to the dispatcher's caller.
type Listener interface {
	Handle(ctx context.Context, event Event) error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, event Event) error

func (f ListenerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}
