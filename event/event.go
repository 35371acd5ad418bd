// Package event is an in-process event bus. Listeners run synchronously in
// subscription order or on a shared goroutine pool.
package event

// Event is anything with a name listeners can subscribe to.
type Event interface {
	Name() string
}

// BaseEvent can be embedded into concrete events.
type BaseEvent struct {
	name string
}

func NewEvent(name string) BaseEvent {
	return BaseEvent{name: name}
}

func (e BaseEvent) Name() string {
	return e.name
}
