package storage

import (
	"context"
	"sync"

	"github.com/Vayras/admin-frontend-sub001/event"
	"github.com/google/uuid"
)

// EventChanged is dispatched on the backend's bus for every write.
const EventChanged = "storage.changed"

// ChangedEvent is the bus form of a Change.
type ChangedEvent struct {
	event.BaseEvent
	Change Change
}

// MemoryBackend is shared in-process state. Each Tab is a separate context
// over it, like browser tabs over one origin's storage.
type MemoryBackend struct {
	mu         sync.RWMutex
	data       map[string]string
	dispatcher event.Dispatcher
}

// NewMemoryBackend creates a backend. A nil dispatcher gets a synchronous one;
// otherwise subscribers are notified on the dispatcher's pool.
func NewMemoryBackend(dispatcher event.Dispatcher) *MemoryBackend {
	if dispatcher == nil {
		dispatcher = event.NewDispatcher(event.WithSetAllSync(true), event.WithPoolSize(1), event.WithRecover())
	}
	return &MemoryBackend{
		data:       make(map[string]string),
		dispatcher: dispatcher,
	}
}

// Tab opens a new context on the backend.
func (b *MemoryBackend) Tab() *MemoryStore {
	return &MemoryStore{backend: b, origin: uuid.NewString()}
}

// Close releases the dispatcher.
func (b *MemoryBackend) Close() {
	b.dispatcher.Close()
}

// MemoryStore is one context on a MemoryBackend.
type MemoryStore struct {
	backend *MemoryBackend
	origin  string
}

// Origin identifies this context in the changes it produces.
func (s *MemoryStore) Origin() string {
	return s.origin
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()
	v, ok := s.backend.data[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	s.backend.mu.Lock()
	old, existed := s.backend.data[key]
	s.backend.data[key] = value
	s.backend.mu.Unlock()
	if existed && old == value {
		return nil
	}
	return s.publish(ctx, Change{Key: key, Value: strPtr(value), Origin: s.origin})
}

func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	s.backend.mu.Lock()
	_, existed := s.backend.data[key]
	delete(s.backend.data, key)
	s.backend.mu.Unlock()
	if !existed {
		return nil
	}
	return s.publish(ctx, Change{Key: key, Origin: s.origin})
}

func (s *MemoryStore) publish(ctx context.Context, change Change) error {
	return s.backend.dispatcher.Dispatch(ctx, &ChangedEvent{
		BaseEvent: event.NewEvent(EventChanged),
		Change:    change,
	})
}

func (s *MemoryStore) Subscribe(handler Handler) (func(), error) {
	unsub := s.backend.dispatcher.Subscribe(EventChanged, event.ListenerFunc(func(ctx context.Context, e event.Event) error {
		ev, ok := e.(*ChangedEvent)
		if !ok || ev.Change.Origin == s.origin {
			return nil
		}
		handler(ctx, ev.Change)
		return nil
	}), event.WithAsync())
	return func() { unsub() }, nil
}
