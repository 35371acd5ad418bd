package errcode

import (
	"fmt"
	"sort"
	"sync"
)

// Registry guards against two packages claiming the same code.
type Registry struct {
	mu    sync.RWMutex
	codes map[int]string // code -> module:msgKey
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{codes: make(map[int]string)}
}

var globalRegistry = NewRegistry()

// Register records err in the global registry and returns it, so package-level
// error variables can be declared as `var ErrX = errcode.Register(errcode.New(...))`.
func Register(err *LayeredError) *LayeredError {
	return globalRegistry.Register(err)
}

// Register panics when err's code is already bound to another module:msgKey.
// Registering the same error twice is a no-op.
func (r *Registry) Register(err *LayeredError) *LayeredError {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := err.Module() + ":" + err.MsgKey()
	if existing, ok := r.codes[err.Code()]; ok && existing != key {
		panic(fmt.Sprintf("errcode: code %d already registered as %s, cannot register as %s",
			err.Code(), existing, key))
	}
	r.codes[err.Code()] = key
	return err
}

// Lookup returns the module:msgKey bound to code.
func (r *Registry) Lookup(code int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.codes[code]
	return key, ok
}

// Codes returns the registered codes in ascending order.
func (r *Registry) Codes() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]int, 0, len(r.codes))
	for c := range r.codes {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

// Lookup queries the global registry.
func Lookup(code int) (string, bool) {
	return globalRegistry.Lookup(code)
}

// RegisteredCodes lists every code in the global registry.
func RegisteredCodes() []int {
	return globalRegistry.Codes()
}
