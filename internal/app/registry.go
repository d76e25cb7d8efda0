package app

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrUnknownApplication = errors.New("unknown application")

type Factory func() Application

// Registry maps application names to factories so an application can be
// reconstructed from its name on the execution side.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Default holds the built-in applications.
var Default = NewRegistry()

func init() {
	Default.Register(ConstantName, func() Application { return NewConstant(0.5) })
}

func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

func (r *Registry) New(name string) (Application, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownApplication, name)
	}
	return f(), nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
