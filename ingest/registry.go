package ingest

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrInvalidProvider   = errors.New("invalid provider registration")
	ErrDuplicateProvider = errors.New("provider already registered")
	ErrUnknownProvider   = errors.New("provider not registered")
)

// Registry maps provider IDs to their descriptors.
// It is built once per run from configuration, and read-only afterwards
type Registry struct {
	descriptors map[string]*Descriptor

	mux sync.RWMutex
}

// NewRegistry creates a new, empty provider registry
func NewRegistry() *Registry {
	return &Registry{
		descriptors: make(map[string]*Descriptor),
	}
}

// Register registers a new provider factory under the given ID
func (r *Registry) Register(id string, factory Factory, metadata Metadata) error {
	if id == "" || factory == nil {
		return ErrInvalidProvider
	}

	r.mux.Lock()
	defer r.mux.Unlock()

	if _, exists := r.descriptors[id]; exists {
		return fmt.Errorf("%w, %s", ErrDuplicateProvider, id)
	}

	r.descriptors[id] = &Descriptor{
		ID:       id,
		Factory:  factory,
		Metadata: metadata,
	}

	return nil
}

// Resolve fetches the descriptors for the given provider IDs
func (r *Registry) Resolve(ids []string) ([]*Descriptor, error) {
	r.mux.RLock()
	defer r.mux.RUnlock()

	descriptors := make([]*Descriptor, 0, len(ids))

	for _, id := range ids {
		descriptor, exists := r.descriptors[id]
		if !exists {
			return nil, fmt.Errorf("%w, %s", ErrUnknownProvider, id)
		}

		descriptors = append(descriptors, descriptor)
	}

	return descriptors, nil
}

// All returns every registered descriptor, in canonical (ID) order
func (r *Registry) All() []*Descriptor {
	r.mux.RLock()
	defer r.mux.RUnlock()

	descriptors := make([]*Descriptor, 0, len(r.descriptors))

	for _, descriptor := range r.descriptors {
		descriptors = append(descriptors, descriptor)
	}

	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].ID < descriptors[j].ID
	})

	return descriptors
}
