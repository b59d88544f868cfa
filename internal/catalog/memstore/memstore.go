// Package memstore provides an in-memory [catalog.Store], used by the
// runner's own tests and by embedders that have no catalog database.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/eoneil1942/sprunner/internal/catalog"
)

// Store is an in-memory, install-once [catalog.Store].
type Store struct {
	mu         sync.RWMutex
	procedures map[string]*catalog.Procedure
	descs      map[int64]*catalog.Descriptor
	fragments  *catalog.FragmentRepository
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		procedures: map[string]*catalog.Procedure{},
		descs:      map[int64]*catalog.Descriptor{},
		fragments:  catalog.NewFragmentRepository(),
	}
}

// Install registers a procedure, along with any statement descriptors it
// references, under catalog ids assigned by the caller.
func (s *Store) Install(proc *catalog.Procedure, descs map[int64]*catalog.Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.procedures[proc.Name] = proc

	for id, d := range descs {
		s.descs[id] = d
	}
}

// Procedure implements [catalog.Store].
func (s *Store) Procedure(_ context.Context, name string) (*catalog.Procedure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.procedures[name]
	if !ok {
		return nil, fmt.Errorf("memstore: procedure %q not found", name)
	}

	return p, nil
}

// Descriptor implements [catalog.Store].
func (s *Store) Descriptor(_ context.Context, id int64) (*catalog.Descriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.descs[id]
	if !ok {
		return nil, fmt.Errorf("memstore: descriptor %d not found", id)
	}

	return d, nil
}

// Fragments implements [catalog.Store].
func (s *Store) Fragments() *catalog.FragmentRepository {
	return s.fragments
}

var _ catalog.Store = (*Store)(nil)
