/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schemastore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/suparena/schemastore/datastore"
	serrors "github.com/suparena/schemastore/errors"
)

// Manager is a thread-safe collection of named stores.
type Manager struct {
	mu     sync.RWMutex
	stores map[string]*Store
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		stores: make(map[string]*Store),
	}
}

// Add registers store under its name.
func (m *Manager) Add(store *Store) error {
	if store == nil || store.Name() == "" {
		return serrors.NewValidationError("store", "store name is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(store.Name())
	if _, exists := m.stores[key]; exists {
		return serrors.NewAlreadyExistsError("store", store.Name())
	}
	m.stores[key] = store
	return nil
}

// Get retrieves the store called name. Names are case-insensitive.
func (m *Manager) Get(name string) (*Store, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	store, exists := m.stores[strings.ToLower(name)]
	if !exists {
		return nil, serrors.NewNotFoundError("store", name)
	}
	return store, nil
}

// Names returns the store names, configuration store first and the rest sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.stores))
	for _, s := range m.stores {
		names = append(names, s.Name())
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := !IsContentStore(names[i]), !IsContentStore(names[j])
		if ci != cj {
			return ci
		}
		return names[i] < names[j]
	})
	return names
}

// StartAll starts every stopped store, the configuration store first.
// It stops at the first failure.
func (m *Manager) StartAll(ctx context.Context) error {
	for _, name := range m.Names() {
		store, err := m.Get(name)
		if err != nil {
			return err
		}
		if store.State() != datastore.Stopped {
			continue
		}
		if err := store.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// StopAll stops every started store in reverse start order and joins the errors.
func (m *Manager) StopAll(ctx context.Context) error {
	names := m.Names()
	var errs []error
	for i := len(names) - 1; i >= 0; i-- {
		store, err := m.Get(names[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if store.State() != datastore.Started {
			continue
		}
		if err := store.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("store %s: %w", names[i], err))
		}
	}
	return errors.Join(errs...)
}
