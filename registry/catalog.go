/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"sort"
	"sync"

	"github.com/suparena/schemastore/access"
	serrors "github.com/suparena/schemastore/errors"
)

// familyKey identifies one instantiation of a schema template.
type familyKey struct {
	template string
	prefix   string
}

// Catalog holds every access descriptor a store may be asked to resolve,
// indexed by name and by (template, prefix) family.
type Catalog struct {
	mu       sync.RWMutex
	byName   map[string]*access.Descriptor
	byFamily map[familyKey]*access.Descriptor
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byName:   make(map[string]*access.Descriptor),
		byFamily: make(map[familyKey]*access.Descriptor),
	}
}

// Add indexes a descriptor by name. Adding the same descriptor again is a no-op.
func (c *Catalog) Add(d *access.Descriptor) error {
	if d == nil || d.Name() == "" {
		return serrors.NewValidationError("name", "descriptor name is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, exists := c.byName[d.Name()]; exists {
		if existing == d {
			return nil
		}
		return serrors.NewAlreadyExistsError("descriptor", d.Name())
	}
	c.byName[d.Name()] = d
	return nil
}

// Bind records d as the instantiation of template under prefix.
func (c *Catalog) Bind(template, prefix string, d *access.Descriptor) error {
	key := familyKey{template: template, prefix: prefix}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, exists := c.byFamily[key]; exists && existing != d {
		return serrors.NewAlreadyExistsError("family", template+"/"+prefix)
	}
	c.byFamily[key] = d
	return nil
}

// Lookup returns the descriptor registered under name.
func (c *Catalog) Lookup(name string) (*access.Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.byName[name]
	return d, ok
}

// Family returns the instantiation of template for prefix.
func (c *Catalog) Family(template, prefix string) (*access.Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.byFamily[familyKey{template: template, prefix: prefix}]
	return d, ok
}

// Names returns all catalogued names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
