/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package template

import (
	"strings"

	"github.com/suparena/schemastore/access"
	serrors "github.com/suparena/schemastore/errors"
	"github.com/suparena/schemastore/registry"
)

// Find returns the schema template directly extended by d, or nil when d is a
// plain access type. Only direct supertypes are searched.
func Find(d *access.Descriptor) *access.Descriptor {
	for _, candidate := range d.Supertypes() {
		if candidate.IsTemplate() {
			return candidate
		}
	}
	return nil
}

// DerivePrefix returns the lower-case prefix left after removing templateName
// from the end of accessName; for example MavenAssetDAO / AssetDAO = maven.
func DerivePrefix(accessName, templateName string) (string, error) {
	if !strings.HasSuffix(accessName, templateName) {
		return "", serrors.NewInvalidPrefixError(accessName, templateName, false)
	}
	prefix := strings.ToLower(accessName[:len(accessName)-len(templateName)])
	if prefix == "" {
		return "", serrors.NewInvalidPrefixError(accessName, templateName, true)
	}
	return prefix, nil
}

// Resolver locates the concrete siblings that templates expect.
type Resolver struct {
	catalog *registry.Catalog
}

// NewResolver creates a resolver backed by catalog.
func NewResolver(catalog *registry.Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Catalog returns the catalog the resolver searches.
func (r *Resolver) Catalog() *registry.Catalog {
	return r.catalog
}

// Index adds d to the catalog and, when it instantiates a template, binds it
// to its (template, prefix) family.
func (r *Resolver) Index(d *access.Descriptor) error {
	if err := r.catalog.Add(d); err != nil {
		return err
	}
	tmpl := Find(d)
	if tmpl == nil {
		return nil
	}
	prefix, err := DerivePrefix(d.SimpleName(), tmpl.SimpleName())
	if err != nil {
		return err
	}
	return r.catalog.Bind(tmpl.Name(), prefix, d)
}

// ResolveDependency finds the access type expected by currentTemplate when it
// is instantiated as current. Siblings share the namespace of current:
// org.example.MavenAssetDAO / AssetDAO / ComponentDAO = org.example.MavenComponentDAO.
func (r *Resolver) ResolveDependency(current, currentTemplate, expected *access.Descriptor) (*access.Descriptor, error) {
	currentSuffix := currentTemplate.SimpleName()
	expectedSuffix := expected.SimpleName()
	expectedName := strings.ReplaceAll(current.Name(), currentSuffix, expectedSuffix)

	found, ok := r.catalog.Lookup(expectedName)
	if !ok {
		prefix, err := DerivePrefix(current.SimpleName(), currentSuffix)
		if err == nil {
			found, ok = r.catalog.Family(expected.Name(), prefix)
		}
	}
	if !ok {
		return nil, serrors.NewTypeResolutionError(expectedName, expected.Name(),
			serrors.NewNotFoundError("descriptor", expectedName))
	}

	// sanity check that this type has the expected hierarchy
	if !found.AssignableTo(expected) {
		return nil, serrors.NewTypeResolutionError(found.Name(), expected.Name(), serrors.ErrHierarchyMismatch)
	}
	return found, nil
}
