/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"reflect"
	"sort"
	"strings"
	"sync"

	serrors "github.com/suparena/schemastore/errors"
)

// maxUnwrap bounds how many container layers are peeled off when looking for a named type.
const maxUnwrap = 8

// Aliases maps simple, package-less names to the value types used by access
// definitions, so definitions can refer to "asset" instead of a full type path.
type Aliases struct {
	mu      sync.RWMutex
	aliases map[string]reflect.Type
}

// NewAliases creates an empty alias registry.
func NewAliases() *Aliases {
	return &Aliases{
		aliases: make(map[string]reflect.Type),
	}
}

// Register adds a simple alias for the nearest named type of t.
// Builtin and standard library types are skipped and report false.
// Registering the same type twice is a no-op; a different type under the same
// alias is an AlreadyExistsError.
func (a *Aliases) Register(t reflect.Type) (bool, error) {
	named, ok := Normalize(t)
	if !ok || IsStandard(named) {
		return false, nil
	}
	alias := strings.ToLower(named.Name())

	a.mu.Lock()
	defer a.mu.Unlock()

	if existing, exists := a.aliases[alias]; exists {
		if existing == named {
			return true, nil
		}
		return false, serrors.NewAlreadyExistsError("alias", alias)
	}
	a.aliases[alias] = named
	return true, nil
}

// Resolve returns the type registered under alias (case-insensitive).
func (a *Aliases) Resolve(alias string) (reflect.Type, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	t, ok := a.aliases[strings.ToLower(alias)]
	return t, ok
}

// Names returns the registered aliases in sorted order.
func (a *Aliases) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, 0, len(a.aliases))
	for name := range a.aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Normalize unwraps pointers, slices, arrays, channels and maps (preferring the
// element side) and returns the nearest named type.
func Normalize(t reflect.Type) (reflect.Type, bool) {
	for i := 0; t != nil && i < maxUnwrap; i++ {
		switch t.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Chan:
			t = t.Elem()
		case reflect.Map:
			if t.Elem().Name() != "" {
				return t.Elem(), true
			}
			if t.Key().Name() != "" {
				return t.Key(), true
			}
			t = t.Elem()
		default:
			return t, t.Name() != ""
		}
	}
	return nil, false
}

// IsStandard reports whether t is predeclared or comes from the standard library.
func IsStandard(t reflect.Type) bool {
	pkg := t.PkgPath()
	if pkg == "" {
		return true
	}
	first, _, _ := strings.Cut(pkg, "/")
	return !strings.Contains(first, ".")
}
