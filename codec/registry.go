/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package codec

import (
	"reflect"
	"sync"

	"github.com/rs/zerolog"

	serrors "github.com/suparena/schemastore/errors"
	"github.com/suparena/schemastore/registry"
	"github.com/suparena/schemastore/security"
)

// Form records how a codec was registered.
type Form int

const (
	// FormBound codecs handle one explicitly named type.
	FormBound Form = iota
	// FormUnbound codecs handle the types they declare themselves.
	FormUnbound
	// FormDetached codecs handle no type and are only used when named by a statement.
	FormDetached
)

func (f Form) String() string {
	switch f {
	case FormBound:
		return "bound"
	case FormUnbound:
		return "unbound"
	default:
		return "detached"
	}
}

// Entry is one registration, in the order it happened.
type Entry struct {
	Name  string
	Codec Codec
	Form  Form
	Types []reflect.Type
}

// Registry binds codecs to Go types.
type Registry struct {
	mu       sync.RWMutex
	byType   map[reflect.Type]Codec
	byName   map[string]Codec
	detached map[string]Codec
	entries  []Entry

	cipher  security.Cipher
	helper  security.PasswordHelper
	filter  security.SensitiveFilter
	aliases *registry.Aliases
	logger  zerolog.Logger
	notify  func(Entry)
}

// Option configures a Registry.
type Option func(*Registry)

// WithCipher sets the cipher handed to cipher-aware codecs.
func WithCipher(c security.Cipher) Option {
	return func(r *Registry) { r.cipher = c }
}

// WithPasswordHelper sets the helper used by password and sensitive-aware codecs.
func WithPasswordHelper(h security.PasswordHelper) Option {
	return func(r *Registry) { r.helper = h }
}

// WithAliases registers a simple alias for every codec type.
func WithAliases(a *registry.Aliases) Option {
	return func(r *Registry) { r.aliases = a }
}

// WithLogger sets the registry logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithListener is called after every successful registration.
func WithListener(f func(Entry)) Option {
	return func(r *Registry) { r.notify = f }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byType:   make(map[reflect.Type]Codec),
		byName:   make(map[string]Codec),
		detached: make(map[string]Codec),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PasswordHelper returns the helper configured for the registry.
func (r *Registry) PasswordHelper() security.PasswordHelper {
	return r.helper
}

// SetSensitiveFilter activates automatic encryption for sensitive-aware
// codecs registered from now on. Codecs registered earlier are not changed.
func (r *Registry) SetSensitiveFilter(f security.SensitiveFilter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filter = f
}

// SensitiveFilter returns the active filter, or nil.
func (r *Registry) SensitiveFilter() security.SensitiveFilter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.filter
}

// RegisterBound binds c to t.
func (r *Registry) RegisterBound(t reflect.Type, c Codec) error {
	if t == nil {
		return serrors.NewValidationError("type", "bound codec needs a type")
	}
	return r.register(c, FormBound, []reflect.Type{t})
}

// RegisterUnbound binds c to the types it targets.
func (r *Registry) RegisterUnbound(c Codec) error {
	targeted, ok := c.(Targeted)
	if !ok || len(targeted.Targets()) == 0 {
		return serrors.NewValidationError("codec", NameOf(c)+" does not declare its target types")
	}
	return r.register(c, FormUnbound, targeted.Targets())
}

// RegisterDetached registers c without binding it to any type.
func (r *Registry) RegisterDetached(c Codec) error {
	return r.register(c, FormDetached, nil)
}

func (r *Registry) register(c Codec, form Form, types []reflect.Type) error {
	if c == nil {
		return serrors.NewValidationError("codec", "codec is required")
	}
	name := NameOf(c)

	r.mu.Lock()
	r.prepare(c)
	for _, t := range types {
		r.byType[t] = c
	}
	r.byName[name] = c
	if form == FormDetached {
		r.detached[name] = c
	}
	entry := Entry{Name: name, Codec: c, Form: form, Types: types}
	r.entries = append(r.entries, entry)
	notify := r.notify
	r.mu.Unlock()

	switch {
	case form == FormDetached:
		r.logger.Info().Msgf("Registered %s (detached)", name)
	case form == FormBound:
		r.logger.Info().Msgf("Registered %s (%s)", name, types[0].Name())
	default:
		r.logger.Info().Msgf("Registered %s", name)
	}
	if notify != nil {
		notify(entry)
	}
	return nil
}

// prepare binds the store collaborators to c. Called with the lock held.
func (r *Registry) prepare(c Codec) {
	if aware, ok := c.(CipherAware); ok && r.cipher != nil {
		aware.SetCipher(r.cipher)
	}
	if aware, ok := c.(SensitiveAware); ok && r.filter != nil {
		aware.EncryptSensitiveFields(r.helper, r.filter)
	}
	if r.aliases != nil {
		if _, err := r.aliases.Register(reflect.TypeOf(c)); err != nil {
			r.logger.Debug().Err(err).Str("codec", NameOf(c)).Msg("Unable to register type alias")
		}
	}
}

// Lookup returns the codec for t. Pointer types fall back to their element
// type, and types without a direct binding fall back to the most recently
// bound interface they implement.
func (r *Registry) Lookup(t reflect.Type) (Codec, bool) {
	if t == nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.byType[t]; ok {
		return c, true
	}
	if t.Kind() == reflect.Pointer {
		if c, ok := r.byType[t.Elem()]; ok {
			return c, true
		}
	}
	for i := len(r.entries) - 1; i >= 0; i-- {
		for _, bound := range r.entries[i].Types {
			if bound.Kind() == reflect.Interface && t.Implements(bound) {
				return r.byType[bound], true
			}
		}
	}
	return nil, false
}

// Named returns any registered codec by name.
func (r *Registry) Named(name string) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[name]
	return c, ok
}

// Detached returns a detached codec by name.
func (r *Registry) Detached(name string) (Codec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.detached[name]
	return c, ok
}

// Entries returns the registrations in order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Entry(nil), r.entries...)
}

// Encode converts v for binding. A non-empty codecName selects a codec by
// name; otherwise the codec bound to the type of v is used, and values
// without a codec pass through unchanged.
func (r *Registry) Encode(v any, codecName string) (any, error) {
	if codecName != "" {
		c, ok := r.Named(codecName)
		if !ok {
			return nil, serrors.NewNotFoundError("codec", codecName)
		}
		return c.Encode(v)
	}
	if v == nil {
		return nil, nil
	}
	if c, ok := r.Lookup(reflect.TypeOf(v)); ok {
		return c.Encode(v)
	}
	return v, nil
}

// Decode converts a stored value with the named codec.
func (r *Registry) Decode(src any, codecName string) (any, error) {
	c, ok := r.Named(codecName)
	if !ok {
		return nil, serrors.NewNotFoundError("codec", codecName)
	}
	return c.Decode(src)
}
