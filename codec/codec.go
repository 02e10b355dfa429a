/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package codec

import (
	"reflect"

	"github.com/suparena/schemastore/security"
)

// Codec converts between Go values and the values an engine stores.
type Codec interface {
	// Encode converts v into a value the engine can bind as a parameter.
	Encode(v any) (any, error)
	// Decode converts a stored value back into the Go value.
	Decode(src any) (any, error)
}

// Targeted codecs declare the Go types they handle, so they can be registered unbound.
type Targeted interface {
	Targets() []reflect.Type
}

// CipherAware codecs receive the store cipher when registered.
type CipherAware interface {
	SetCipher(c security.Cipher)
}

// SensitiveAware codecs encrypt string values whose keys match the filter.
type SensitiveAware interface {
	EncryptSensitiveFields(helper security.PasswordHelper, filter security.SensitiveFilter)
}

// ContentCodec marks codecs meant for content stores. Discovered codecs
// without the mark are only accepted by the configuration store.
type ContentCodec interface {
	Codec
	ContentOnly()
}

// Named codecs choose the name they are registered and referenced under.
type Named interface {
	Name() string
}

// NameOf returns the registration name of c: its Name() or its type name.
func NameOf(c Codec) string {
	if n, ok := c.(Named); ok {
		return n.Name()
	}
	t := reflect.TypeOf(c)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
