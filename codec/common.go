/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package codec

import (
	"reflect"

	"github.com/suparena/schemastore/ident"
	"github.com/suparena/schemastore/security"
)

// CommonOptions controls RegisterCommon.
type CommonOptions struct {
	// ContentStore skips the security codecs that only the configuration store uses
	ContentStore bool
	// NativeUUID is false when the engine stores ids as text
	NativeUUID bool
	// SensitiveFilter is activated after the security codecs are registered
	SensitiveFilter security.SensitiveFilter
	// InstallInterceptor is called between the identity codecs and the security codecs
	InstallInterceptor func() error
}

// RegisterCommon registers the built-in codecs in layers. Raw codecs come
// first and never encrypt. The composite attribute codecs come last, after
// sensitive field encryption has been switched on for the configuration store.
func RegisterCommon(r *Registry, opts CommonOptions) error {
	// raw/simple codecs first
	for _, c := range []Codec{NewListCodec(), NewSetCodec(), NewMapCodec(), NewDateTimeCodec()} {
		if err := r.RegisterUnbound(c); err != nil {
			return err
		}
	}

	// entity ids need some extra handling
	lenient := !opts.NativeUUID
	idCodec := NewEntityUUIDCodec(lenient)
	if err := r.RegisterBound(reflect.TypeFor[ident.EntityUUID](), idCodec); err != nil {
		return err
	}
	if err := r.RegisterBound(reflect.TypeFor[ident.EntityID](), idCodec); err != nil {
		return err
	}
	if lenient {
		if err := r.RegisterUnbound(NewLenientUUIDCodec()); err != nil {
			return err
		}
	}

	// generate new entity ids on demand
	if opts.InstallInterceptor != nil {
		if err := opts.InstallInterceptor(); err != nil {
			return err
		}
	}

	if !opts.ContentStore {
		if err := r.RegisterUnbound(NewPasswordCodec(r.PasswordHelper())); err != nil {
			return err
		}
		if err := r.RegisterUnbound(NewPrincipalCollectionCodec()); err != nil {
			return err
		}
		if err := r.RegisterDetached(NewEncryptedStringCodec()); err != nil {
			return err
		}
		r.SetSensitiveFilter(opts.SensitiveFilter)
	}

	if err := r.RegisterUnbound(NewAttributesCodec()); err != nil {
		return err
	}
	return r.RegisterUnbound(NewNestedAttributesMapCodec())
}
