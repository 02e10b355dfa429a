/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package codec

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"

	serrors "github.com/suparena/schemastore/errors"
	"github.com/suparena/schemastore/ident"
)

// DateTimeCodec stores timestamps in UTC and reads them back as strfmt.DateTime.
type DateTimeCodec struct{}

func NewDateTimeCodec() *DateTimeCodec { return &DateTimeCodec{} }

func (c *DateTimeCodec) Targets() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[strfmt.DateTime](), reflect.TypeFor[time.Time]()}
}

func (c *DateTimeCodec) Encode(v any) (any, error) {
	switch tv := v.(type) {
	case strfmt.DateTime:
		return time.Time(tv).UTC(), nil
	case *strfmt.DateTime:
		if tv == nil {
			return nil, nil
		}
		return time.Time(*tv).UTC(), nil
	case time.Time:
		return tv.UTC(), nil
	case *time.Time:
		if tv == nil {
			return nil, nil
		}
		return tv.UTC(), nil
	}
	return nil, fmt.Errorf("DateTimeCodec cannot encode %T", v)
}

func (c *DateTimeCodec) Decode(src any) (any, error) {
	switch tv := src.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return strfmt.DateTime(tv.UTC()), nil
	case strfmt.DateTime:
		return tv, nil
	case string:
		return strfmt.ParseDateTime(tv)
	case []byte:
		return strfmt.ParseDateTime(string(tv))
	}
	return nil, fmt.Errorf("DateTimeCodec cannot decode %T", src)
}

// EntityUUIDCodec maps entity ids. A lenient codec is used when the engine
// has no native UUID type and ids are stored as text.
type EntityUUIDCodec struct {
	lenient bool
}

func NewEntityUUIDCodec(lenient bool) *EntityUUIDCodec {
	return &EntityUUIDCodec{lenient: lenient}
}

// Lenient reports whether ids are stored as text.
func (c *EntityUUIDCodec) Lenient() bool {
	return c.lenient
}

func (c *EntityUUIDCodec) Encode(v any) (any, error) {
	var id ident.EntityID
	switch tv := v.(type) {
	case nil:
		return nil, nil
	case ident.EntityID:
		id = tv
	default:
		return nil, fmt.Errorf("EntityUUIDCodec cannot encode %T", v)
	}

	parsed, err := ident.ParseEntityUUID(id.Value())
	if err != nil {
		return nil, err
	}
	if c.lenient {
		return parsed.Value(), nil
	}
	return parsed.UUID, nil
}

func (c *EntityUUIDCodec) Decode(src any) (any, error) {
	switch tv := src.(type) {
	case nil:
		return nil, nil
	case uuid.UUID:
		return ident.EntityUUID{UUID: tv}, nil
	case [16]byte:
		return ident.EntityUUID{UUID: uuid.UUID(tv)}, nil
	case string:
		if !c.lenient {
			return nil, serrors.NewValidationError("id", "text ids need a lenient codec")
		}
		return ident.ParseEntityUUID(tv)
	case []byte:
		if len(tv) == 16 {
			id, err := uuid.FromBytes(tv)
			if err != nil {
				return nil, err
			}
			return ident.EntityUUID{UUID: id}, nil
		}
		if !c.lenient {
			return nil, serrors.NewValidationError("id", "text ids need a lenient codec")
		}
		return ident.ParseEntityUUID(string(tv))
	}
	return nil, fmt.Errorf("EntityUUIDCodec cannot decode %T", src)
}

// LenientUUIDCodec lets plain UUID values be queried as text on engines
// without a native UUID type.
type LenientUUIDCodec struct{}

func NewLenientUUIDCodec() *LenientUUIDCodec { return &LenientUUIDCodec{} }

func (c *LenientUUIDCodec) Targets() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[strfmt.UUID](), reflect.TypeFor[uuid.UUID]()}
}

func (c *LenientUUIDCodec) Encode(v any) (any, error) {
	var text string
	switch tv := v.(type) {
	case nil:
		return nil, nil
	case strfmt.UUID:
		text = strings.ToLower(tv.String())
	case uuid.UUID:
		text = tv.String()
	default:
		return nil, fmt.Errorf("LenientUUIDCodec cannot encode %T", v)
	}
	if !strfmt.IsUUID(text) {
		return nil, serrors.NewValidationError("uuid", fmt.Sprintf("%q is not a UUID", text))
	}
	return text, nil
}

func (c *LenientUUIDCodec) Decode(src any) (any, error) {
	switch tv := src.(type) {
	case nil:
		return nil, nil
	case string:
		if !strfmt.IsUUID(tv) {
			return nil, serrors.NewValidationError("uuid", fmt.Sprintf("%q is not a UUID", tv))
		}
		return strfmt.UUID(strings.ToLower(tv)), nil
	case []byte:
		return c.Decode(string(tv))
	case [16]byte:
		return strfmt.UUID(uuid.UUID(tv).String()), nil
	case uuid.UUID:
		return strfmt.UUID(tv.String()), nil
	}
	return nil, fmt.Errorf("LenientUUIDCodec cannot decode %T", src)
}
