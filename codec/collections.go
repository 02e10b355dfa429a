/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package codec

import (
	"encoding/json"
	"reflect"
	"sort"
)

// Set is a set of strings stored as a sorted JSON array.
type Set map[string]struct{}

// NewSet creates a set holding values.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Has reports whether v is in the set.
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in sorted order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewSet(values...)
	return nil
}

// ListCodec stores lists as JSON arrays.
type ListCodec struct{ jsonCodec }

func NewListCodec() *ListCodec { return &ListCodec{} }

func (c *ListCodec) Targets() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[[]string](), reflect.TypeFor[[]any]()}
}

func (c *ListCodec) Encode(v any) (any, error) { return c.marshal(v) }

func (c *ListCodec) Decode(src any) (any, error) {
	var out []any
	if err := c.unmarshal(src, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetCodec stores sets as sorted JSON arrays.
type SetCodec struct{ jsonCodec }

func NewSetCodec() *SetCodec { return &SetCodec{} }

func (c *SetCodec) Targets() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[Set]()}
}

func (c *SetCodec) Encode(v any) (any, error) { return c.marshal(v) }

func (c *SetCodec) Decode(src any) (any, error) {
	var out Set
	if err := c.unmarshal(src, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MapCodec stores plain maps as JSON objects.
type MapCodec struct{ jsonCodec }

func NewMapCodec() *MapCodec { return &MapCodec{} }

func (c *MapCodec) Targets() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[map[string]any](), reflect.TypeFor[map[string]string]()}
}

func (c *MapCodec) Encode(v any) (any, error) { return c.marshal(v) }

func (c *MapCodec) Decode(src any) (any, error) {
	var out map[string]any
	if err := c.unmarshal(src, &out); err != nil {
		return nil, err
	}
	return out, nil
}
