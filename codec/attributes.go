/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package codec

import (
	"encoding/json"
	"reflect"
)

// Attributes is a free-form attribute document.
type Attributes map[string]any

// NestedAttributesMap is a view onto one key of a backing attribute document.
type NestedAttributesMap struct {
	Key     string
	Backing map[string]any
}

// NewNestedAttributesMap wraps backing under key.
func NewNestedAttributesMap(key string, backing map[string]any) NestedAttributesMap {
	if backing == nil {
		backing = make(map[string]any)
	}
	return NestedAttributesMap{Key: key, Backing: backing}
}

// Get returns the value stored under key.
func (m NestedAttributesMap) Get(key string) any {
	return m.Backing[key]
}

// Set stores value under key.
func (m NestedAttributesMap) Set(key string, value any) {
	m.Backing[key] = value
}

// Child returns the nested map under key, creating it when absent.
func (m NestedAttributesMap) Child(key string) NestedAttributesMap {
	child, ok := m.Backing[key].(map[string]any)
	if !ok {
		child = make(map[string]any)
		m.Backing[key] = child
	}
	return NestedAttributesMap{Key: m.Key + "." + key, Backing: child}
}

func (m NestedAttributesMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Backing)
}

// AttributesCodec stores Attributes as JSON, encrypting sensitive fields when enabled.
type AttributesCodec struct{ jsonCodec }

func NewAttributesCodec() *AttributesCodec { return &AttributesCodec{} }

func (c *AttributesCodec) Targets() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[Attributes]()}
}

func (c *AttributesCodec) Encode(v any) (any, error) { return c.marshal(v) }

func (c *AttributesCodec) Decode(src any) (any, error) {
	var out Attributes
	if err := c.unmarshal(src, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NestedAttributesMapCodec stores the backing document of a NestedAttributesMap.
// The key is not stored: decoded maps are rooted at "attributes".
type NestedAttributesMapCodec struct{ jsonCodec }

func NewNestedAttributesMapCodec() *NestedAttributesMapCodec { return &NestedAttributesMapCodec{} }

func (c *NestedAttributesMapCodec) Targets() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[NestedAttributesMap]()}
}

func (c *NestedAttributesMapCodec) Encode(v any) (any, error) { return c.marshal(v) }

func (c *NestedAttributesMapCodec) Decode(src any) (any, error) {
	var backing map[string]any
	if err := c.unmarshal(src, &backing); err != nil {
		return nil, err
	}
	return NewNestedAttributesMap("attributes", backing), nil
}
