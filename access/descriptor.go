/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package access

import (
	"reflect"
	"strings"
)

// Method is the statically declared signature of one access operation.
type Method struct {
	Name    string
	Params  []reflect.Type
	Returns []reflect.Type
}

// NewMethod declares a method signature for a descriptor manifest.
func NewMethod(name string, params []reflect.Type, returns ...reflect.Type) Method {
	return Method{Name: name, Params: params, Returns: returns}
}

// TemplateSpec marks a descriptor as a schema template.
type TemplateSpec struct {
	// Placeholder is the token substituted as ${Placeholder} in the template body.
	Placeholder string
}

// Descriptor identifies one access type: its dotted fully-qualified name,
// its directly declared supertypes and the value types its methods use.
// Descriptors are immutable once defined.
type Descriptor struct {
	name     string
	extends  []*Descriptor
	expects  []*Descriptor
	methods  []Method
	template *TemplateSpec
}

// Option configures a descriptor at definition time.
type Option func(*Descriptor)

// Extends declares the direct supertypes of the descriptor.
func Extends(parents ...*Descriptor) Option {
	return func(d *Descriptor) {
		d.extends = append(d.extends, parents...)
	}
}

// Expects declares descriptors that must be registered before this one.
func Expects(deps ...*Descriptor) Option {
	return func(d *Descriptor) {
		d.expects = append(d.expects, deps...)
	}
}

// WithMethods declares the method manifest of the descriptor.
func WithMethods(methods ...Method) Option {
	return func(d *Descriptor) {
		d.methods = append(d.methods, methods...)
	}
}

// Define declares a concrete (or plain) access descriptor.
func Define(name string, opts ...Option) *Descriptor {
	d := &Descriptor{name: name}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DefineTemplate declares a schema template whose body uses ${placeholder}.
func DefineTemplate(name, placeholder string, opts ...Option) *Descriptor {
	d := Define(name, opts...)
	d.template = &TemplateSpec{Placeholder: placeholder}
	return d
}

// Name returns the fully-qualified dotted name.
func (d *Descriptor) Name() string {
	return d.name
}

// SimpleName returns the name without its namespace.
func (d *Descriptor) SimpleName() string {
	if i := strings.LastIndexByte(d.name, '.'); i >= 0 {
		return d.name[i+1:]
	}
	return d.name
}

// Namespace returns the dotted namespace the descriptor lives in.
func (d *Descriptor) Namespace() string {
	if i := strings.LastIndexByte(d.name, '.'); i >= 0 {
		return d.name[:i]
	}
	return ""
}

// ResourcePath returns the absolute path of the descriptor's definition source,
// for example /org/example/AssetDAO.xml.
func (d *Descriptor) ResourcePath() string {
	return "/" + strings.ReplaceAll(d.name, ".", "/") + ".xml"
}

// IsTemplate reports whether the descriptor is a schema template.
func (d *Descriptor) IsTemplate() bool {
	return d.template != nil
}

// Placeholder returns the template placeholder, or "" for non-templates.
func (d *Descriptor) Placeholder() string {
	if d.template == nil {
		return ""
	}
	return d.template.Placeholder
}

// Supertypes returns the directly declared supertypes.
func (d *Descriptor) Supertypes() []*Descriptor {
	return append([]*Descriptor(nil), d.extends...)
}

// Expected returns the descriptors that must be registered first.
func (d *Descriptor) Expected() []*Descriptor {
	return append([]*Descriptor(nil), d.expects...)
}

// Methods returns the declared methods, including those inherited from supertypes.
func (d *Descriptor) Methods() []Method {
	var methods []Method
	seen := make(map[*Descriptor]bool)
	var walk func(*Descriptor)
	walk = func(cur *Descriptor) {
		if cur == nil || seen[cur] {
			return
		}
		seen[cur] = true
		methods = append(methods, cur.methods...)
		for _, parent := range cur.extends {
			walk(parent)
		}
	}
	walk(d)
	return methods
}

// ValueTypes returns every distinct parameter and return type used by the
// descriptor's methods, in declaration order.
func (d *Descriptor) ValueTypes() []reflect.Type {
	var types []reflect.Type
	seen := make(map[reflect.Type]bool)
	add := func(t reflect.Type) {
		if t == nil || seen[t] {
			return
		}
		seen[t] = true
		types = append(types, t)
	}
	for _, m := range d.Methods() {
		for _, p := range m.Params {
			add(p)
		}
		for _, r := range m.Returns {
			add(r)
		}
	}
	return types
}

// AssignableTo reports whether d is other or extends it through any chain of supertypes.
func (d *Descriptor) AssignableTo(other *Descriptor) bool {
	if d == nil || other == nil {
		return false
	}
	if d == other || d.name == other.name {
		return true
	}
	for _, parent := range d.extends {
		if parent.AssignableTo(other) {
			return true
		}
	}
	return false
}

func (d *Descriptor) String() string {
	return d.name
}
