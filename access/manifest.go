/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package access

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	serrors "github.com/suparena/schemastore/errors"
)

// ManifestEntry is the YAML form of one descriptor declaration.
type ManifestEntry struct {
	Name        string   `yaml:"name"`
	Placeholder string   `yaml:"placeholder,omitempty"`
	Extends     []string `yaml:"extends,omitempty"`
	Expects     []string `yaml:"expects,omitempty"`
}

// Manifest is a statically declared set of access descriptors.
type Manifest struct {
	Descriptors []ManifestEntry `yaml:"descriptors"`
}

// ReadManifest decodes a YAML manifest and links its descriptors.
// References may point forward; every reference must be declared in the manifest.
func ReadManifest(r io.Reader) ([]*Descriptor, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return m.Build()
}

// Build links the manifest entries into descriptors, preserving declaration order.
func (m Manifest) Build() ([]*Descriptor, error) {
	byName := make(map[string]*Descriptor, len(m.Descriptors))
	out := make([]*Descriptor, 0, len(m.Descriptors))
	for _, entry := range m.Descriptors {
		if entry.Name == "" {
			return nil, serrors.NewValidationError("name", "descriptor name is required")
		}
		if _, exists := byName[entry.Name]; exists {
			return nil, serrors.NewAlreadyExistsError("descriptor", entry.Name)
		}
		d := &Descriptor{name: entry.Name}
		if entry.Placeholder != "" {
			d.template = &TemplateSpec{Placeholder: entry.Placeholder}
		}
		byName[entry.Name] = d
		out = append(out, d)
	}

	lookup := func(name string) (*Descriptor, error) {
		d, ok := byName[name]
		if !ok {
			return nil, serrors.NewNotFoundError("descriptor", name)
		}
		return d, nil
	}

	for i, entry := range m.Descriptors {
		d := out[i]
		for _, name := range entry.Extends {
			parent, err := lookup(name)
			if err != nil {
				return nil, fmt.Errorf("%s extends: %w", entry.Name, err)
			}
			d.extends = append(d.extends, parent)
		}
		for _, name := range entry.Expects {
			dep, err := lookup(name)
			if err != nil {
				return nil, fmt.Errorf("%s expects: %w", entry.Name, err)
			}
			d.expects = append(d.expects, dep)
		}
	}
	return out, nil
}
