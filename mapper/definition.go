/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mapper

import "github.com/suparena/schemastore/storagemodels"

// Definition is the merged, placeholder-free statement definition for one
// concrete access type.
type Definition struct {
	// Namespace is the fully-qualified name of the concrete access type
	Namespace string
	// Prefix is the lower-case prefix derived from the concrete name
	Prefix string
	// Placeholder is the template token that Prefix replaced
	Placeholder string
	// Location is the synthesized resource name, <templatePath>${placeholder=prefix}
	Location string
	// Body is the serialized mapper document
	Body string
}

// Location returns the synthesized location for a template instantiated with prefix.
func Location(templatePath, placeholder, prefix string) string {
	return templatePath + "${" + placeholder + "=" + prefix + "}"
}

// Source returns the definition as an engine parse source.
func (d *Definition) Source() storagemodels.Source {
	return storagemodels.Source{
		Namespace: d.Namespace,
		Location:  d.Location,
		Body:      d.Body,
	}
}
