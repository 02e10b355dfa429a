/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mapper

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/suparena/schemastore/access"
	serrors "github.com/suparena/schemastore/errors"
)

// Loader reads definition sources for access descriptors from a file system.
// Descriptor resource paths are absolute; the leading slash is dropped
// before opening the path in the file system.
type Loader struct {
	fsys fs.FS
}

// NewLoader creates a loader over fsys.
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// Exists reports whether d has a definition source.
func (l *Loader) Exists(d *access.Descriptor) bool {
	_, err := fs.Stat(l.fsys, resourceName(d))
	return err == nil
}

// Load returns the definition text of d. A missing source is a
// MissingResourceError when required, otherwise the empty string.
func (l *Loader) Load(d *access.Descriptor, required bool) (string, error) {
	data, err := fs.ReadFile(l.fsys, resourceName(d))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if required {
				return "", serrors.NewMissingResourceError(d.Name(), d.ResourcePath())
			}
			return "", nil
		}
		return "", fmt.Errorf("cannot read %s: %w", d.ResourcePath(), err)
	}
	return string(data), nil
}

func resourceName(d *access.Descriptor) string {
	return strings.TrimPrefix(d.ResourcePath(), "/")
}
