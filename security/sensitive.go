/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package security

import (
	"fmt"
	"regexp"
	"strings"

	serrors "github.com/suparena/schemastore/errors"
)

// DefaultSensitivePatterns match the attribute names encrypted when no patterns are configured.
var DefaultSensitivePatterns = []string{"password", "secret", "token", "passphrase"}

// SensitiveFilter reports whether an attribute key holds a secret.
type SensitiveFilter func(key string) bool

// BuildSensitiveFilter compiles patterns into a case-insensitive filter that
// matches when any pattern is found in the key. No patterns means the defaults.
func BuildSensitiveFilter(patterns []string) (SensitiveFilter, error) {
	var cleaned []string
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, "(?:"+p+")")
		}
	}
	if len(cleaned) == 0 {
		for _, p := range DefaultSensitivePatterns {
			cleaned = append(cleaned, "(?:"+p+")")
		}
	}

	re, err := regexp.Compile("(?i)" + strings.Join(cleaned, "|"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", serrors.NewValidationError("sensitive.attributes", "invalid pattern"), err)
	}
	return re.MatchString, nil
}
