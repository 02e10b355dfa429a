/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package codec

import (
	"encoding/json"
	"fmt"

	"github.com/suparena/schemastore/security"
)

// jsonCodec stores values as JSON text. Once sensitive fields are enabled,
// string values under matching keys are encrypted on encode and decrypted on decode.
type jsonCodec struct {
	helper security.PasswordHelper
	filter security.SensitiveFilter
}

func (j *jsonCodec) EncryptSensitiveFields(helper security.PasswordHelper, filter security.SensitiveFilter) {
	if helper == nil {
		return
	}
	j.helper = helper
	j.filter = filter
}

// EncryptsSensitiveFields reports whether sensitive field encryption is enabled.
func (j *jsonCodec) EncryptsSensitiveFields() bool {
	return j.filter != nil && j.helper != nil
}

func (j *jsonCodec) marshal(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	if !j.EncryptsSensitiveFields() {
		return string(data), nil
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	generic, err = j.walk(generic, "", j.helper.Encrypt)
	if err != nil {
		return nil, err
	}
	data, err = json.Marshal(generic)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (j *jsonCodec) unmarshal(src any, into any) error {
	data, err := textOf(src)
	if err != nil {
		return err
	}
	if j.EncryptsSensitiveFields() {
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("failed to unmarshal stored JSON: %w", err)
		}
		if generic, err = j.walk(generic, "", j.helper.Decrypt); err != nil {
			return err
		}
		if data, err = json.Marshal(generic); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("failed to unmarshal stored JSON: %w", err)
	}
	return nil
}

// walk applies fn to every string value whose key matches the filter.
func (j *jsonCodec) walk(v any, key string, fn func(string) (string, error)) (any, error) {
	switch tv := v.(type) {
	case map[string]any:
		for k, child := range tv {
			out, err := j.walk(child, k, fn)
			if err != nil {
				return nil, err
			}
			tv[k] = out
		}
		return tv, nil
	case []any:
		for i, child := range tv {
			out, err := j.walk(child, key, fn)
			if err != nil {
				return nil, err
			}
			tv[i] = out
		}
		return tv, nil
	case string:
		if key != "" && j.filter(key) {
			return fn(tv)
		}
	}
	return v, nil
}

func textOf(src any) ([]byte, error) {
	switch tv := src.(type) {
	case string:
		return []byte(tv), nil
	case []byte:
		return tv, nil
	case json.RawMessage:
		return tv, nil
	case nil:
		return []byte("null"), nil
	}
	// engines that decode JSON columns themselves hand over structured values
	return json.Marshal(src)
}
