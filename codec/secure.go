/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/suparena/schemastore/security"
)

var errNoCipher = errors.New("no cipher bound to codec")

// PasswordCodec stores passwords encrypted by the password helper.
type PasswordCodec struct {
	helper security.PasswordHelper
}

func NewPasswordCodec(helper security.PasswordHelper) *PasswordCodec {
	return &PasswordCodec{helper: helper}
}

func (c *PasswordCodec) Targets() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[security.Password]()}
}

func (c *PasswordCodec) Encode(v any) (any, error) {
	p, ok := v.(security.Password)
	if !ok {
		return nil, fmt.Errorf("PasswordCodec cannot encode %T", v)
	}
	if p == nil {
		return nil, nil
	}
	if c.helper == nil {
		return nil, errNoCipher
	}
	return c.helper.Encrypt(p.Reveal())
}

func (c *PasswordCodec) Decode(src any) (any, error) {
	text, err := textOf(src)
	if err != nil || src == nil {
		return nil, err
	}
	if c.helper == nil {
		return nil, errNoCipher
	}
	plain, err := c.helper.Decrypt(string(text))
	if err != nil {
		return nil, err
	}
	return security.NewPassword(plain), nil
}

// PrincipalCollectionCodec stores principal collections as JSON.
type PrincipalCollectionCodec struct{}

func NewPrincipalCollectionCodec() *PrincipalCollectionCodec { return &PrincipalCollectionCodec{} }

func (c *PrincipalCollectionCodec) Targets() []reflect.Type {
	return []reflect.Type{reflect.TypeFor[security.PrincipalCollection]()}
}

func (c *PrincipalCollectionCodec) Encode(v any) (any, error) {
	pc, ok := v.(security.PrincipalCollection)
	if !ok {
		return nil, fmt.Errorf("PrincipalCollectionCodec cannot encode %T", v)
	}
	data, err := json.Marshal(pc)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (c *PrincipalCollectionCodec) Decode(src any) (any, error) {
	text, err := textOf(src)
	if err != nil {
		return nil, err
	}
	var pc security.PrincipalCollection
	if err := json.Unmarshal(text, &pc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal principals: %w", err)
	}
	return pc, nil
}

// EncryptedStringCodec encrypts strings with the store cipher. It is
// registered detached, so statements opt in with #{field,codec=EncryptedStringCodec}.
type EncryptedStringCodec struct {
	cipher security.Cipher
}

func NewEncryptedStringCodec() *EncryptedStringCodec { return &EncryptedStringCodec{} }

func (c *EncryptedStringCodec) SetCipher(cipher security.Cipher) {
	c.cipher = cipher
}

func (c *EncryptedStringCodec) Encode(v any) (any, error) {
	if c.cipher == nil {
		return nil, errNoCipher
	}
	var plain string
	switch tv := v.(type) {
	case nil:
		return nil, nil
	case string:
		plain = tv
	case fmt.Stringer:
		plain = tv.String()
	default:
		return nil, fmt.Errorf("EncryptedStringCodec cannot encode %T", v)
	}
	ciphertext, err := c.cipher.Encrypt([]byte(plain))
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (c *EncryptedStringCodec) Decode(src any) (any, error) {
	if c.cipher == nil {
		return nil, errNoCipher
	}
	if src == nil {
		return nil, nil
	}
	text, err := textOf(src)
	if err != nil {
		return nil, err
	}
	ciphertext, err := base64.StdEncoding.DecodeString(string(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", security.ErrDecryptionFailed, err)
	}
	plain, err := c.cipher.Decrypt(ciphertext)
	if err != nil {
		return nil, err
	}
	return string(plain), nil
}
