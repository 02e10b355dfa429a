/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package security

import (
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHelper protects secrets that are stored as text.
type PasswordHelper interface {
	// Encrypt returns the {base64} envelope of the encrypted value.
	Encrypt(plain string) (string, error)
	// Decrypt opens an envelope; values that are not enveloped are returned as-is.
	Decrypt(value string) (string, error)
	// Hash returns a one-way bcrypt hash of plain.
	Hash(plain string) (string, error)
	// Verify reports whether plain matches hash.
	Verify(hash, plain string) bool
}

type passwordHelper struct {
	cipher Cipher
	cost   int
}

// NewPasswordHelper returns a helper encrypting with c and hashing with bcrypt's default cost.
func NewPasswordHelper(c Cipher) PasswordHelper {
	return NewPasswordHelperWithCost(c, bcrypt.DefaultCost)
}

// NewPasswordHelperWithCost returns a helper hashing with the given bcrypt cost.
func NewPasswordHelperWithCost(c Cipher, cost int) PasswordHelper {
	return &passwordHelper{cipher: c, cost: cost}
}

// IsEncrypted reports whether value is a {base64} envelope.
func IsEncrypted(value string) bool {
	return len(value) >= 2 && strings.HasPrefix(value, "{") && strings.HasSuffix(value, "}")
}

func (h *passwordHelper) Encrypt(plain string) (string, error) {
	if IsEncrypted(plain) {
		return plain, nil
	}
	ciphertext, err := h.cipher.Encrypt([]byte(plain))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt value: %w", err)
	}
	return "{" + base64.StdEncoding.EncodeToString(ciphertext) + "}", nil
}

func (h *passwordHelper) Decrypt(value string) (string, error) {
	if !IsEncrypted(value) {
		return value, nil
	}
	ciphertext, err := base64.StdEncoding.DecodeString(value[1 : len(value)-1])
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	plain, err := h.cipher.Decrypt(ciphertext)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func (h *passwordHelper) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash failed: %w", err)
	}
	return string(hash), nil
}

func (h *passwordHelper) Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
