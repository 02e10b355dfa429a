/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// Encryption errors.
var (
	ErrInvalidKeySize   = errors.New("invalid key size")
	ErrCiphertextShort  = errors.New("ciphertext too short")
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrEmptyPassphrase  = errors.New("passphrase is required")
)

// Cipher encrypts values before they are written and decrypts them after they are read.
type Cipher interface {
	// Encrypt encrypts plaintext and returns ciphertext.
	Encrypt(plaintext []byte) ([]byte, error)

	// Decrypt decrypts ciphertext and returns plaintext.
	Decrypt(ciphertext []byte) ([]byte, error)
}

// KeyParams configures Argon2id key derivation for passphrase based ciphers.
type KeyParams struct {
	Time    uint32 // Number of iterations
	Memory  uint32 // Memory usage in KiB
	Threads uint8  // Parallelism factor
	KeyLen  uint32 // Derived key length, 16, 24 or 32
}

// DefaultKeyParams returns the Argon2id parameters used by NewPBECipher.
func DefaultKeyParams() KeyParams {
	return KeyParams{
		Time:    1,
		Memory:  64 * 1024, // 64 MiB
		Threads: 4,
		KeyLen:  32,
	}
}

// aesCipher implements AES-GCM encryption.
type aesCipher struct {
	gcm cipher.AEAD
}

// NewAESCipher returns an AES-GCM cipher.
// Key must be 16, 24, or 32 bytes for AES-128, AES-192, or AES-256.
func NewAESCipher(key []byte) (Cipher, error) {
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return nil, fmt.Errorf("%w: must be 16, 24, or 32 bytes, got %d", ErrInvalidKeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &aesCipher{gcm: gcm}, nil
}

// NewPBECipher returns an AES-GCM cipher keyed from passphrase and salt.
func NewPBECipher(passphrase, salt string) (Cipher, error) {
	return NewPBECipherWithParams(passphrase, salt, DefaultKeyParams())
}

// NewPBECipherWithParams is NewPBECipher with explicit key derivation parameters.
func NewPBECipherWithParams(passphrase, salt string, params KeyParams) (Cipher, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	key := argon2.IDKey([]byte(passphrase), []byte(salt), params.Time, params.Memory, params.Threads, params.KeyLen)
	return NewAESCipher(key)
}

func (c *aesCipher) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	// Prepend nonce to ciphertext
	return c.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (c *aesCipher) Decrypt(ciphertext []byte) ([]byte, error) {
	nonceSize := c.gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, ErrCiphertextShort
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := c.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}

	return plaintext, nil
}
