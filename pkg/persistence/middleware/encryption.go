package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/aretw0/skury/pkg/ports"
)

// envelopePrefix marks a value written by the encryption middleware.
const envelopePrefix = "enc:v1:"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte

	// Keys restricts encryption to these preference keys. Empty means every key.
	Keys []string
}

type encryptionMiddleware struct {
	next   ports.PreferenceStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts preference values using AES-GCM.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.PreferenceStore) ports.PreferenceStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) covers(key string) bool {
	return len(m.config.Keys) == 0 || slices.Contains(m.config.Keys, key)
}

func (m *encryptionMiddleware) Set(ctx context.Context, items map[string]string) error {
	sealed := make(map[string]string, len(items))
	for k, v := range items {
		if !m.covers(k) {
			sealed[k] = v
			continue
		}
		ciphertext, err := encrypt([]byte(v), m.config.ActiveKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt preference %q: %w", k, err)
		}
		sealed[k] = envelopePrefix + base64.StdEncoding.EncodeToString(ciphertext)
	}
	return m.next.Set(ctx, sealed)
}

func (m *encryptionMiddleware) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	stored, err := m.next.Get(ctx, keys...)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string, len(stored))
	for k, v := range stored {
		if !m.covers(k) {
			out[k] = v
			continue
		}
		encoded, ok := strings.CutPrefix(v, envelopePrefix)
		if !ok {
			// Fail secure: a covered key must never be served in plain text.
			return nil, fmt.Errorf("preference %q is missing encrypted data envelope", k)
		}
		ciphertext, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
		}
		plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt preference %q: %w", k, err)
		}
		out[k] = string(plainText)
	}
	return out, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, keys ...string) error {
	return m.next.Delete(ctx, keys...)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
