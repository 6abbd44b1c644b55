package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/skury/pkg/domain"
	"github.com/aretw0/skury/pkg/persistence/middleware"
	"github.com/aretw0/skury/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := NewMockStore()
	key := generateKey(t)
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: key,
		Keys:      []string{domain.KeyAPICredential},
	})
	secureStore := mw(underlyingStore)
	ctx := context.Background()

	err := secureStore.Set(ctx, map[string]string{
		domain.KeyAPICredential: "AIza-secret",
		domain.KeyTheme:         "light",
	})
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// The underlying store must never see the credential in plain text.
	raw := underlyingStore.data[domain.KeyAPICredential]
	if strings.Contains(raw, "AIza-secret") {
		t.Fatalf("Expected credential to be hidden, found: %v", raw)
	}
	if !strings.HasPrefix(raw, "enc:v1:") {
		t.Fatalf("Expected envelope prefix, got %q", raw)
	}
	if underlyingStore.data[domain.KeyTheme] != "light" {
		t.Errorf("Uncovered keys should pass through, got %q", underlyingStore.data[domain.KeyTheme])
	}

	loaded, err := secureStore.Get(ctx, domain.KeyAPICredential, domain.KeyTheme)
	if err != nil {
		t.Fatalf("Get via middleware failed: %v", err)
	}
	if loaded[domain.KeyAPICredential] != "AIza-secret" {
		t.Errorf("Expected 'AIza-secret', got %v", loaded[domain.KeyAPICredential])
	}
	if loaded[domain.KeyTheme] != "light" {
		t.Errorf("Expected 'light', got %v", loaded[domain.KeyTheme])
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := NewMockStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	secureStoreOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)
	if err := secureStoreOld.Set(ctx, map[string]string{"data": "encrypted-with-old-key"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	secureStoreNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	loaded, err := secureStoreNew.Get(ctx, "data")
	if err != nil {
		t.Fatalf("Get with rotated key failed: %v", err)
	}
	if loaded["data"] != "encrypted-with-old-key" {
		t.Errorf("Decryption with fallback key failed")
	}

	if err := secureStoreNew.Set(ctx, map[string]string{"data": "encrypted-with-new-key"}); err != nil {
		t.Fatalf("Set with new key failed: %v", err)
	}

	if _, err := secureStoreOld.Get(ctx, "data"); err == nil {
		t.Error("Expected failure when loading new-key encryption with old-key middleware")
	}
}

func TestEncryptionMiddleware_PlainValueFailsSecure(t *testing.T) {
	underlyingStore := NewMockStore()
	underlyingStore.data["token"] = "plain"

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	if _, err := secureStore.Get(context.Background(), "token"); err == nil {
		t.Error("Expected an error for a covered key stored without envelope")
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic for invalid key size")
		}
	}()
	middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(NewMockStore())
	ports.RunPreferenceStoreContract(t, store)
}
