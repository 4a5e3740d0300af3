package store

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	// keyInfo is the HKDF context string for the value-sealing key.
	keyInfo = "levo-secure-store-v1"

	secretSize = 32
)

// ErrCiphertextTooShort is returned when a stored blob cannot hold a nonce.
var ErrCiphertextTooShort = errors.New("ciphertext too short")

// newAEAD derives the sealing key from secret with HKDF-SHA256 and builds
// an XChaCha20-Poly1305 AEAD.
func newAEAD(secret []byte) (cipher.AEAD, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty store secret")
	}
	h := hkdf.New(sha256.New, secret, nil, []byte(keyInfo))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(h, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return chacha20poly1305.NewX(key)
}

// seal encrypts plaintext with a random nonce prefix. The record key is
// bound as associated data so blobs cannot be swapped between keys.
func seal(aead cipher.AEAD, key string, plaintext []byte) ([]byte, error) {
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, []byte(key)), nil
}

func open(aead cipher.AEAD, key string, blob []byte) ([]byte, error) {
	ns := aead.NonceSize()
	if len(blob) < ns {
		return nil, ErrCiphertextTooShort
	}
	return aead.Open(nil, blob[:ns], blob[ns:], []byte(key))
}

// LoadOrCreateSecret reads the key file at path, creating it with 32
// random bytes (mode 0600) on first use.
func LoadOrCreateSecret(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err == nil {
		if len(b) < secretSize {
			return nil, fmt.Errorf("key file %s is truncated", path)
		}
		return b, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	if err := EnsureDir(path); err != nil {
		return nil, fmt.Errorf("create key dir: %w", err)
	}
	secret := make([]byte, secretSize)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	return secret, nil
}

// SecretPath returns the key file location for the database at dbPath.
func SecretPath(dbPath string) string {
	return dbPath + ".key"
}
