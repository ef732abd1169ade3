// Package secretbox encrypts config secrets (DSNs, SMTP passwords) at
// rest. Values prefixed with "enc:" in the YAML config are decrypted on
// load using the master key from SECRETBOX_MASTER_KEY.
package secretbox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	envVar            = "SECRETBOX_MASTER_KEY"
	nonceSize         = 24
	requiredKeyLength = 32
	sep               = "|" // base64(nonce)|base64(ciphertext)
)

var (
	masterKey     [requiredKeyLength]byte
	keyLoaded     bool
	masterKeyOnce sync.Once
	loadErr       error
	mu            sync.RWMutex
)

// ensureLoaded reads the master key from the environment exactly once.
func ensureLoaded() error {
	masterKeyOnce.Do(func() {
		kb64 := strings.TrimSpace(os.Getenv(envVar))
		if kb64 == "" {
			loadErr = fmt.Errorf("%s not set; generate one with: openssl rand -base64 32", envVar)
			return
		}
		k, err := base64.StdEncoding.DecodeString(kb64)
		if err != nil {
			loadErr = fmt.Errorf("decode %s: %w", envVar, err)
			return
		}
		if len(k) != requiredKeyLength {
			loadErr = fmt.Errorf("%s must decode to %d bytes, got %d", envVar, requiredKeyLength, len(k))
			return
		}
		mu.Lock()
		copy(masterKey[:], k)
		keyLoaded = true
		mu.Unlock()
	})
	return loadErr
}

// Ready reports whether a usable master key is available. Useful for
// config validation before the first decrypt.
func Ready() bool {
	if err := ensureLoaded(); err != nil {
		return false
	}
	mu.RLock()
	defer mu.RUnlock()
	return keyLoaded
}

// Encrypt seals plainText and returns base64(nonce)|base64(ciphertext).
func Encrypt(plainText string) (string, error) {
	if err := ensureLoaded(); err != nil {
		return "", err
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}

	mu.RLock()
	key := masterKey
	mu.RUnlock()

	ct := secretbox.Seal(nil, []byte(plainText), &nonce, &key)
	return base64.StdEncoding.EncodeToString(nonce[:]) + sep +
		base64.StdEncoding.EncodeToString(ct), nil
}

// Decrypt opens base64(nonce)|base64(ciphertext) and returns the
// plaintext.
func Decrypt(cipherText string) (string, error) {
	if err := ensureLoaded(); err != nil {
		return "", err
	}

	parts := strings.Split(cipherText, sep)
	if len(parts) != 2 {
		return "", errors.New("invalid format: expected base64(nonce)|base64(ciphertext)")
	}
	nonceRaw, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("decode nonce: %w", err)
	}
	if len(nonceRaw) != nonceSize {
		return "", fmt.Errorf("invalid nonce: expected %d bytes, got %d", nonceSize, len(nonceRaw))
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}

	var nonce [nonceSize]byte
	copy(nonce[:], nonceRaw)

	mu.RLock()
	key := masterKey
	mu.RUnlock()

	pt, ok := secretbox.Open(nil, ct, &nonce, &key)
	if !ok {
		return "", errors.New("secretbox: authentication failed")
	}
	return string(pt), nil
}

// UnsafeSetMasterKeyForTests installs a raw 32-byte key. Tests only.
func UnsafeSetMasterKeyForTests(k []byte) error {
	if len(k) != requiredKeyLength {
		return fmt.Errorf("test key must be %d bytes", requiredKeyLength)
	}
	masterKeyOnce = sync.Once{}
	loadErr = nil
	mu.Lock()
	copy(masterKey[:], k)
	keyLoaded = true
	mu.Unlock()
	masterKeyOnce.Do(func() {})
	return nil
}
