package secretbox

import (
	"encoding/base64"
	"strings"
	"testing"
)

func testKey(t *testing.T) {
	t.Helper()
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	if err := UnsafeSetMasterKeyForTests(raw); err != nil {
		t.Fatalf("set test key: %v", err)
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	testKey(t)

	msg := "postgres://idlink:s3cret@db:5432/idlink ✓"
	ct, err := Encrypt(msg)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if !strings.Contains(ct, sep) {
		t.Fatalf("ciphertext %q missing separator", ct)
	}
	pt, err := Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if pt != msg {
		t.Fatalf("plaintext = %q, want %q", pt, msg)
	}
}

func TestEncrypt_NoncesDiffer(t *testing.T) {
	testKey(t)

	a, err := Encrypt("same input")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encrypt("same input")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("two encryptions of the same input must differ")
	}
}

func TestDecrypt_DetectsTamper(t *testing.T) {
	testKey(t)

	ct, err := Encrypt("top secret")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	parts := strings.Split(ct, sep)
	bs, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatal(err)
	}
	bs[0] ^= 0x01
	corrupted := parts[0] + sep + base64.StdEncoding.EncodeToString(bs)

	if _, err := Decrypt(corrupted); err == nil {
		t.Fatal("expected authentication error")
	}
}

func TestDecrypt_RejectsBadFormat(t *testing.T) {
	testKey(t)

	for _, ct := range []string{"", "onlyonepart", "a|b|c", "!!!|" + base64.StdEncoding.EncodeToString([]byte("x"))} {
		if _, err := Decrypt(ct); err == nil {
			t.Fatalf("Decrypt(%q): expected error", ct)
		}
	}
}
