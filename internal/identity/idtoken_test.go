package identity

import (
	"testing"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestDecodeToken(t *testing.T) {
	sub := uuid.NewString()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": "ola@example.com",
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := DecodeToken(raw)
	if err != nil {
		t.Fatalf("DecodeToken: %v", err)
	}
	if claims["sub"] != sub || claims["email"] != "ola@example.com" {
		t.Fatalf("claims = %v", claims)
	}
}

func TestDecodeToken_Garbage(t *testing.T) {
	for _, raw := range []string{"", "not.a", "a.b.c"} {
		if _, err := DecodeToken(raw); err == nil {
			t.Fatalf("DecodeToken(%q): expected error", raw)
		}
	}
}
