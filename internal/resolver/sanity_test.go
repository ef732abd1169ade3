package resolver

import (
	"testing"

	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/identity"
)

func TestNameChecker(t *testing.T) {
	cases := []struct {
		name    string
		contact *repository.Contact
		given   string
		family  string
		want    bool
	}{
		{"exact match", &repository.Contact{FirstName: "Ola", LastName: "Nordmann"}, "Ola", "Nordmann", true},
		{"case insensitive", &repository.Contact{FirstName: "OLA", LastName: "nordmann"}, "ola", "NORDMANN", true},
		{"given name differs", &repository.Contact{FirstName: "Kari", LastName: "Nordmann"}, "Ola", "Nordmann", false},
		{"family name differs", &repository.Contact{FirstName: "Ola", LastName: "Hansen"}, "Ola", "Nordmann", false},
		{"identity names absent", &repository.Contact{FirstName: "", LastName: ""}, "", "", false},
		{"only given name present", &repository.Contact{FirstName: "Ola"}, "Ola", "", false},
		{"nil contact", nil, "Ola", "Nordmann", false},
	}

	checker := NameChecker{}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ident := &identity.ProviderIdentity{GivenName: tc.given, FamilyName: tc.family}
			if got := checker.IsValidMatch(tc.contact, ident); got != tc.want {
				t.Fatalf("IsValidMatch = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNameChecker_NilIdentity(t *testing.T) {
	checker := NameChecker{}
	if checker.IsValidMatch(&repository.Contact{FirstName: "Ola"}, nil) {
		t.Fatal("nil identity must never match")
	}
}
