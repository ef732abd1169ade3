package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Storage.Driver != "memory" {
		t.Fatalf("driver = %q", cfg.Storage.Driver)
	}
	if cfg.Cache.Kind != "memory" || cfg.Cache.SubjectTTL != 2*time.Minute {
		t.Fatalf("cache defaults: %+v", cfg.Cache)
	}
	if cfg.Sync.ContactInfo == nil || !*cfg.Sync.ContactInfo {
		t.Fatal("sync.contact_info must default to true")
	}
	if cfg.Sync.Addresses == nil || !*cfg.Sync.Addresses {
		t.Fatal("sync.addresses must default to true")
	}
	shipping, billing := cfg.SyncOptionsClasses()
	if !shipping || !billing {
		t.Fatalf("address classes default = %v/%v, want both", shipping, billing)
	}
}

func TestLoad_YAMLAndExplicitFalse(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9999"
  read_timeout: 5s
storage:
  driver: postgres
  dsn: "postgres://u:p@h/db"
sync:
  contact_info: false
  address_classes: "billing"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9999" || cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("server: %+v", cfg.Server)
	}
	if cfg.Storage.Driver != "postgres" {
		t.Fatalf("driver = %q", cfg.Storage.Driver)
	}
	if cfg.Sync.ContactInfo == nil || *cfg.Sync.ContactInfo {
		t.Fatal("explicit contact_info: false must survive defaulting")
	}
	shipping, billing := cfg.SyncOptionsClasses()
	if shipping || !billing {
		t.Fatalf("classes = %v/%v, want billing only", shipping, billing)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("IDLINK_ADDR", ":7070")
	t.Setenv("IDLINK_STORAGE_DRIVER", "postgres")
	t.Setenv("IDLINK_DSN", "postgres://env/db")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Storage.Driver != "postgres" || cfg.Storage.DSN != "postgres://env/db" {
		t.Fatalf("storage: %+v", cfg.Storage)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
