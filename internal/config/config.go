package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dropDatabas3/idlink/internal/security/secretbox"
)

// encPrefix marks config values encrypted with the secretbox master key.
const encPrefix = "enc:"

type Config struct {
	App struct {
		// dev | staging | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Addr         string        `yaml:"addr"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Storage struct {
		// memory | postgres
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"` // may be enc:-prefixed
	} `yaml:"storage"`

	Cache struct {
		// off | memory | redis
		Kind       string        `yaml:"kind"`
		SubjectTTL time.Duration `yaml:"subject_ttl"`
		Redis      struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Sync struct {
		// nil means unset, which defaults to true
		ContactInfo *bool `yaml:"contact_info"`
		Addresses   *bool `yaml:"addresses"`
		// "shipping", "billing" or "shipping|billing"
		AddressClasses string `yaml:"address_classes"`
	} `yaml:"sync"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"` // may be enc:-prefixed
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"` // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
	} `yaml:"smtp"`
}

// Load reads the YAML config, applies defaults and env overrides, and
// decrypts enc:-prefixed secrets.
func Load(path string) (*Config, error) {
	var c Config

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	// env overrides
	if v := os.Getenv("IDLINK_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("IDLINK_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("IDLINK_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("IDLINK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.SubjectTTL <= 0 {
		c.Cache.SubjectTTL = 2 * time.Minute
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "idlink:"
	}
	if c.Sync.ContactInfo == nil {
		c.Sync.ContactInfo = boolPtr(true)
	}
	if c.Sync.Addresses == nil {
		c.Sync.Addresses = boolPtr(true)
	}
	if c.Sync.AddressClasses == "" {
		c.Sync.AddressClasses = "shipping|billing"
	}

	var err error
	if c.Storage.DSN, err = maybeDecrypt(c.Storage.DSN); err != nil {
		return nil, fmt.Errorf("storage.dsn: %w", err)
	}
	if c.SMTP.Password, err = maybeDecrypt(c.SMTP.Password); err != nil {
		return nil, fmt.Errorf("smtp.password: %w", err)
	}

	return &c, nil
}

func maybeDecrypt(v string) (string, error) {
	if !strings.HasPrefix(v, encPrefix) {
		return v, nil
	}
	return secretbox.Decrypt(strings.TrimPrefix(v, encPrefix))
}

func boolPtr(b bool) *bool { return &b }

// SyncOptionsClasses parses the configured address classes.
func (c *Config) SyncOptionsClasses() (shipping, billing bool) {
	for _, part := range strings.Split(c.Sync.AddressClasses, "|") {
		switch strings.TrimSpace(strings.ToLower(part)) {
		case "shipping":
			shipping = true
		case "billing":
			billing = true
		}
	}
	return
}
