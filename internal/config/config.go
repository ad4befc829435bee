// Package config loads the shared YAML configuration used by both the
// server and the one-shot report generator. Values may reference
// environment variables with ${VAR} syntax, which keeps credentials out of
// the file itself.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/devsecops-monitor/monitor/internal/format"
	"github.com/devsecops-monitor/monitor/internal/session"
)

// User is one dashboard login.
type User struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"` // bcrypt
}

// Config is the full configuration tree.
type Config struct {
	Jenkins struct {
		URL      string `yaml:"url"`
		Username string `yaml:"username"`
		APIToken string `yaml:"api_token"`
		Job      string `yaml:"job"`
	} `yaml:"jenkins"`

	SonarQube struct {
		URL        string   `yaml:"url"`
		Token      string   `yaml:"token"`
		ProjectKey string   `yaml:"project_key"`
		MetricKeys []string `yaml:"metric_keys"`
	} `yaml:"sonarqube"`

	ArgoCD struct {
		URL      string `yaml:"url"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Insecure bool   `yaml:"insecure"`
	} `yaml:"argocd"`

	Auth struct {
		Users      []User `yaml:"users"`
		SessionTTL string `yaml:"session_ttl"` // e.g. "24h"
	} `yaml:"auth"`

	Report struct {
		WorkdayHours int `yaml:"workday_hours"`
	} `yaml:"report"`

	S3 struct {
		Endpoint  string `yaml:"endpoint"`
		Region    string `yaml:"region"`
		Bucket    string `yaml:"bucket"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Prefix    string `yaml:"prefix"`
	} `yaml:"s3"`
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// envRef matches ${VAR} references. Bare $VAR is deliberately not expanded
// so that bcrypt hashes and other dollar-bearing values survive untouched.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Parse parses raw YAML config bytes, expanding ${VAR} references first.
func Parse(data []byte) (*Config, error) {
	expanded := envRef.ReplaceAllStringFunc(string(data), func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Report.WorkdayHours <= 0 {
		cfg.Report.WorkdayHours = format.DefaultWorkdayHours
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = "us-east-1"
	}
	if cfg.Auth.SessionTTL != "" {
		if _, err := time.ParseDuration(cfg.Auth.SessionTTL); err != nil {
			return nil, fmt.Errorf("parse auth.session_ttl: %w", err)
		}
	}
	return &cfg, nil
}

// SessionTTL returns the configured session TTL, defaulting to 24h.
func (c *Config) SessionTTL() time.Duration {
	if c.Auth.SessionTTL == "" {
		return session.DefaultTTL
	}
	ttl, err := time.ParseDuration(c.Auth.SessionTTL)
	if err != nil || ttl <= 0 {
		return session.DefaultTTL
	}
	return ttl
}
