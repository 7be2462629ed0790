package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
)

const (
	OracleSimulated = "simulated"
	OracleOpenAI    = "openai"

	JournalNone     = "none"
	JournalMySQL    = "mysql"
	JournalPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port        int               `yaml:"port"`
		APIKeys     map[string]string `yaml:"apiKeys"`
		CORSOrigins []string          `yaml:"corsOrigins"`
		RateLimit   struct {
			Capacity   int `yaml:"capacity"`
			RefillRate int `yaml:"refillRate"`
		} `yaml:"rateLimit"`
	} `yaml:"server"`

	// Checks kosong → pakai katalog bawaan
	Checks   []domain.CheckDefinition `yaml:"checks"`
	Features []domain.Feature         `yaml:"features"`

	Oracle struct {
		Kind    string        `yaml:"kind"`
		Delay   time.Duration `yaml:"delay"`
		Seed    int64         `yaml:"seed"`
		Timeout time.Duration `yaml:"timeout"`
		OpenAI  struct {
			APIKey string `yaml:"apiKey"`
			Model  string `yaml:"model"`
		} `yaml:"openai"`
	} `yaml:"oracle"`

	Journal struct {
		Driver   string `yaml:"driver"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"journal"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		Prefix     string `yaml:"prefix"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Load baca file config.yaml
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes yaml, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a config with every default applied, used when no file exists.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimit.Capacity == 0 {
		c.Server.RateLimit.Capacity = 60
	}
	if c.Server.RateLimit.RefillRate == 0 {
		c.Server.RateLimit.RefillRate = 1
	}
	if c.Oracle.Kind == "" {
		c.Oracle.Kind = OracleSimulated
	}
	if c.Oracle.Delay == 0 {
		c.Oracle.Delay = 2500 * time.Millisecond
	}
	if c.Oracle.Timeout == 0 {
		c.Oracle.Timeout = 30 * time.Second
	}
	if c.Oracle.OpenAI.APIKey == "" {
		c.Oracle.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Journal.Driver == "" {
		c.Journal.Driver = JournalNone
	}
	if c.Journal.Port == 0 {
		switch c.Journal.Driver {
		case JournalMySQL:
			c.Journal.Port = 3306
		case JournalPostgres:
			c.Journal.Port = 5432
		}
	}
	if c.Journal.SSLMode == "" {
		c.Journal.SSLMode = "disable"
	}
	if c.Minio.Region == "" {
		c.Minio.Region = "us-east-1"
	}
}

// Validate cek kombinasi config yang tidak masuk akal
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.RateLimit.Capacity < 0 || c.Server.RateLimit.RefillRate < 0 {
		errs = append(errs, errors.New("server.rateLimit values must not be negative"))
	}
	switch c.Oracle.Kind {
	case OracleSimulated:
	case OracleOpenAI:
		if c.Oracle.OpenAI.APIKey == "" {
			errs = append(errs, errors.New("oracle.openai.apiKey is required for the openai oracle"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown oracle.kind %q", c.Oracle.Kind))
	}
	if c.Oracle.Delay < 0 || c.Oracle.Timeout < 0 {
		errs = append(errs, errors.New("oracle.delay and oracle.timeout must not be negative"))
	}
	switch c.Journal.Driver {
	case JournalNone:
	case JournalMySQL, JournalPostgres:
		if c.Journal.Host == "" || c.Journal.Name == "" {
			errs = append(errs, fmt.Errorf("journal.host and journal.name are required for driver %s", c.Journal.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown journal.driver %q", c.Journal.Driver))
	}
	if c.Minio.Endpoint != "" && c.Minio.BucketName == "" {
		errs = append(errs, errors.New("minio.bucketName is required when minio.endpoint is set"))
	}
	seen := make(map[domain.CheckID]bool, len(c.Checks))
	for _, d := range c.Checks {
		if d.ID == "" {
			errs = append(errs, errors.New("checks: id must not be empty"))
			continue
		}
		if !d.ID.URLSafe() {
			errs = append(errs, fmt.Errorf("checks: id %q must be lowercase alphanumeric, dash or underscore", d.ID))
		}
		if seen[d.ID] {
			errs = append(errs, fmt.Errorf("checks: duplicate id %q", d.ID))
		}
		seen[d.ID] = true
	}
	return errors.Join(errs...)
}

// Definitions returns the configured catalog, or the built-in one when none is set.
func (c *Config) Definitions() []domain.CheckDefinition {
	if len(c.Checks) == 0 {
		return domain.DefaultCatalog()
	}
	out := make([]domain.CheckDefinition, len(c.Checks))
	copy(out, c.Checks)
	return out
}

func (c *Config) FeatureList() []domain.Feature {
	if len(c.Features) == 0 {
		return domain.DefaultFeatures()
	}
	out := make([]domain.Feature, len(c.Features))
	copy(out, c.Features)
	return out
}

func (c *Config) ArchiveEnabled() bool {
	return c.Minio.Endpoint != ""
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Journal.User,
		c.Journal.Password,
		c.Journal.Host,
		c.Journal.Port,
		c.Journal.Name,
	)
}

// Helper untuk build DSN Postgres (lib/pq)
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Journal.Host,
		c.Journal.Port,
		c.Journal.User,
		c.Journal.Password,
		c.Journal.Name,
		c.Journal.SSLMode,
	)
}
