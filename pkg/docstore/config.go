package docstore

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Config holds everything needed to connect to a document store.
// Values come from DefaultConfig, then an optional YAML file, then environment variables.
type Config struct {
	ProjectID string       `yaml:"project_id" env:"PROJECT_ID"`
	Database  DatabaseSpec `yaml:"database"`

	// At most one credential source may be set. With none, Application Default
	// Credentials are used.
	CredentialsFile   string          `yaml:"credentials_file" env:"DOCSTORE_CREDENTIALS_FILE"`
	CredentialsSecret string          `yaml:"credentials_secret" env:"DOCSTORE_CREDENTIALS_SECRET"`
	Credentials       *ServiceAccount `yaml:"credentials"`

	EmulatorHost string `yaml:"emulator_host" env:"FIRESTORE_EMULATOR_HOST"`
	BatchSize    int    `yaml:"batch_size" env:"DOCSTORE_BATCH_SIZE"`
	LogLevel     string `yaml:"log_level" env:"LOG_LEVEL"`
}

// DefaultConfig returns a Config for the default database with default batching.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseSpec{
			DatabaseID: DefaultDatabaseID,
			LocationID: "nam5",
			Type:       DatabaseTypeNative,
		},
		BatchSize: DefaultBatchSize,
		LogLevel:  "info",
	}
}

// LoadConfig builds a Config from defaults, the YAML file at path (skipped when path is
// empty) and the environment, in that order of increasing precedence.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file '%s': %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration from environment: %w", err)
	}
	return cfg, nil
}

// ResolvedProjectID returns the configured project, falling back to the project_id of
// the inline service account or of the key file.
func (c *Config) ResolvedProjectID() string {
	if c.ProjectID != "" {
		return c.ProjectID
	}
	if c.Credentials != nil {
		return c.Credentials.ProjectID
	}
	if c.CredentialsFile != "" {
		if sa, err := ReadServiceAccountFile(c.CredentialsFile); err == nil {
			return sa.ProjectID
		}
	}
	return ""
}

// projectFromSecret reports whether the project can only be learned from the key held in
// a fully qualified credentials secret.
func (c *Config) projectFromSecret() bool {
	return c.CredentialsSecret != "" && strings.HasPrefix(c.CredentialsSecret, "projects/")
}

// Validate checks the configuration for missing or conflicting values.
func (c *Config) Validate() error {
	if c.ResolvedProjectID() == "" && !c.projectFromSecret() {
		return fmt.Errorf("%w: project_id is required (set it, or use credentials that carry one)", ErrInvalidArgument)
	}

	sources := 0
	for _, set := range []bool{c.CredentialsFile != "", c.CredentialsSecret != "", c.Credentials != nil} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return fmt.Errorf("%w: only one of credentials_file, credentials_secret and credentials may be set", ErrInvalidArgument)
	}

	if c.Credentials != nil {
		if err := c.Credentials.validate(); err != nil {
			return err
		}
	}
	if err := ValidateBatchSize(c.BatchSize); err != nil {
		return fmt.Errorf("invalid batch_size: %w", err)
	}
	return nil
}
