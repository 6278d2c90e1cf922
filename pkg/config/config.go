// Package config contains the configuration of the shipping oracle daemon.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Version is the version of the oracle daemon, set at build time.
var Version string

const (
	defaultPollInterval   = 5 * time.Minute
	defaultChainTimeout   = 15 * time.Second
	defaultCarrierTimeout = 30 * time.Second
)

type (
	// Config is the top-level daemon configuration.
	Config struct {
		// OracleAddress is the script address holding tracking UTxOs.
		OracleAddress string `yaml:"OracleAddress"`
		// OracleKey is the hex-encoded ed25519 signing key seed.
		OracleKey string `yaml:"OracleKey"`
		// OraclePKH is the hex-encoded oracle verification key hash. When
		// empty it is derived from OracleKey at startup.
		OraclePKH string `yaml:"OraclePKH"`
		// PaymentAddress receives change from closing transactions.
		PaymentAddress string `yaml:"PaymentAddress"`
		// ValidatorScriptRef locates the validator reference script
		// ("<txhash>#<index>").
		ValidatorScriptRef string `yaml:"ValidatorScriptRef"`

		PollInterval Duration `yaml:"PollInterval"`

		Blockfrost BlockfrostConfig `yaml:"Blockfrost"`
		TRP        TRPConfig        `yaml:"TRP"`
		Shippo     ShippoConfig     `yaml:"Shippo"`
		Logging    LoggingConfig    `yaml:"Logging"`
		Metrics    BasicService     `yaml:"Metrics"`
	}

	// BlockfrostConfig configures the chain indexer endpoint used both for
	// UTxO queries and transaction submission.
	BlockfrostConfig struct {
		URL            string   `yaml:"URL"`
		ProjectID      string   `yaml:"ProjectID"`
		RequestTimeout Duration `yaml:"RequestTimeout"`
	}

	// TRPConfig configures the transaction resolve protocol endpoint that
	// builds unsigned closing transactions.
	TRPConfig struct {
		URL            string   `yaml:"URL"`
		APIKey         string   `yaml:"APIKey"`
		RequestTimeout Duration `yaml:"RequestTimeout"`
	}

	// ShippoConfig configures the carrier tracking API.
	ShippoConfig struct {
		APIKey         string   `yaml:"APIKey"`
		RequestTimeout Duration `yaml:"RequestTimeout"`
	}

	// LoggingConfig contains logging-related settings.
	LoggingConfig struct {
		Level string `yaml:"Level"`
	}

	// BasicService is used for simple services like metrics.
	BasicService struct {
		Enabled bool   `yaml:"Enabled"`
		Address string `yaml:"Address"`
	}
)

// Load reads and validates the daemon configuration from the given path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}

	cfg := Config{
		PollInterval: Duration(defaultPollInterval),
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("unable to unmarshal config YAML: %w", err)
	}

	if cfg.Blockfrost.RequestTimeout <= 0 {
		cfg.Blockfrost.RequestTimeout = Duration(defaultChainTimeout)
	}
	if cfg.TRP.RequestTimeout <= 0 {
		cfg.TRP.RequestTimeout = Duration(defaultChainTimeout)
	}
	if cfg.Shippo.RequestTimeout <= 0 {
		cfg.Shippo.RequestTimeout = Duration(defaultCarrierTimeout)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = Duration(defaultPollInterval)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that all required fields are set and well-formed.
func (c Config) Validate() error {
	required := []struct {
		name, value string
	}{
		{"OracleAddress", c.OracleAddress},
		{"OracleKey", c.OracleKey},
		{"PaymentAddress", c.PaymentAddress},
		{"ValidatorScriptRef", c.ValidatorScriptRef},
		{"Blockfrost.URL", c.Blockfrost.URL},
		{"TRP.URL", c.TRP.URL},
		{"Shippo.APIKey", c.Shippo.APIKey},
	}
	for _, f := range required {
		if f.value == "" {
			return fmt.Errorf("%s is not set", f.name)
		}
	}

	key, err := hex.DecodeString(c.OracleKey)
	if err != nil {
		return fmt.Errorf("OracleKey is not a hex string: %w", err)
	}
	if len(key) != 32 {
		return fmt.Errorf("OracleKey must be 32 bytes, got %d", len(key))
	}
	if c.OraclePKH != "" {
		pkh, err := hex.DecodeString(c.OraclePKH)
		if err != nil {
			return fmt.Errorf("OraclePKH is not a hex string: %w", err)
		}
		if len(pkh) != 28 {
			return fmt.Errorf("OraclePKH must be 28 bytes, got %d", len(pkh))
		}
	}
	return nil
}
