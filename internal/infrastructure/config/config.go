package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Placement     PlacementConfig     `mapstructure:"placement"`
	Assignment    AssignmentConfig    `mapstructure:"assignment"`
	SwapPolicy    SwapPolicyConfig    `mapstructure:"swap_policy"`
	ServicePolicy ServicePolicyConfig `mapstructure:"service_policy"`
	Costs         CostsConfig         `mapstructure:"costs"`
	Performance   PerformanceConfig   `mapstructure:"performance"`
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Data          DataConfig          `mapstructure:"data"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (fleetopt.json)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()

	// Set config file details
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("fleetopt")
		v.SetConfigType("json")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/fleetopt")
	}

	// Enable environment variable reading
	v.SetEnvPrefix("FLEETOPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Viper only resolves environment variables for keys it already knows,
	// so the full default table is registered up front. This also keeps an
	// explicit zero in a config file distinguishable from an absent key.
	setViperDefaults(v)

	// Read config file (optional - don't error if missing)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - we'll use env vars and defaults
	}

	// A typo in a config file must not silently fall back to a default.
	if file := v.ConfigFileUsed(); file != "" {
		if err := checkConfigFileKeys(file); err != nil {
			return nil, err
		}
	}

	// Special handling for DATABASE_URL environment variable
	// This allows users to set the full connection string without FLEETOPT_ prefix
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.dsn", dbURL)
		if strings.HasPrefix(dbURL, "postgres") {
			v.Set("database.driver", "postgres")
		}
	}

	// Create config struct and unmarshal
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Backstop structural fields (algorithm options keep whatever the
	// sources said; zero is a legitimate value for most of them)
	SetDefaults(&cfg)

	// Validate configuration
	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// checkConfigFileKeys re-reads the config file in isolation and rejects any
// key that does not map onto a Config field.
func checkConfigFileKeys(path string) error {
	raw := viper.New()
	raw.SetConfigFile(path)
	if err := raw.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var scratch Config
	if err := decodeStrict(raw.AllSettings(), &scratch); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}
	return nil
}

// LoadConfigOrDefault loads configuration or returns the documented defaults on error
func LoadConfigOrDefault(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// MustLoadConfig loads configuration and panics on error (for use in main.go)
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
