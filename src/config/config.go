package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"stock-forecaster/src/models"

	"github.com/caarlos0/env/v11"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// envOverrides are applied on top of the YAML file. Unset variables leave the
// file value untouched.
type envOverrides struct {
	Host          *string `env:"SF_HOST"`
	Port          *int    `env:"SF_PORT"`
	GrpcPort      *int    `env:"SF_GRPC_PORT"`
	LogLevel      *string `env:"SF_LOG_LEVEL"`
	LogFormat     *string `env:"SF_LOG_FORMAT"`
	CacheBackend  *string `env:"SF_CACHE_BACKEND"`
	RedisHost     *string `env:"SF_REDIS_HOST"`
	RedisPort     *int    `env:"SF_REDIS_PORT"`
	RedisPassword *string `env:"SF_REDIS_PASSWORD"`
	StartDate     *string `env:"SF_START_DATE"`
	EODHDKey      *string `env:"EODHD_API_KEY"`
}

var validate = validator.New()

// -----------------------------------------------------------------------------

// NewConfig builds the configuration from an optional YAML file, struct
// defaults and environment overrides, in that order. An empty path skips the
// file.
func NewConfig(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var modelConfig models.MConfig
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, &modelConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
		}
	}

	if err := defaults.Set(&modelConfig); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	config := &Config{MConfig: &modelConfig}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	config.fillCollections()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

func (c *Config) applyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("failed to parse environment overrides: %w", err)
	}

	setString(&c.Host, o.Host)
	setInt(&c.Port, o.Port)
	setInt(&c.GrpcPort, o.GrpcPort)
	setString(&c.LogFormat, o.LogFormat)
	setString(&c.Cache.Backend, o.CacheBackend)
	setString(&c.Cache.RedisHost, o.RedisHost)
	setInt(&c.Cache.RedisPort, o.RedisPort)
	setString(&c.Cache.RedisPassword, o.RedisPassword)
	setString(&c.DataSource.StartDate, o.StartDate)
	if o.LogLevel != nil {
		c.LogLevel = strings.ToUpper(*o.LogLevel)
	}

	if o.EODHDKey != nil && *o.EODHDKey != "" {
		found := false
		for i := range c.DataSource.Sources {
			if c.DataSource.Sources[i].Name == "eodhd" {
				c.DataSource.Sources[i].APIKey = *o.EODHDKey
				found = true
			}
		}
		if !found {
			c.fillCollections()
			c.DataSource.Sources = append(c.DataSource.Sources, models.MSourceConfig{Name: "eodhd", APIKey: *o.EODHDKey})
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// fillCollections supplies the list defaults struct tags cannot express.
func (c *Config) fillCollections() {
	if len(c.DataSource.Sources) == 0 {
		c.DataSource.Sources = []models.MSourceConfig{{Name: "yahoo"}, {Name: "stooq"}}
	}
	if len(c.UI.Instruments) == 0 {
		c.UI.Instruments = models.DefaultInstruments()
	}
}

// -----------------------------------------------------------------------------

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// -----------------------------------------------------------------------------

// Validate checks struct tags, then the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c.MConfig); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid value %v for %s (rule %s)", fe.Value(), fe.Namespace(), fe.Tag())
		}
		return err
	}

	f := c.Forecast
	if f.DefaultYears < f.MinYears || f.DefaultYears > f.MaxYears {
		return fmt.Errorf("default years %d outside [%d, %d]", f.DefaultYears, f.MinYears, f.MaxYears)
	}
	if c.GrpcPort != 0 && c.GrpcPort == c.Port {
		return fmt.Errorf("grpc port %d collides with http port", c.GrpcPort)
	}

	seen := make(map[string]bool)
	for _, src := range c.DataSource.Sources {
		if seen[src.Name] {
			return fmt.Errorf("data source '%s' listed twice", src.Name)
		}
		seen[src.Name] = true
		if src.Name == "eodhd" && src.APIKey == "" {
			return fmt.Errorf("data source 'eodhd' requires an api key")
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
