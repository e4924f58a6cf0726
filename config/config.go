// Package config loads server configuration from the environment,
// an optional .env file, and command-line overrides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration. A source whose URL or
// connection string is empty is disabled, not an error.
type Config struct {
	ERDAPIURL     string `env:"ERD_API_URL"`
	SwaggerAPIURL string `env:"SWAGGER_API_URL"`

	MongoURI        string `env:"MONGODB_URI"`
	MongoConnString string `env:"MONGODB_CONNECTION_STRING"`
	MongoDatabase   string `env:"MONGODB_DATABASE"`

	// Port selects the streamable HTTP transport when set.
	// Empty means stdio.
	Port     string `env:"PORT"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads .env (if present), applies --key value / --key=value
// overrides from args onto the environment, and parses the result.
func Load(args []string) (Config, error) {
	_ = godotenv.Load()

	if err := applyOverrides(args); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// ConnString returns the Mongo connection string, preferring
// MONGODB_URI over MONGODB_CONNECTION_STRING.
func (c Config) ConnString() string {
	if c.MongoURI != "" {
		return c.MongoURI
	}
	return c.MongoConnString
}

// Database returns the Mongo database name: the explicit override,
// else the path component of the connection string, else "test".
func (c Config) Database() string {
	if c.MongoDatabase != "" {
		return c.MongoDatabase
	}
	if name := databaseFromURI(c.ConnString()); name != "" {
		return name
	}
	return "test"
}

// applyOverrides maps flags like --erd-api-url onto ERD_API_URL and
// sets them in the process environment before the struct parse.
func applyOverrides(args []string) error {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			return fmt.Errorf("unexpected argument %q", arg)
		}

		key := strings.TrimPrefix(arg, "--")
		var value string
		if eq := strings.IndexByte(key, '='); eq >= 0 {
			key, value = key[:eq], key[eq+1:]
		} else {
			if i+1 >= len(args) {
				return fmt.Errorf("flag --%s is missing a value", key)
			}
			i++
			value = args[i]
		}
		if key == "" {
			return fmt.Errorf("malformed flag %q", arg)
		}

		envKey := strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		if err := os.Setenv(envKey, value); err != nil {
			return fmt.Errorf("set %s: %w", envKey, err)
		}
	}
	return nil
}

func databaseFromURI(uri string) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return strings.Trim(parsed.Path, "/")
}
