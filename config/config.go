// Package config loads the connection and runtime settings of the
// spreadsheet data layer from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/ilcreatore32/godoo-spreadsheet"
)

// ErrMissingConfig is returned by Validate when required settings are empty.
var ErrMissingConfig = errors.New("config: missing required settings")

// Config is the file layout:
//
//	odoo:
//	  url: https://odoo.example.com
//	  db: prod
//	  username: admin
//	  password: secret
//	  skip_tls_verify: false
//	  auth_timeout: 6h
//	log:
//	  env: production
//	lang: fr_FR
type Config struct {
	Odoo Odoo   `yaml:"odoo"`
	Log  Log    `yaml:"log"`
	Lang string `yaml:"lang"`
}

type Odoo struct {
	URL           string        `yaml:"url"`
	DB            string        `yaml:"db"`
	Username      string        `yaml:"username"`
	Password      string        `yaml:"password"`
	SkipTLSVerify bool          `yaml:"skip_tls_verify"`
	AuthTimeout   time.Duration `yaml:"auth_timeout"`
}

type Log struct {
	Env godoo.LoggerEnv `yaml:"env"`
}

// Default returns the settings used when nothing else is provided.
func Default() Config {
	return Config{
		Odoo: Odoo{AuthTimeout: 6 * time.Hour},
		Log:  Log{Env: godoo.EnvProduction},
		Lang: "en_US",
	}
}

// Load reads the YAML file at path, when path is not empty, on top of the
// defaults and then applies the ODOO_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("ODOO_URL"); ok && v != "" {
		c.Odoo.URL = v
	}
	if v, ok := lookup("ODOO_DB"); ok && v != "" {
		c.Odoo.DB = v
	}
	if v, ok := lookup("ODOO_USERNAME"); ok && v != "" {
		c.Odoo.Username = v
	}
	if v, ok := lookup("ODOO_PASSWORD"); ok && v != "" {
		c.Odoo.Password = v
	}
	if v, ok := lookup("ODOO_SKIP_TLS_VERIFY"); ok {
		if skip, err := strconv.ParseBool(v); err == nil {
			c.Odoo.SkipTLSVerify = skip
		}
	}
}

// Validate checks that the connection settings are complete.
func (c Config) Validate() error {
	var missing []string
	if c.Odoo.URL == "" {
		missing = append(missing, "odoo.url")
	}
	if c.Odoo.DB == "" {
		missing = append(missing, "odoo.db")
	}
	if c.Odoo.Username == "" {
		missing = append(missing, "odoo.username")
	}
	if c.Odoo.Password == "" {
		missing = append(missing, "odoo.password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// ClientOptions maps the settings to godoo client options.
func (c Config) ClientOptions() []godoo.Option {
	opts := []godoo.Option{
		godoo.WithSkipTLSVerify(c.Odoo.SkipTLSVerify),
		godoo.WithLoggerEnv(c.Log.Env),
	}
	if c.Odoo.AuthTimeout > 0 {
		opts = append(opts, godoo.WithAuthTimeout(c.Odoo.AuthTimeout))
	}
	return opts
}

// NewClient validates the settings and builds the Odoo client.
func (c Config) NewClient() (*godoo.OdooClient, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return godoo.New(c.Odoo.URL, c.Odoo.DB, c.Odoo.Username, c.Odoo.Password, c.ClientOptions()...)
}
