// Package config loads the application configuration from a TOML file
// and applies defaults so the server and CLI run without one.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/kolamstudio/kolamstudio/pkg/errors"
	"github.com/kolamstudio/kolamstudio/pkg/eval"
	"github.com/kolamstudio/kolamstudio/pkg/kolam"
)

// Config is the full application configuration.
type Config struct {
	Server    Server    `toml:"server"`
	Mongo     Mongo     `toml:"mongo"`
	Redis     Redis     `toml:"redis"`
	Evaluator Evaluator `toml:"evaluator"`
	Generator Generator `toml:"generator"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string   `toml:"addr"`
	ReadTimeout     duration `toml:"read_timeout"`
	WriteTimeout    duration `toml:"write_timeout"`
	ShutdownTimeout duration `toml:"shutdown_timeout"`
}

// Mongo configures the post store. An empty URI selects the in-memory
// store, which is what the CLI and tests use.
type Mongo struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Redis configures the render cache. An empty address disables it and
// renders are cached on disk instead.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Evaluator configures the external evaluation service. An empty URL
// disables the evaluate endpoint.
type Evaluator struct {
	URL     string   `toml:"url"`
	Timeout duration `toml:"timeout"`
}

// Generator configures default render output.
type Generator struct {
	ImageWidth  int    `toml:"image_width"`
	ImageHeight int    `toml:"image_height"`
	Theme       string `toml:"theme"`
}

// duration lets TOML carry values like "30s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     duration{15 * time.Second},
			WriteTimeout:    duration{30 * time.Second},
			ShutdownTimeout: duration{10 * time.Second},
		},
		Mongo: Mongo{
			Database: "kolamstudio",
		},
		Evaluator: Evaluator{
			Timeout: duration{eval.DefaultTimeout},
		},
		Generator: Generator{
			ImageWidth:  kolam.DefaultImageWidth,
			ImageHeight: kolam.DefaultImageHeight,
			Theme:       kolam.DefaultTheme,
		},
	}
}

// Load reads the TOML file at path on top of the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read config file %s", path)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "server.addr must not be empty")
	}
	if c.Generator.ImageWidth <= 0 || c.Generator.ImageHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidInput,
			"generator image dimensions must be positive, got %dx%d",
			c.Generator.ImageWidth, c.Generator.ImageHeight)
	}
	if _, err := kolam.ThemeByName(c.Generator.Theme); err != nil {
		return err
	}
	if c.Mongo.URI != "" && c.Mongo.Database == "" {
		return errors.New(errors.ErrCodeInvalidInput, "mongo.database must be set when mongo.uri is")
	}
	return nil
}
