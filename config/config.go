// Package config loads clpost settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mastercactapus/clpost/post"
)

// Config holds every setting the command line can also provide.
type Config struct {
	Extension  string `toml:"extension"`
	NumStart   int    `toml:"num_start"`
	NumStep    int    `toml:"num_step"`
	NoComments bool   `toml:"no_comments"`
	Force      bool   `toml:"force"`
	Recursive  bool   `toml:"recursive"`

	Grbl  GrblConfig  `toml:"grbl"`
	SPJS  SPJSConfig  `toml:"spjs"`
	Serve ServeConfig `toml:"serve"`
}

// GrblConfig selects a directly attached Grbl controller.
type GrblConfig struct {
	Port string `toml:"port"`
	Baud int    `toml:"baud"`
}

// SPJSConfig selects a port behind a Serial Port JSON Server.
type SPJSConfig struct {
	URL  string `toml:"url"`
	Port string `toml:"port"`
}

// ServeConfig configures the HTTP API.
type ServeConfig struct {
	Addr string `toml:"addr"`
	Dir  string `toml:"dir"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Extension: post.DefaultExtension,
		NumStart:  1,
		NumStep:   1,
		Grbl:      GrblConfig{Baud: 115200},
		Serve:     ServeConfig{Addr: ":9091", Dir: "./data"},
	}
}

// Load reads name over the defaults. An empty name returns the defaults.
func Load(name string) (*Config, error) {
	cfg := Default()
	if name == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(name, cfg)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", name, err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return nil, fmt.Errorf("load config %s: unknown key %s", name, undec[0])
	}
	return cfg, cfg.Validate()
}

// Validate checks the values the translator depends on.
func (c *Config) Validate() error {
	if err := c.Options().Validate(); err != nil {
		return err
	}
	if c.Extension == "" {
		return errors.New("file extension must not be empty")
	}
	if strings.ContainsAny(c.Extension, `/\`) || strings.ContainsRune(c.Extension, os.PathSeparator) {
		return errors.New("file extension must not contain a path separator")
	}
	return nil
}

// Options returns the translation options for c.
func (c *Config) Options() post.Options {
	return post.Options{
		LineStart:  c.NumStart,
		LineStep:   c.NumStep,
		NoComments: c.NoComments,
	}
}

// DirOptions returns the directory translation options for c.
func (c *Config) DirOptions() post.DirOptions {
	return post.DirOptions{
		Options:   c.Options(),
		Extension: c.Extension,
		Force:     c.Force,
		Recursive: c.Recursive,
	}
}
