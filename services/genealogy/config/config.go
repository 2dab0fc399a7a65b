// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the genealogy tool configuration.
//
// Settings come from Default(), then an optional YAML file, then command
// line flags applied by the caller. Validate is run on the result.
//
//	tree_file: professors.csv
//	log:
//	  level: info
//	  format: json
//	server:
//	  addr: ":8080"
//	  watch: true
//	  debounce: 250ms
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/AleutianAI/genealogy/services/genealogy/loader"
	"github.com/AleutianAI/genealogy/services/genealogy/telemetry"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every parse or validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultTreeFile is read when no tree file is configured.
const DefaultTreeFile = "professors.csv"

// Config is the complete tool configuration.
type Config struct {
	// TreeFile is a local path or gs://bucket/object.
	TreeFile string `yaml:"tree_file" validate:"required"`

	Log       telemetry.LogConfig `yaml:"log"`
	Telemetry telemetry.Config    `yaml:"telemetry"`
	Server    ServerConfig        `yaml:"server"`
	GCS       loader.SourceConfig `yaml:"gcs"`
}

// ServerConfig controls the HTTP query API.
type ServerConfig struct {
	// Addr is the listen address, host:port or :port.
	Addr string `yaml:"addr" validate:"required,listenaddr"`

	// RateLimit is the sustained requests per second allowed across all
	// clients. Zero disables limiting.
	RateLimit float64 `yaml:"rate_limit" validate:"gte=0"`

	// Burst is the token bucket size.
	Burst int `yaml:"burst" validate:"gte=1"`

	// Watch reloads the tree when its file changes. Ignored for gs:// trees.
	Watch bool `yaml:"watch"`

	// Debounce is how long the file must be quiet before a reload.
	Debounce time.Duration `yaml:"debounce" validate:"gte=0"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("listenaddr", validateListenAddr); err != nil {
		panic(fmt.Sprintf("register listenaddr validation: %v", err))
	}
}

// validateListenAddr accepts "host:port" and ":port" with a numeric port.
func validateListenAddr(fl validator.FieldLevel) bool {
	_, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 0 && n <= 65535
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		TreeFile:  DefaultTreeFile,
		Log:       telemetry.DefaultLogConfig(),
		Telemetry: telemetry.DefaultConfig(),
		Server: ServerConfig{
			Addr:            ":8080",
			RateLimit:       50,
			Burst:           100,
			Debounce:        250 * time.Millisecond,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Load reads the YAML file at path over the defaults.
//
// Description:
//
//	An empty path returns the validated defaults. Keys not present in the
//	file keep their default values; unknown keys are rejected.
//
// Outputs:
//
//	Config - The merged configuration.
//	error - The read error if the file cannot be opened, or an error
//	        wrapping ErrInvalidConfig if it does not parse or validate.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := decode(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
