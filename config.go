// Copyright © 2009--2014 The Web.go Authors
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package web

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds the settings of a Server. The zero value is usable but
// DefaultConfig is what NewServer starts from.
type ServerConfig struct {
	// Listen address for the Run helpers, e.g. "0.0.0.0:9999".
	Addr         string   `yaml:"addr"`
	StaticDirs   []string `yaml:"static_dirs"`
	CookieSecret string   `yaml:"cookie_secret"`
	// Recover handler panics and route them to the error entries instead
	// of crashing the serving goroutine.
	RecoverPanic bool   `yaml:"recover_panic"`
	Cert         string `yaml:"cert"`
	Key          string `yaml:"key"`
	ColorOutput  bool   `yaml:"color_output"`
	// Include stack traces of recovered panics in default error responses.
	Development bool `yaml:"development"`
	// Upper bound on reading a request body. Once it elapses the chain
	// starts with whatever was buffered. Zero waits for the whole body.
	BodyTimeout time.Duration `yaml:"body_timeout"`
	// Optional supervisory timeout for the whole chain; zero disables it.
	HandlerTimeout time.Duration `yaml:"handler_timeout"`
	// Bodies larger than this fail with 413. Zero means unlimited.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
	// logrus level name: "debug", "info", "warn", ...
	LogLevel string `yaml:"log_level"`
}

// DefaultBodyTimeout is the body read timeout of DefaultConfig.
const DefaultBodyTimeout = 30 * time.Second

func DefaultConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:9999",
		RecoverPanic: true,
		ColorOutput:  true,
		BodyTimeout:  DefaultBodyTimeout,
		LogLevel:     "info",
	}
}

// LoadConfig reads a YAML config file. Keys missing from the file keep their
// DefaultConfig value; unknown keys are an error.
func LoadConfig(path string) (ServerConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return ServerConfig{}, err
	}
	defer f.Close()
	return ParseConfig(f)
}

// ParseConfig is LoadConfig for an already opened reader.
func ParseConfig(r io.Reader) (ServerConfig, error) {
	conf := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&conf); err != nil && !errors.Is(err, io.EOF) {
		return ServerConfig{}, fmt.Errorf("web: parsing config: %w", err)
	}
	return conf, nil
}
