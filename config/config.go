// This file is part of caspr - https://github.com/db47h/caspr
//
// Copyright 2016 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads caspr configuration files.
//
// A configuration file is a TOML document:
//
//	search_path = [".", "cfg", "/usr/share/caspr"]
//	log_level = "warning"
//	outfmt = "rom"
//	color = "auto"
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/db47h/caspr/asm"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultFile is the configuration file read when none is specified, if it
// exists.
const DefaultFile = "caspr.toml"

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds the settings of the caspr command.
type Config struct {
	SearchPath []string `toml:"search_path"`
	LogLevel   string   `toml:"log_level"`
	// OutFmt is the output format used when the source does not set one with
	// .outfmt.
	OutFmt string `toml:"outfmt"`
	Color  string `toml:"color"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		SearchPath: append([]string(nil), asm.DefaultSearchPath...),
		LogLevel:   logrus.InfoLevel.String(),
		Color:      ColorAuto,
	}
}

// Load reads the named configuration file on top of the default
// configuration. If name is empty, DefaultFile is read if it exists.
func Load(name string) (*Config, error) {
	c := Default()
	if name == "" {
		if _, err := os.Stat(DefaultFile); err != nil {
			return c, nil
		}
		name = DefaultFile
	}
	md, err := toml.DecodeFile(name, c)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return nil, errors.Errorf("%s: unknown setting %q", name, keys[0].String())
	}
	if err = c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	return c, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errors.Errorf("invalid color mode %q", c.Color)
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() (logrus.Level, error) {
	l, err := logrus.ParseLevel(c.LogLevel)
	return l, errors.Wrap(err, "invalid log level")
}
