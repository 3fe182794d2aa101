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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/db47h/caspr/config"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, data string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "caspr.toml")
	require.NoError(t, os.WriteFile(fn, []byte(data), 0o644))
	return fn
}

func TestDefault(t *testing.T) {
	c := config.Default()
	assert.Equal(t, []string{".", "cfg"}, c.SearchPath)
	assert.Equal(t, config.ColorAuto, c.Color)
	assert.Empty(t, c.OutFmt)
	l, err := c.Level()
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, l)
	assert.NoError(t, c.Validate())
}

func TestLoad(t *testing.T) {
	fn := write(t, `
search_path = ["arch", "/usr/share/caspr"]
log_level = "debug"
outfmt = "rom"
`)
	c, err := config.Load(fn)
	require.NoError(t, err)
	assert.Equal(t, []string{"arch", "/usr/share/caspr"}, c.SearchPath)
	assert.Equal(t, "rom", c.OutFmt)
	assert.Equal(t, config.ColorAuto, c.Color)
	l, _ := c.Level()
	assert.Equal(t, logrus.DebugLevel, l)
}

func TestLoad_errors(t *testing.T) {
	for _, data := range []string{
		`log_level = "loud"`,
		`color = "sometimes"`,
		`colour = "auto"`,
		`search_path = "cfg"`,
		`outfmt = `,
	} {
		_, err := config.Load(write(t, data))
		assert.Error(t, err, data)
	}
	_, err := config.Load(filepath.Join(t.TempDir(), "none.toml"))
	assert.Error(t, err)
}
