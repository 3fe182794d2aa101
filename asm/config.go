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

package asm

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/db47h/caspr/scan"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultSearchPath is the list of directories searched for machine
// description files when Config.SearchPath is empty.
var DefaultSearchPath = []string{".", "cfg"}

// Config configures an Assembler.
type Config struct {
	// Log receives diagnostics. If nil, diagnostics are discarded; warnings
	// are still collected in Program.Warnings.
	Log logrus.FieldLogger

	// FS, if not nil, is used to open machine-description files. Otherwise
	// they are opened from the host file system.
	FS fs.FS

	// SearchPath lists the directories where an architecture NAME is looked
	// up as NAME.cfg, in order.
	SearchPath []string
}

func (c Config) withDefaults() Config {
	if c.Log == nil {
		l := logrus.New()
		l.Out = io.Discard
		c.Log = l
	}
	if len(c.SearchPath) == 0 {
		c.SearchPath = DefaultSearchPath
	}
	return c
}

// open opens the machine-description file for the named architecture and
// returns it along with the path it was found at.
func (c *Config) open(name string) (io.ReadCloser, string, error) {
	for _, dir := range c.SearchPath {
		var (
			fn  string
			f   io.ReadCloser
			err error
		)
		if c.FS != nil {
			fn = path.Join(dir, name+".cfg")
			f, err = c.FS.Open(fn)
		} else {
			fn = filepath.Join(dir, name+".cfg")
			f, err = os.Open(fn)
		}
		if err == nil {
			return f, fn, nil
		}
		c.Log.WithField("file", fn).Debug("machine description not found")
	}
	return nil, "", errors.Errorf("no %s.cfg in search path %v", name, c.SearchPath)
}

// diag reports and collects warnings. A warning reported more than once, as
// happens when both passes run into it, is only reported the first time. A
// diag with a nil logger only collects.
type diag struct {
	log  logrus.FieldLogger
	errs *multierror.Error
	seen map[string]bool
}

func newDiag(log logrus.FieldLogger) *diag {
	return &diag{log: log, seen: make(map[string]bool)}
}

func (d *diag) warn(pos scan.Position, format string, args ...interface{}) {
	d.report(&Warning{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

// report collects err and logs it unless it was already collected.
func (d *diag) report(err error) {
	if !d.add(err) || d.log == nil {
		return
	}
	if w, ok := err.(*Warning); ok {
		d.log.WithField("pos", w.Pos.String()).Warn(w.Msg)
		return
	}
	d.log.Warn(err.Error())
}

// add collects err without logging it. It returns false if err had already
// been collected.
func (d *diag) add(err error) bool {
	key := err.Error()
	if d.seen[key] {
		return false
	}
	d.seen[key] = true
	d.errs = multierror.Append(d.errs, err)
	return true
}

func (d *diag) warnings() []error {
	if d.errs == nil {
		return nil
	}
	return d.errs.Errors
}
