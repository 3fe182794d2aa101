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
	"github.com/db47h/caspr/scan"
	"github.com/hashicorp/go-multierror"
)

// InstructionSet is the set of instruction records loaded from a machine
// description file.
type InstructionSet struct {
	Name    string
	records []*Record

	// Discarded holds a warning for each record that was dropped while
	// loading, along with any other warning issued by the loader.
	Discarded *multierror.Error
}

// Lookup returns the record for the given mnemonic, or nil if there is none.
// When a mnemonic is defined more than once, the last definition wins.
func (is *InstructionSet) Lookup(mnemonic string) *Record {
	if is == nil {
		return nil
	}
	for i := len(is.records) - 1; i >= 0; i-- {
		if r := is.records[i]; r.Mnemonic == mnemonic {
			return r
		}
	}
	return nil
}

// Match returns the record whose fixed bits match the instruction at the
// start of b, or nil if none does. Records are tried in the same order as
// Lookup.
func (is *InstructionSet) Match(b []byte) *Record {
	if is == nil {
		return nil
	}
	for i := len(is.records) - 1; i >= 0; i-- {
		r := is.records[i]
		if len(b) < r.Bytes {
			continue
		}
		if r.Word(b)&^r.FieldMask() == r.Mask {
			return r
		}
	}
	return nil
}

// Records returns the records in load order.
func (is *InstructionSet) Records() []*Record {
	if is == nil {
		return nil
	}
	return is.records
}

// Len returns the number of records.
func (is *InstructionSet) Len() int {
	if is == nil {
		return 0
	}
	return len(is.records)
}

type loader struct {
	cfg     *Config
	syms    *SymbolTable
	loading map[string]bool
}

// LoadInstructionSet loads the named architecture from NAME.cfg, looked up in
// the configured search path. Directives in the file that define symbols act
// on syms, which may be nil.
//
// Malformed records are discarded with a warning. A record with no format, or
// a token that cannot start a record, aborts the load.
func LoadInstructionSet(name string, syms *SymbolTable, cfg Config) (*InstructionSet, error) {
	cfg = cfg.withDefaults()
	is, err := loadInstructionSet(name, syms, &cfg)
	if err != nil {
		return nil, err
	}
	if is.Discarded != nil {
		d := newDiag(cfg.Log)
		for _, w := range is.Discarded.Errors {
			d.report(w)
		}
	}
	return is, nil
}

// loadInstructionSet loads an instruction set without logging its warnings.
func loadInstructionSet(name string, syms *SymbolTable, cfg *Config) (*InstructionSet, error) {
	l := &loader{cfg: cfg, syms: syms, loading: make(map[string]bool)}
	return l.load(name)
}

func (l *loader) load(name string) (*InstructionSet, error) {
	if l.loading[name] {
		return nil, newError(LoadError, scan.Position{}, name, "recursive inclusion of architecture %s", name)
	}
	f, fn, err := l.cfg.open(name)
	if err != nil {
		return nil, newError(LoadError, scan.Position{}, name, "%v", err)
	}
	defer f.Close()
	l.loading[name] = true
	defer delete(l.loading, name)

	log := l.cfg.Log.WithField("arch", name)
	log.WithField("file", fn).Debug("loading machine description")

	d := newDiag(nil)
	is := &InstructionSet{Name: name}
	ds := &directives{
		syms: l.syms,
		d:    d,
		arch: func(sub string, pos scan.Position) error {
			inc, err := l.load(sub)
			if err != nil {
				return err
			}
			is.records = append(is.records, inc.records...)
			if inc.Discarded != nil {
				is.Discarded = multierror.Append(is.Discarded, inc.Discarded.Errors...)
			}
			return nil
		},
	}
	s := scan.New(fn, f)

	for {
		t := s.Next()
		switch t.Kind {
		case scan.EOF:
			if err := s.Err(); err != nil {
				return nil, newError(LoadError, t.Pos, "", "read failed: %v", err)
			}
			if w := d.warnings(); len(w) > 0 {
				is.Discarded = multierror.Append(is.Discarded, w...)
			}
			log.WithField("records", len(is.records)).Debug("machine description loaded")
			return is, nil
		case scan.EOL:
		case scan.Directive:
			if err := ds.dispatch(s, t); err != nil {
				return nil, err
			}
		case scan.Ident:
			r, err := record(s, t, d)
			if err != nil {
				return nil, err
			}
			if r != nil {
				is.records = append(is.records, r)
			} else {
				s.SkipLine()
			}
		case scan.Error:
			return nil, tokenError(t, "")
		default:
			return nil, newError(LoadError, t.Pos, t.Text, "unexpected %s %s", t.Kind, t)
		}
	}
}

// record parses a record definition: a mnemonic, its operand widths, then a
// format. A nil record with a nil error means that the record was discarded.
func record(s *scan.Scanner, mnemonic scan.Token, d *diag) (*Record, error) {
	var widths []int
	t := s.Next()
	for ; t.Kind == scan.Int; t = s.Next() {
		widths = append(widths, int(t.Value))
	}
	if t.Kind == scan.Error {
		return nil, tokenError(t, "")
	}
	if t.Kind != scan.Format {
		return nil, newError(LoadError, t.Pos, t.Text, "expected format for %s, got %s", mnemonic.Text, t)
	}
	r, err := CompileFormat(mnemonic.Text, widths, t.Text)
	if err != nil {
		d.warn(t.Pos, "discarding %s: %v", mnemonic.Text, err)
		return nil, nil
	}
	return r, nil
}
