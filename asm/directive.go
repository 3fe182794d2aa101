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
)

// directives holds the state that directives act upon. Directives whose
// target is nil are parsed then ignored.
type directives struct {
	syms   *SymbolTable
	offset *int
	// arch replaces the active instruction set, or merges into the one
	// being loaded.
	arch func(name string, pos scan.Position) error
	d    *diag
}

// expect returns the next token if it is of kind k. An EOL or EOF in the
// wrong place is pushed back so that the caller's resync stops on it.
func expect(s *scan.Scanner, k scan.Kind, dir scan.Token) (scan.Token, error) {
	t := s.Next()
	if t.Kind == k {
		return t, nil
	}
	if t.Kind == scan.EOL || t.Kind == scan.EOF {
		s.PushBack(t)
	}
	return t, tokenError(t, "%s: expected %s, got %s", dir.Text, k, t)
}

// dispatch executes the directive dir, then skips the rest of the line.
func (ds *directives) dispatch(s *scan.Scanner, dir scan.Token) error {
	err := ds.run(s, dir)
	s.SkipLine()
	return err
}

func (ds *directives) run(s *scan.Scanner, dir scan.Token) error {
	switch dir.Text {
	case ".arch":
		t, err := expect(s, scan.Ident, dir)
		if err != nil {
			return err
		}
		if ds.arch != nil {
			if err := ds.arch(t.Text, t.Pos); err != nil {
				ds.d.warn(t.Pos, "cannot load architecture %s: %v", t.Text, err)
			}
		}
	case ".define":
		name, err := expect(s, scan.Ident, dir)
		if err != nil {
			return err
		}
		v, err := expect(s, scan.Int, dir)
		if err != nil {
			return err
		}
		if ds.syms != nil {
			ds.syms.Record(name.Text, "", v.Value)
		}
	case ".outfmt":
		t, err := expect(s, scan.Ident, dir)
		if err != nil {
			return err
		}
		if ds.syms != nil {
			ds.syms.Record(SymOutFmt, t.Text, 0)
		}
	case ".org":
		t, err := expect(s, scan.Int, dir)
		if err != nil {
			return err
		}
		if t.Value < 0 || t.Value > MaxImageSize {
			return newError(SemanticError, t.Pos, t.Text, "%s: offset %s out of range [0, %d]", dir.Text, t.Text, MaxImageSize)
		}
		if ds.offset != nil {
			*ds.offset = int(t.Value)
		}
	case ".mifwords", ".mifwidth":
		t, err := expect(s, scan.Int, dir)
		if err != nil {
			return err
		}
		if ds.syms != nil {
			name := SymMIFWords
			if dir.Text == ".mifwidth" {
				name = SymMIFWidth
			}
			ds.syms.Record(name, "", t.Value)
		}
	default:
		ds.d.warn(dir.Pos, "unknown directive %s", dir.Text)
	}
	return nil
}
