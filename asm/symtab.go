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
	"sort"

	"github.com/db47h/caspr/internal/xio"
)

// Reserved symbol names, written by the assembler and read by output writers.
const (
	SymFileSize = "$filesize" // image size in bytes
	SymOutFmt   = "$outfmt"   // output format name
	SymMIFWords = "$mifwords" // MIF depth in words
	SymMIFWidth = "$mifwidth" // MIF word width in bits
)

// Symbol is a symbol table entry. A symbol with an empty Str is integer
// valued.
type Symbol struct {
	Name string `json:"name"`
	Str  string `json:"str,omitempty"`
	Int  int64  `json:"int"`
}

// IsInt returns true if the symbol is integer valued.
func (s *Symbol) IsInt() bool { return s.Str == "" }

// SymbolTable maps names to symbols. Entries are only ever added or
// overwritten; the whole table can be cleared.
type SymbolTable struct {
	index map[string]int
	syms  []Symbol
}

// NewSymbolTable returns a new empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{index: make(map[string]int)}
}

// Record records a symbol, overwriting any previous symbol with the same
// name. Pass an empty str for integer symbols.
func (t *SymbolTable) Record(name, str string, v int64) {
	if i, ok := t.index[name]; ok {
		t.syms[i].Str = str
		t.syms[i].Int = v
		return
	}
	t.index[name] = len(t.syms)
	t.syms = append(t.syms, Symbol{name, str, v})
}

// Lookup returns the named symbol.
func (t *SymbolTable) Lookup(name string) (Symbol, bool) {
	i, ok := t.index[name]
	if !ok {
		return Symbol{}, false
	}
	return t.syms[i], true
}

// Int returns the value of an integer symbol.
func (t *SymbolTable) Int(name string) (int64, bool) {
	s, ok := t.Lookup(name)
	if !ok || !s.IsInt() {
		return 0, false
	}
	return s.Int, true
}

// Str returns the value of a string symbol.
func (t *SymbolTable) Str(name string) (string, bool) {
	s, ok := t.Lookup(name)
	if !ok || s.IsInt() {
		return "", false
	}
	return s.Str, true
}

// Len returns the number of symbols in the table.
func (t *SymbolTable) Len() int { return len(t.syms) }

// Clear removes all symbols.
func (t *SymbolTable) Clear() {
	t.index = make(map[string]int)
	t.syms = nil
}

// Symbols returns a copy of all symbols sorted by name.
func (t *SymbolTable) Symbols() []Symbol {
	s := make([]Symbol, len(t.syms))
	copy(s, t.syms)
	sort.Slice(s, func(i, j int) bool { return s[i].Name < s[j].Name })
	return s
}

// WriteTo writes a human readable listing of the symbol table to w.
func (t *SymbolTable) WriteTo(w io.Writer) (int64, error) {
	ew := xio.NewErrWriter(w)
	for _, s := range t.Symbols() {
		if s.IsInt() {
			fmt.Fprintf(ew, "-> %-15s%d (0x%x)\n", s.Name, s.Int, s.Int)
		} else {
			fmt.Fprintf(ew, "-> %-15s%s\n", s.Name, s.Str)
		}
	}
	return ew.N, ew.Err
}
