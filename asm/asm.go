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
	"os"

	"github.com/db47h/caspr/internal/xio"
	"github.com/db47h/caspr/scan"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// MaxImageSize is the size limit of an assembled image, in bytes.
const MaxImageSize = 1 << 24

// Program is the result of a successful assembly.
type Program struct {
	Image    []byte
	Symbols  *SymbolTable
	Warnings *multierror.Error // nil if there were no warnings
}

// An Assembler assembles source files for the architecture selected with
// .arch directives. The symbol table persists across passes.
type Assembler struct {
	cfg  Config
	syms *SymbolTable
	d    *diag
}

// New returns a new Assembler.
func New(cfg Config) *Assembler {
	cfg = cfg.withDefaults()
	return &Assembler{
		cfg:  cfg,
		syms: NewSymbolTable(),
		d:    newDiag(cfg.Log),
	}
}

// Symbols returns the assembler's symbol table.
func (a *Assembler) Symbols() *SymbolTable { return a.syms }

// Warnings returns the warnings issued so far, or nil.
func (a *Assembler) Warnings() error { return a.d.errs.ErrorOrNil() }

// Reset starts over with a new symbol table and no warnings. Programs
// returned by previous calls to Assemble are not affected.
func (a *Assembler) Reset() {
	a.syms = NewSymbolTable()
	a.d = newDiag(a.cfg.Log)
}

type pass struct {
	a      *Assembler
	s      *scan.Scanner
	offset int
	set    *InstructionSet
	ds     *directives
	image  []byte
}

func (a *Assembler) newPass(name string, r io.Reader) *pass {
	p := &pass{a: a, s: scan.New(name, r)}
	p.ds = &directives{
		syms:   a.syms,
		offset: &p.offset,
		d:      a.d,
		arch: func(arch string, pos scan.Position) error {
			p.set = nil
			is, err := loadInstructionSet(arch, a.syms, &a.cfg)
			if err != nil {
				return err
			}
			if is.Discarded != nil {
				for _, w := range is.Discarded.Errors {
					a.d.report(w)
				}
			}
			p.set = is
			return nil
		},
	}
	return p
}

func (p *pass) lookup(t scan.Token) (*Record, error) {
	r := p.set.Lookup(t.Text)
	if r != nil {
		return r, nil
	}
	if p.set == nil {
		return nil, newError(SemanticError, t.Pos, t.Text, "unknown mnemonic %s (no architecture loaded)", t.Text)
	}
	return nil, newError(SemanticError, t.Pos, t.Text, "unknown mnemonic %s", t.Text)
}

func (p *pass) eof(t scan.Token) error {
	if err := p.s.Err(); err != nil {
		return errors.Wrapf(err, "%s: read failed", t.Pos)
	}
	return nil
}

// Pass1 records the offset of labels and the size of the image, which it
// returns and stores as the $filesize symbol.
func (a *Assembler) Pass1(name string, r io.Reader) (int, error) {
	p := a.newPass(name, r)
	for {
		t := p.s.Next()
		switch t.Kind {
		case scan.EOF:
			if err := p.eof(t); err != nil {
				return 0, err
			}
			a.syms.Record(SymFileSize, "", int64(p.offset))
			a.cfg.Log.WithField("size", p.offset).Debugf("%s: pass 1 done", name)
			return p.offset, nil
		case scan.EOL:
		case scan.Label:
			a.syms.Record(t.Text, "", int64(p.offset))
		case scan.Directive:
			if err := p.ds.dispatch(p.s, t); err != nil {
				return 0, err
			}
		case scan.Ident:
			r, err := p.lookup(t)
			if err != nil {
				return 0, err
			}
			p.offset += r.Bytes
			if p.offset > MaxImageSize {
				return 0, newError(SemanticError, t.Pos, t.Text, "%s: image larger than %d bytes", t.Text, MaxImageSize)
			}
			p.s.SkipLine()
		default:
			return 0, tokenError(t, "unexpected %s %s", t.Kind, t)
		}
	}
}

// Pass2 encodes instructions into image, which must be large enough to hold
// the whole program. Labels must have been recorded by Pass1.
func (a *Assembler) Pass2(name string, r io.Reader, image []byte) error {
	p := a.newPass(name, r)
	p.image = image
	for {
		t := p.s.Next()
		switch t.Kind {
		case scan.EOF:
			if err := p.eof(t); err != nil {
				return err
			}
			a.cfg.Log.WithField("size", p.offset).Debugf("%s: pass 2 done", name)
			return nil
		case scan.EOL, scan.Label:
		case scan.Directive:
			if err := p.ds.dispatch(p.s, t); err != nil {
				return err
			}
		case scan.Ident:
			if err := p.encode(t); err != nil {
				return err
			}
		default:
			return tokenError(t, "unexpected %s %s", t.Kind, t)
		}
	}
}

func (p *pass) encode(t scan.Token) error {
	r, err := p.lookup(t)
	if err != nil {
		return err
	}
	word := r.Mask
	for n, w := range r.Widths {
		v, first, err := eval(p.s, p.a.syms)
		if err != nil {
			return err
		}
		if !r.Fits(n, uint64(v)) {
			p.a.d.warn(first.Pos, "value 0x%x (%s) not representable with %d bits", uint64(v), first.Text, w)
		}
		word = r.Place(word, n, uint64(v))
	}

	switch end := p.s.Next(); end.Kind {
	case scan.EOL:
	case scan.EOF:
		p.s.PushBack(end)
	default:
		return tokenError(end, "%s: expected end of line, got %s", t.Text, end)
	}

	if p.offset < 0 || p.offset+r.Bytes > len(p.image) {
		return newError(SemanticError, t.Pos, t.Text, "%s at offset %d overflows image of %d bytes", t.Text, p.offset, len(p.image))
	}
	r.Put(p.image[p.offset:], word)
	p.offset += r.Bytes
	return nil
}

// Assemble assembles the source read from r. It runs Pass1, rewinds r, then
// runs Pass2. The symbol table and warnings are reset first.
//
// The name parameter is only used in diagnostics. If r is a file, name should
// be the file name.
//
// Errors are of type *Error, wrapped with a stack trace.
func (a *Assembler) Assemble(name string, r io.ReadSeeker) (*Program, error) {
	a.Reset()
	size, err := a.Pass1(name, r)
	if err != nil {
		return nil, err
	}
	if _, err = r.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "%s: rewind failed", name)
	}
	image := make([]byte, size)
	if err = a.Pass2(name, r, image); err != nil {
		return nil, err
	}
	return &Program{Image: image, Symbols: a.syms, Warnings: a.d.errs}, nil
}

// Assemble assembles the source read from r with a new Assembler.
func Assemble(name string, r io.ReadSeeker, cfg Config) (*Program, error) {
	return New(cfg).Assemble(name, r)
}

// AssembleFile assembles the named file.
func AssembleFile(fileName string, cfg Config) (*Program, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()
	return Assemble(fileName, f, cfg)
}

// Disassemble writes a disassembly of the instruction at position pc in image
// to the specified io.Writer and returns the position of the next instruction
// and any write error. Bytes that do not match any record of the instruction
// set are written as a .byte directive.
func Disassemble(is *InstructionSet, image []byte, pc int, w io.Writer) (next int, err error) {
	ew := xio.NewErrWriter(w)
	r := is.Match(image[pc:])
	if r == nil {
		fmt.Fprintf(ew, ".byte 0x%02x", image[pc])
		return pc + 1, ew.Err
	}
	io.WriteString(ew, r.Mnemonic)
	for i, v := range r.Decode(r.Word(image[pc:])) {
		if i == 0 {
			ew.Write([]byte{'\t'})
		} else {
			ew.Write([]byte{' '})
		}
		fmt.Fprintf(ew, "%d", v)
	}
	return pc + r.Bytes, ew.Err
}

// DisassembleAll writes a disassembly of the whole image to the specified
// io.Writer. The base argument specifies the real address of the first byte
// (image[0]). It will return any write error.
func DisassembleAll(is *InstructionSet, image []byte, base int, w io.Writer) error {
	ew := xio.NewErrWriter(w)
	for pc := 0; pc < len(image); {
		fmt.Fprintf(ew, "% 10d\t", base+pc)
		pc, _ = Disassemble(is, image, pc, ew)
		ew.Write([]byte{'\n'})
		if ew.Err != nil {
			return ew.Err
		}
	}
	return nil
}
