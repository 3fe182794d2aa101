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
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MaxInstructionBits is the maximum width of an instruction template.
const MaxInstructionBits = 64

// Field is the placement of an operand inside an encoded instruction. Offset
// is the bit offset of the field's least significant bit, counted from the
// least significant bit of the instruction.
type Field struct {
	Operand int
	Offset  int
}

// Record is the encoding of a mnemonic.
type Record struct {
	Mnemonic string
	Widths   []int   // operand widths in bits, in operand order
	Mask     uint64  // fixed bits, with all operand fields set to 0
	Bytes    int     // encoded size
	Fields   []Field // operand placements, in template order
}

func lowBits(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(n) - 1
}

// CompileFormat compiles the body of a format literal, such as "0110(0)(1)",
// for an instruction with the given operand widths.
//
// Each literal 0 or 1 adds one bit to the instruction. Each (N) reference adds
// a field of widths[N] bits for operand N, possibly empty. An operand may be
// referenced any number of times. The total width must be a positive multiple of 8, no
// larger than MaxInstructionBits.
func CompileFormat(mnemonic string, widths []int, body string) (*Record, error) {
	r := &Record{
		Mnemonic: mnemonic,
		Widths:   append([]int(nil), widths...),
	}
	for n, w := range widths {
		if w < 0 || w > MaxInstructionBits {
			return nil, errors.Errorf("invalid width %d for operand %d", w, n)
		}
	}

	bits := 0
	for i := 0; i < len(body); i++ {
		var inc int
		field := -1
		switch c := body[i]; c {
		case '0', '1':
			r.Mask = r.Mask<<1 | uint64(c-'0')
			inc = 1
		case '(':
			end := strings.IndexByte(body[i:], ')')
			if end < 0 {
				return nil, errors.Errorf("unterminated operand reference %q", body[i:])
			}
			ref := body[i+1 : i+end]
			i += end
			n, err := strconv.Atoi(ref)
			if err != nil || n < 0 || n >= len(widths) {
				return nil, errors.Errorf("invalid operand reference \"(%s)\"", ref)
			}
			inc = widths[n]
			r.Mask <<= uint(inc)
			field = n
		default:
			return nil, errors.Errorf("unexpected character %q in format", c)
		}

		bits += inc
		if bits > MaxInstructionBits {
			return nil, errors.Errorf("instruction wider than %d bits", MaxInstructionBits)
		}
		for k := range r.Fields {
			r.Fields[k].Offset += inc
		}
		if field >= 0 {
			r.Fields = append(r.Fields, Field{Operand: field})
		}
	}

	if bits == 0 || bits%8 != 0 {
		return nil, errors.Errorf("instruction format is not byte aligned (%d bits)", bits)
	}
	r.Bytes = bits / 8
	return r, nil
}

// Operands returns the number of declared operands.
func (r *Record) Operands() int { return len(r.Widths) }

// Place returns word with operand n set to v. v is truncated to the operand's
// width and placed at every offset where the operand is referenced.
func (r *Record) Place(word uint64, n int, v uint64) uint64 {
	v &= lowBits(r.Widths[n])
	for _, f := range r.Fields {
		if f.Operand == n {
			word |= v << uint(f.Offset)
		}
	}
	return word
}

// Fits returns true if v is representable in the width of operand n.
func (r *Record) Fits(n int, v uint64) bool {
	return v <= lowBits(r.Widths[n])
}

// FieldMask returns a mask of all the bits covered by operand fields.
func (r *Record) FieldMask() uint64 {
	var m uint64
	for _, f := range r.Fields {
		m |= lowBits(r.Widths[f.Operand]) << uint(f.Offset)
	}
	return m
}

// Put writes word into b as r.Bytes bytes, most significant byte first.
func (r *Record) Put(b []byte, word uint64) {
	for i := 0; i < r.Bytes; i++ {
		b[i] = byte(word >> uint(8*(r.Bytes-1-i)))
	}
}

// Word reads a big-endian instruction word of r.Bytes bytes from b.
func (r *Record) Word(b []byte) uint64 {
	var w uint64
	for i := 0; i < r.Bytes; i++ {
		w = w<<8 | uint64(b[i])
	}
	return w
}

// Decode extracts the operand values from an encoded instruction. Operands
// referenced more than once are read from their first placement; operands
// that are never placed decode as 0.
func (r *Record) Decode(word uint64) []uint64 {
	ops := make([]uint64, len(r.Widths))
	seen := make([]bool, len(r.Widths))
	for _, f := range r.Fields {
		if seen[f.Operand] {
			continue
		}
		seen[f.Operand] = true
		ops[f.Operand] = word >> uint(f.Offset) & lowBits(r.Widths[f.Operand])
	}
	return ops
}
