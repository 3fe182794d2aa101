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

package asm_test

import (
	"testing"

	"github.com/db47h/caspr/asm"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileFormat(t *testing.T) {
	r, err := asm.CompileFormat("x", []int{5}, "000(0)")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Bytes)
	assert.Equal(t, uint64(0), r.Mask)
	assert.Equal(t, []asm.Field{{Operand: 0, Offset: 0}}, r.Fields)
	assert.Equal(t, uint64(0x1f), r.FieldMask())

	r, err = asm.CompileFormat("x", []int{3, 3}, "01(0)(1)")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x40), r.Mask)
	assert.Equal(t, []asm.Field{{0, 3}, {1, 0}}, r.Fields)
	w := r.Place(r.Mask, 0, 5)
	w = r.Place(w, 1, 2)
	assert.Equal(t, uint64(0x6a), w)
	assert.Equal(t, []uint64{5, 2}, r.Decode(w))

	// operand placed twice, operands referenced out of order
	r, err = asm.CompileFormat("x", []int{4, 8}, "(1)(0)(0)")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Bytes)
	assert.Equal(t, []asm.Field{{1, 8}, {0, 4}, {0, 0}}, r.Fields)
	w = r.Place(r.Place(0, 0, 0xa), 1, 0x5c)
	assert.Equal(t, uint64(0x5caa), w)
	b := make([]byte, 2)
	r.Put(b, w)
	assert.Equal(t, []byte{0x5c, 0xaa}, b)
	assert.Equal(t, w, r.Word(b))

	// unused operand
	r, err = asm.CompileFormat("x", []int{4}, "11110000")
	require.NoError(t, err)
	assert.Equal(t, uint64(0xf0), r.Mask)
	assert.Equal(t, []uint64{0}, r.Decode(0xf0))

	// zero width operand takes no bits
	r, err = asm.CompileFormat("x", []int{0, 4}, "1010(0)(1)")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Bytes)
	assert.Equal(t, []asm.Field{{0, 4}, {1, 0}}, r.Fields)
	assert.True(t, r.Fits(0, 0))
	assert.False(t, r.Fits(0, 1))
	assert.Equal(t, uint64(0xa3), r.Place(r.Place(r.Mask, 0, 7), 1, 3))
	assert.Equal(t, []uint64{0, 3}, r.Decode(0xa3))

	// 64 bits
	r, err = asm.CompileFormat("x", []int{64}, "(0)")
	require.NoError(t, err)
	assert.Equal(t, 8, r.Bytes)
	assert.True(t, r.Fits(0, ^uint64(0)))

	for _, d := range []struct {
		widths []int
		body   string
	}{
		{nil, ""},
		{nil, "0101"},
		{[]int{2}, "10(0)1"},
		{[]int{4}, "1111(1)"},
		{[]int{4}, "1111()"},
		{[]int{4}, "1111(0"},
		{[]int{4}, "1111(x)"},
		{[]int{-1}, "00000000(0)"},
		{[]int{65}, "(0)"},
		{[]int{64}, "00000000(0)"},
		{nil, "0000x000"},
	} {
		_, err := asm.CompileFormat("x", d.widths, d.body)
		assert.Error(t, err, "%v %q", d.widths, d.body)
	}
}

func TestLoadInstructionSet(t *testing.T) {
	cfg, hook := newConfig(map[string]string{
		"cfg/demo.cfg": demoCfg + `
bad 3       {0(0)}
oops 2      {0000000(1)}
.mifwords 256
.org 12
nop         {11111111}
`,
	})
	syms := asm.NewSymbolTable()
	is, err := asm.LoadInstructionSet("demo", syms, cfg)
	require.NoError(t, err)
	assert.Equal(t, "demo", is.Name)
	assert.Equal(t, 5, is.Len())
	assert.Nil(t, is.Lookup("bad"))
	assert.Nil(t, is.Lookup("oops"))
	// most recent definition wins
	assert.Equal(t, uint64(0xff), is.Lookup("nop").Mask)
	assert.Equal(t, "ldi", is.Lookup("ldi").Mnemonic)
	require.NotNil(t, is.Discarded)
	assert.Len(t, is.Discarded.Errors, 2)
	assert.Len(t, warnings(hook), 2)

	v, ok := syms.Int(asm.SymMIFWords)
	assert.True(t, ok)
	assert.EqualValues(t, 256, v)

	var nilSet *asm.InstructionSet
	assert.Nil(t, nilSet.Lookup("nop"))
	assert.Zero(t, nilSet.Len())
}

func TestLoadInstructionSet_errors(t *testing.T) {
	data := []struct {
		name string
		cfg  string
		kind asm.ErrorKind
		line int
	}{
		{"noFormat", "nop\n", asm.LoadError, 1},
		{"noFormat2", "nop {00000000}\nldi 4 8\n{00000000}\n", asm.LoadError, 2},
		{"stray", "nop {00000000}\n12 {00000000}\n", asm.LoadError, 2},
		{"lexical", "nop {00000000}\nldi 4 8 {0001(0)(1)x}\n", asm.LexicalError, 2},
		{"directive", ".define foo\n", asm.SemanticError, 1},
	}
	for _, d := range data {
		t.Run(d.name, func(t *testing.T) {
			cfg, _ := newConfig(map[string]string{"x.cfg": d.cfg})
			is, err := asm.LoadInstructionSet("x", nil, cfg)
			require.Error(t, err)
			assert.Nil(t, is)
			e, ok := errors.Cause(err).(*asm.Error)
			require.True(t, ok, "%v", err)
			assert.Equal(t, d.kind, e.Kind, e.Error())
			assert.Equal(t, d.line, e.Pos.Line, e.Error())
		})
	}

	cfg, _ := newConfig(map[string]string{})
	_, err := asm.LoadInstructionSet("none", nil, cfg)
	require.Error(t, err)
	assert.Equal(t, asm.LoadError, errors.Cause(err).(*asm.Error).Kind)
}

func TestLoadInstructionSet_nested(t *testing.T) {
	cfg, _ := newConfig(map[string]string{
		"base.cfg":    "nop {00000000}\nhlt {11111111}\n",
		"cfg/ext.cfg": "inc 8 {00000001(0)}\n.arch base\nhlt {11110000}\n",
	})
	is, err := asm.LoadInstructionSet("ext", nil, cfg)
	require.NoError(t, err)
	var names []string
	for _, r := range is.Records() {
		names = append(names, r.Mnemonic)
	}
	assert.Equal(t, []string{"inc", "nop", "hlt", "hlt"}, names)
	assert.Equal(t, uint64(0xf0), is.Lookup("hlt").Mask)
	assert.Nil(t, is.Discarded)
}

func TestLoadInstructionSet_cycle(t *testing.T) {
	cfg, hook := newConfig(map[string]string{
		"a.cfg": ".arch b\nx {00000000}\n",
		"b.cfg": "y {00000001}\n.arch a\n",
		"c.cfg": ".arch c\nz {00000010}\n",
	})
	is, err := asm.LoadInstructionSet("a", nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, is.Len())
	assert.NotNil(t, is.Lookup("x"))
	assert.NotNil(t, is.Lookup("y"))
	require.NotNil(t, is.Discarded)
	require.Len(t, is.Discarded.Errors, 1)
	assert.Contains(t, is.Discarded.Errors[0].Error(), "recursive inclusion of architecture a")
	assert.Len(t, warnings(hook), 1)

	is, err = asm.LoadInstructionSet("c", nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, is.Len())
}

func TestInstructionSet_match(t *testing.T) {
	cfg, _ := newConfig(nil)
	is, err := asm.LoadInstructionSet("demo", nil, cfg)
	require.NoError(t, err)
	for _, d := range []struct {
		b []byte
		m string
	}{
		{[]byte{0x00}, "nop"},
		{[]byte{0x1a, 0xbc}, "ldi"},
		{[]byte{0xf0, 0x00}, "jmp"},
		{[]byte{0x80, 0x12}, "swp"},
		{[]byte{0x1a}, ""},
		{[]byte{0x42, 0x00}, ""},
	} {
		r := is.Match(d.b)
		if d.m == "" {
			assert.Nil(t, r, "% x", d.b)
			continue
		}
		require.NotNil(t, r, "% x", d.b)
		assert.Equal(t, d.m, r.Mnemonic)
	}
}
