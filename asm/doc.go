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

// Package asm implements a retargetable two-pass assembler.
//
// The target machine is described in a machine-description file, NAME.cfg,
// selected from the source program with the .arch directive. Each entry of
// the description declares a mnemonic, the bit width of each of its operands,
// and an instruction format:
//
//	; mnemonic  widths  format
//	nop                 {00000000}
//	ldi         4 8     {0001(0)(1)}
//	jmp         12      {1111(0)}
//	swp         4       {10000000(0)(0)}
//
// A format is a sequence of literal bits (0 or 1) and operand references of
// the form (N) where N is the index of an operand in the widths list. Each
// reference reserves as many bits as the operand's width. An operand may be
// referenced more than once, in which case its value is placed at every
// reference. The total width of a format must be a multiple of 8 bits and no
// wider than 64 bits. Instructions are written most significant byte first.
//
// Records with an invalid format are discarded with a warning. A description
// file may itself contain directives; .arch in a description file includes
// the records of another description at that point.
//
// Source syntax:
//
// Input is case insensitive and line oriented. A line may contain a label, a
// directive, or a mnemonic followed by exactly as many operands as its record
// declares. Comments start with ';' and run to the end of the line.
//
//	        .arch   demo
//	        .define COUNT 10
//	start:  ldi     1 COUNT
//	        ldi     2 (start + 3)
//	        ldi     3 $ff
//	        ldi     4 start<0-3>
//	        jmp     start
//
// Integer literals are decimal, octal with a leading 0, or hexadecimal with a
// leading 0x or $. An operand is an integer literal, a symbol, or a
// parenthesized expression of such terms joined by + or -, evaluated left to
// right. A symbol may be followed by a bit slice <low-high> that selects bits
// low through high of its value.
//
// A value too wide for its operand triggers a warning and is truncated.
//
// Directives:
//
//	.arch <name>
//
// loads the machine description from <name>.cfg, looked up in the
// configured search path, and replaces the current instruction set with it.
//
//	.define <name> <value>
//
// defines or redefines an integer symbol.
//
//	.org <value>
//
// sets the offset of the next instruction.
//
//	.outfmt <name>
//	.mifwords <value>
//	.mifwidth <value>
//
// set the $outfmt, $mifwords and $mifwidth symbols used by output writers.
//
// After assembly, the $filesize symbol holds the size of the image in bytes.
package asm
