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

// Package output writes assembled images to files.
//
// Three formats are supported: Altera Memory Initialization Files (mif), a
// human readable hex dump (rom), and raw binary (bin). The format of a program
// is set with the .outfmt directive and defaults to mif.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/db47h/caspr/asm"
	"github.com/db47h/caspr/internal/xio"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// Output formats.
const (
	MIF    = "mif"
	ROM    = "rom"
	Binary = "bin"
)

// DefaultMIFWidth is the MIF word width used when $mifwidth is not set.
const DefaultMIFWidth = 8

// Format returns the output format selected by the $outfmt symbol, or MIF if
// there is none.
func Format(syms *asm.SymbolTable) string {
	if f, ok := syms.Str(asm.SymOutFmt); ok {
		return f
	}
	return MIF
}

// OutputName returns the name of the output file for the given input file:
// the extension of input, if any, is replaced with the format name.
func OutputName(input, format string) string {
	if i := strings.LastIndexByte(input, '.'); i >= 0 {
		return input[:i+1] + format
	}
	return input + "." + format
}

// WriteMIF writes image as a Memory Initialization File. The $mifwords symbol
// must be set to the depth of the memory. Its width in bits is read from
// $mifwidth and must be a multiple of 8.
func WriteMIF(w io.Writer, image []byte, syms *asm.SymbolTable) error {
	words, ok := syms.Int(asm.SymMIFWords)
	if !ok {
		return errors.New("unknown MIF output size: missing .mifwords")
	}
	width := int64(DefaultMIFWidth)
	if v, ok := syms.Int(asm.SymMIFWidth); ok {
		width = v
	}
	if width <= 0 || width%8 != 0 {
		return errors.Errorf("illegal MIF width %d (must be a multiple of 8)", width)
	}
	if words < 0 {
		return errors.Errorf("illegal MIF depth %d", words)
	}
	bw := int(width / 8)
	size := int(words) * bw
	if len(image) > size {
		return errors.Errorf("image of %d bytes does not fit in %d words of %d bits", len(image), words, width)
	}

	ew := xio.NewErrWriter(w)
	fmt.Fprintf(ew, "-- caspr\n\n"+
		"WIDTH=%d;\n"+
		"DEPTH=%d;\n\n"+
		"ADDRESS_RADIX=HEX;\n"+
		"DATA_RADIX=HEX;\n\n"+
		"CONTENT BEGIN\n", width, words)
	for x := 0; x < size && ew.Err == nil; x += bw {
		fmt.Fprintf(ew, "\t%x  :   ", x/bw)
		for t := 0; t < bw; t++ {
			var b byte
			if x+t < len(image) {
				b = image[x+t]
			}
			fmt.Fprintf(ew, "%02X", b)
		}
		io.WriteString(ew, ";\n")
	}
	io.WriteString(ew, "END;\n")
	return ew.Err
}

// WriteROM writes a hex dump of image, 8 bytes per row. The last row is
// padded with zeros.
func WriteROM(w io.Writer, image []byte) error {
	ew := xio.NewErrWriter(w)
	for x := 0; x < len(image) && ew.Err == nil; x += 8 {
		fmt.Fprintf(ew, "0x%04X |", x)
		for y := 0; y < 8; y++ {
			var b byte
			if x+y < len(image) {
				b = image[x+y]
			}
			fmt.Fprintf(ew, " %02X", b)
		}
		ew.Write([]byte{'\n'})
	}
	return ew.Err
}

// WriteBinary writes the raw image.
func WriteBinary(w io.Writer, image []byte) error {
	_, err := w.Write(image)
	return errors.Wrap(err, "write failed")
}

type symbolList struct {
	Symbols []asm.Symbol `json:"symbols"`
}

// WriteSymbols writes the symbol table as JSON.
func WriteSymbols(w io.Writer, syms *asm.SymbolTable) error {
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(symbolList{syms.Symbols()}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "JSON encoding failed")
	}
	ew := xio.NewErrWriter(w)
	ew.Write(b)
	ew.Write([]byte{'\n'})
	return ew.Err
}

// Write writes image in the given format. Unknown formats are written as
// rom.
func Write(w io.Writer, format string, image []byte, syms *asm.SymbolTable) error {
	switch format {
	case MIF:
		return WriteMIF(w, image, syms)
	case Binary:
		return WriteBinary(w, image)
	}
	return WriteROM(w, image)
}

// Save writes image in the given format to the named file. The file is
// removed if an error occurs.
func Save(fileName, format string, image []byte, syms *asm.SymbolTable) (err error) {
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrap(err, "create failed")
	}
	w := bufio.NewWriter(f)
	defer func() {
		if ferr := w.Flush(); err == nil && ferr != nil {
			err = errors.Wrap(ferr, "write failed")
		}
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "close failed")
		}
		if err != nil {
			os.Remove(fileName)
		}
	}()
	return Write(w, format, image, syms)
}

// Load reads a raw binary image.
func Load(fileName string) ([]byte, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "load failed")
	}
	defer f.Close()
	b, err := io.ReadAll(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrap(err, "load failed")
	}
	return b, nil
}
