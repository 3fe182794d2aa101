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

package scan

import (
	"strconv"
)

// Kind identifies the type of a Token.
type Kind int

// Token kinds.
const (
	EOF       Kind = iota // end of input
	Error                 // lexical error, see Token.Err
	Ident                 // identifier, possibly carrying a bit slice
	Label                 // identifier followed by ':'
	Directive             // identifier starting with '.'
	Int                   // integer literal, see Token.Value
	EOL                   // end of line
	Format                // {...} instruction format body
	LParen                // (
	RParen                // )
	ArithOp               // one of + - * / & | ^
)

var kindNames = [...]string{
	EOF:       "end of file",
	Error:     "error",
	Ident:     "identifier",
	Label:     "label",
	Directive: "directive",
	Int:       "integer",
	EOL:       "end of line",
	Format:    "format",
	LParen:    "'('",
	RParen:    "')'",
	ArithOp:   "operator",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// MaxText is the maximum length of a token's text. Longer tokens are
// truncated. Format bodies are not subject to this limit.
const MaxText = 63

// WordBits is the width in bits of a machine word. It bounds bit slices and
// is the width of the default slice carried by every token.
const WordBits = 64

// Position is a source position.
type Position struct {
	Filename string
	Line     int
}

// IsValid reports whether the position is valid.
func (p Position) IsValid() bool { return p.Line > 0 }

func (p Position) String() string {
	s := p.Filename
	if s == "" {
		s = "<input>"
	}
	if p.IsValid() {
		s += ":" + strconv.Itoa(p.Line)
	}
	return s
}

// Token is a lexical token.
//
// Low and High are the inclusive bounds of the bit slice attached to an
// identifier with a <low-high> suffix. Tokens without a suffix carry the
// full word, [0, WordBits-1].
type Token struct {
	Kind  Kind
	Text  string
	Value int64 // Int tokens only
	Pos   Position
	Low   int
	High  int
	Err   string // Error tokens only
}

// Sliced returns true if the token carries a bit slice narrower than a
// machine word.
func (t Token) Sliced() bool {
	return t.Low != 0 || t.High != WordBits-1
}

func (t Token) String() string {
	switch t.Kind {
	case EOF, EOL:
		return t.Kind.String()
	case Error:
		if t.Err != "" {
			return strconv.Quote(t.Text) + " (" + t.Err + ")"
		}
	}
	return strconv.Quote(t.Text)
}
