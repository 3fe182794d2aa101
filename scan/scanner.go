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

// Package scan implements the tokenizer shared by caspr source programs and
// machine-description files.
//
// The scanner is a character driven state machine with a single character of
// lookahead. ASCII letters are folded to lower case as they are read, so
// identifiers, mnemonics and hex digits are case insensitive. Tokens can be
// pushed back onto a LIFO buffer, which is how Peek is implemented.
package scan

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

type state int

const (
	stStart state = iota
	stComment
	stIdent
	stSliceLow
	stSliceHigh
	stDecimal
	stOctal
	stHex
	stFormat
	stSubformat
	stDone
)

// raw token classification, before normalization.
type rawKind int

const (
	rawEOF rawKind = iota
	rawError
	rawIdent
	rawIdentSlice
	rawLabel
	rawDirective
	rawInt
	rawEOL
	rawFormat
	rawLParen
	rawRParen
	rawArithOp
)

type rawToken struct {
	kind     rawKind
	text     []byte
	line     int
	badOctal bool
	err      string
}

// Scanner tokenizes its input. A Scanner must be created with New.
type Scanner struct {
	r       io.ByteReader
	name    string
	line    int
	pending []byte  // rewrite buffer, consulted before r
	tokens  []Token // pushed back tokens
	err     error
}

// New returns a new Scanner reading from r. The name is only used in token
// positions.
func New(name string, r io.Reader) *Scanner {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Scanner{r: br, name: name, line: 1}
}

// Line returns the current line number.
func (s *Scanner) Line() int { return s.line }

// Err returns the first non-EOF read error encountered.
func (s *Scanner) Err() error { return s.err }

// Next returns the next token, using pushed back tokens first.
func (s *Scanner) Next() Token {
	if n := len(s.tokens); n > 0 {
		t := s.tokens[n-1]
		s.tokens = s.tokens[:n-1]
		return t
	}
	return s.normalize(s.scan())
}

// PushBack pushes t onto the token buffer. It will be returned by the next
// call to Next.
func (s *Scanner) PushBack(t Token) {
	s.tokens = append(s.tokens, t)
}

// Peek returns the token that the next call to Next will return.
func (s *Scanner) Peek() Token {
	t := s.Next()
	s.PushBack(t)
	return t
}

// SkipLine discards tokens up to and including the next EOL and returns the
// token that stopped it (EOL or EOF).
func (s *Scanner) SkipLine() Token {
	for {
		t := s.Next()
		if t.Kind == EOL || t.Kind == EOF {
			return t
		}
	}
}

func (s *Scanner) read() (byte, bool) {
	if n := len(s.pending); n > 0 {
		c := s.pending[n-1]
		s.pending = s.pending[:n-1]
		return c, true
	}
	c, err := s.r.ReadByte()
	if err != nil {
		if err != io.EOF && s.err == nil {
			s.err = err
		}
		return 0, false
	}
	if 'A' <= c && c <= 'Z' {
		c += 'a' - 'A'
	}
	return c, true
}

func (s *Scanner) unread(c byte) {
	s.pending = append(s.pending, c)
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isLetter(c byte) bool { return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' }
func isDigit(c byte) bool  { return '0' <= c && c <= '9' }
func isHex(c byte) bool    { return isDigit(c) || 'a' <= c && c <= 'f' }
func isIdent(c byte) bool  { return isLetter(c) || isDigit(c) || c == '_' }

// scan runs the state machine until a token is complete.
func (s *Scanner) scan() rawToken {
	t := rawToken{kind: rawEOF, line: s.line}
	st := stStart

	for st != stDone {
		c, ok := s.read()
		if !ok {
			s.atEOF(&t, st)
			break
		}
		save := true

		switch st {
		case stStart:
			t.line = s.line
			switch {
			case c != '\n' && isSpace(c):
				save = false
			case isLetter(c):
				t.kind, st = rawIdent, stIdent
			case c == '0':
				t.kind, st = rawInt, stOctal
			case isDigit(c):
				t.kind, st = rawInt, stDecimal
			default:
				switch c {
				case '.':
					t.kind, st = rawDirective, stIdent
				case ';':
					save, st = false, stComment
				case '{':
					t.kind, st = rawError, stFormat
					save = false
				case '\n':
					t.kind, st = rawEOL, stDone
					save = false
					s.line++
				case '$':
					// $ff is shorthand for 0xff
					s.unread('x')
					s.unread('0')
					save = false
				case '(':
					t.kind, st = rawLParen, stDone
				case ')':
					t.kind, st = rawRParen, stDone
				case '+', '-', '*', '/', '&', '|', '^':
					t.kind, st = rawArithOp, stDone
				default:
					t.kind, st = rawError, stDone
					t.err = "unexpected character " + strconv.QuoteRune(rune(c))
				}
			}

		case stComment:
			save = false
			if c == '\n' || c == '\r' {
				s.unread(c)
				st = stStart
			}

		case stIdent:
			switch {
			case c == ':':
				t.kind, st = rawLabel, stDone
				save = false
			case c == '<':
				st = stSliceLow
			case !isIdent(c):
				s.unread(c)
				save, st = false, stDone
			}

		case stSliceLow:
			if c == '-' {
				st = stSliceHigh
			} else if !isDigit(c) {
				s.unread(c)
				save, st = false, stDone
				t.kind, t.err = rawError, "malformed bit slice"
			}

		case stSliceHigh:
			if c == '>' {
				t.kind, st = rawIdentSlice, stDone
			} else if !isDigit(c) {
				s.unread(c)
				save, st = false, stDone
				t.kind, t.err = rawError, "malformed bit slice"
			}

		case stDecimal:
			if !isDigit(c) {
				s.unread(c)
				save, st = false, stDone
			}

		case stOctal:
			switch {
			case c == 'x' && len(t.text) == 1:
				st = stHex
			case isDigit(c):
				if c > '7' {
					t.badOctal = true
				}
			default:
				s.unread(c)
				save, st = false, stDone
			}

		case stHex:
			if !isHex(c) {
				s.unread(c)
				save, st = false, stDone
			}

		case stFormat:
			switch {
			case c == '\n':
				save = false
				s.line++
			case isSpace(c):
				save = false
			case c == '0' || c == '1':
			case c == '(':
				st = stSubformat
			case c == '}':
				t.kind, st = rawFormat, stDone
				save = false
			default:
				st = stDone
				t.err = "unexpected character " + strconv.QuoteRune(rune(c)) + " in format"
			}

		case stSubformat:
			switch {
			case c == '\n':
				save = false
				s.line++
			case isSpace(c):
				save = false
			case isDigit(c):
			case c == ')':
				st = stFormat
			default:
				st = stDone
				t.err = "unexpected character " + strconv.QuoteRune(rune(c)) + " in format"
			}
		}

		if save {
			t.text = append(t.text, c)
		}
	}
	return t
}

// atEOF finishes the token being built when the input runs out in state st.
func (s *Scanner) atEOF(t *rawToken, st state) {
	switch st {
	case stSliceLow, stSliceHigh:
		t.kind, t.err = rawError, "unterminated bit slice"
	case stFormat, stSubformat:
		t.kind, t.err = rawError, "unterminated format"
	}
	if t.kind == rawEOF && s.err != nil {
		t.kind, t.err = rawError, s.err.Error()
	}
}

// normalize turns a raw token into its final form: bit slices are split off
// identifiers, integer values are computed and text is bounded.
func (s *Scanner) normalize(r rawToken) Token {
	t := Token{
		Text: string(r.text),
		Pos:  Position{s.name, r.line},
		High: WordBits - 1,
		Err:  r.err,
	}
	switch r.kind {
	case rawEOF:
		t.Kind = EOF
	case rawError:
		t.Kind = Error
		if t.Err == "" {
			t.Err = "invalid token"
		}
	case rawIdent:
		t.Kind = Ident
	case rawIdentSlice:
		t.Kind = Ident
		name, low, high, err := splitSlice(t.Text)
		if err != "" {
			t.Kind, t.Err = Error, err
			break
		}
		t.Text, t.Low, t.High = name, low, high
	case rawLabel:
		t.Kind = Label
	case rawDirective:
		t.Kind = Directive
	case rawInt:
		t.Kind = Int
		v, err := intValue(t.Text, r.badOctal)
		if err != "" {
			t.Kind, t.Err = Error, err
			break
		}
		t.Value = v
	case rawEOL:
		t.Kind = EOL
	case rawFormat:
		t.Kind = Format
	case rawLParen:
		t.Kind = LParen
	case rawRParen:
		t.Kind = RParen
	case rawArithOp:
		t.Kind = ArithOp
	}
	if t.Kind != Format && len(t.Text) > MaxText {
		t.Text = t.Text[:MaxText]
	}
	return t
}

// splitSlice splits "name<low-high>".
func splitSlice(s string) (name string, low, high int, err string) {
	i := strings.IndexByte(s, '<')
	j := strings.IndexByte(s, '-')
	if i < 0 || j < i || !strings.HasSuffix(s, ">") {
		return "", 0, 0, "malformed bit slice"
	}
	name = s[:i]
	l, e1 := strconv.Atoi(s[i+1 : j])
	h, e2 := strconv.Atoi(s[j+1 : len(s)-1])
	if e1 != nil || e2 != nil {
		return "", 0, 0, "malformed bit slice"
	}
	if l > h || h >= WordBits {
		return "", 0, 0, "invalid bit slice <" + strconv.Itoa(l) + "-" + strconv.Itoa(h) + ">"
	}
	return name, l, h, ""
}

// intValue parses an integer literal with C radix rules.
func intValue(s string, badOctal bool) (int64, string) {
	var (
		v   uint64
		err error
	)
	switch {
	case strings.HasPrefix(s, "0x"):
		if len(s) == 2 {
			return 0, "malformed hex literal"
		}
		v, err = strconv.ParseUint(s[2:], 16, 64)
	case len(s) > 1 && s[0] == '0':
		if badOctal {
			return 0, "invalid digit in octal literal"
		}
		v, err = strconv.ParseUint(s[1:], 8, 64)
	default:
		v, err = strconv.ParseUint(s, 10, 64)
	}
	if err != nil {
		return 0, "integer literal out of range"
	}
	return int64(v), ""
}
