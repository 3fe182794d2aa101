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

	"github.com/db47h/caspr/scan"
	"github.com/pkg/errors"
)

// ErrorKind classifies assembly errors.
type ErrorKind int

// Error kinds.
const (
	LexicalError  ErrorKind = iota // unrecognized character, malformed literal or bit slice
	LoadError                      // machine-description file problems
	SemanticError                  // unknown mnemonic, unresolved symbol, bad operand...
)

func (k ErrorKind) String() string {
	switch k {
	case LexicalError:
		return "lexical error"
	case LoadError:
		return "load error"
	case SemanticError:
		return "error"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the error type returned by the assembler. Functions of this
// package return it wrapped with a stack trace; use errors.Cause from
// github.com/pkg/errors to get at it.
type Error struct {
	Kind  ErrorKind
	Pos   scan.Position
	Token string // text of the offending token, if any
	Msg   string
}

func (e *Error) Error() string {
	if e.Pos.IsValid() || e.Pos.Filename != "" {
		return e.Pos.String() + ": " + e.Msg
	}
	return e.Msg
}

func newError(kind ErrorKind, pos scan.Position, tok, format string, args ...interface{}) error {
	return errors.WithStack(&Error{
		Kind:  kind,
		Pos:   pos,
		Token: tok,
		Msg:   fmt.Sprintf(format, args...),
	})
}

// tokenError builds an error for an unexpected token. Error tokens yield a
// LexicalError.
func tokenError(t scan.Token, format string, args ...interface{}) error {
	if t.Kind == scan.Error {
		return newError(LexicalError, t.Pos, t.Text, "%s: %s", t.Err, t.Text)
	}
	return newError(SemanticError, t.Pos, t.Text, format, args...)
}

// Warning is a non-fatal diagnostic.
type Warning struct {
	Pos scan.Position
	Msg string
}

func (w *Warning) Error() string {
	return w.Pos.String() + ": warning: " + w.Msg
}
