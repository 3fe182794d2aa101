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

func slice(t scan.Token, v int64) int64 {
	if !t.Sliced() {
		return v
	}
	return int64(uint64(v) >> uint(t.Low) & lowBits(t.High-t.Low+1))
}

// eval evaluates one operand:
//
//	value := INT | IDENT | '(' value ( ARITHOP value )* ')'
//
// Operators are applied left to right. Only + and - are supported. The
// returned token is the first token of the operand.
func eval(s *scan.Scanner, syms *SymbolTable) (int64, scan.Token, error) {
	t := s.Next()
	switch t.Kind {
	case scan.Int:
		return slice(t, t.Value), t, nil
	case scan.Ident:
		sym, ok := syms.Lookup(t.Text)
		if !ok {
			return 0, t, newError(SemanticError, t.Pos, t.Text, "undefined symbol %s", t.Text)
		}
		if !sym.IsInt() {
			return 0, t, newError(SemanticError, t.Pos, t.Text, "symbol %s is not an integer", t.Text)
		}
		return slice(t, sym.Int), t, nil
	case scan.LParen:
		acc, _, err := eval(s, syms)
		if err != nil {
			return 0, t, err
		}
		for {
			op := s.Next()
			switch op.Kind {
			case scan.RParen:
				return acc, t, nil
			case scan.ArithOp:
				if op.Text != "+" && op.Text != "-" {
					return 0, t, newError(SemanticError, op.Pos, op.Text, "unsupported operator %s", op.Text)
				}
				v, _, err := eval(s, syms)
				if err != nil {
					return 0, t, err
				}
				if op.Text == "+" {
					acc += v
				} else {
					acc -= v
				}
			default:
				return 0, t, tokenError(op, "expected operator or ')', got %s", op)
			}
		}
	}
	return 0, t, tokenError(t, "expected operand, got %s", t)
}
