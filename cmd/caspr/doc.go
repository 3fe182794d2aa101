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

// The caspr command assembles programs for any architecture described by a
// machine-description file. See package github.com/db47h/caspr/asm for the
// source and machine-description syntax.
//
// Usage:
//
//	caspr [flags] INPUT [OUTPUT]
//	caspr symbols INPUT
//	caspr disasm --arch NAME [--base ADDR] IMAGE
//
// Global flags:
//
//	--config file
//		  configuration file (default caspr.toml if present)
//	--log-level level
//		  logging level (panic, fatal, error, warn, info, debug, trace)
//	--debug
//		  print stack traces with errors
//	-I, --search-path dir
//		  add dir to the machine description search path (can be specified multiple times)
//	--color mode
//		  colorize diagnostics: auto, always or never
//
// If OUTPUT is omitted, the output file is named after INPUT, with its
// extension replaced by the output format. The output format is set in the
// source with the .outfmt directive. It falls back to the outfmt setting of
// the configuration file, then to mif.
//
// Output formats are mif (Memory Initialization File, requires .mifwords),
// bin (raw binary) and rom (hex dump). Unknown formats are written as rom.
//
// symbols assembles INPUT and prints its symbol table as JSON on stdout.
//
// disasm disassembles a raw binary image against the named architecture.
// Bytes that do not decode to an instruction are printed as .byte directives.
//
// Directories given with -I are searched before the ones from the
// configuration file, which default to "." then "cfg".
package main
