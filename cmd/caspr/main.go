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

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/db47h/caspr/asm"
	"github.com/db47h/caspr/config"
	"github.com/db47h/caspr/output"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	configFile string
	logLevel   string
	debug      bool
	searchPath []string
	colorMode  string
	archName   string
	baseAddr   int

	settings *config.Config
	log      = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "caspr [flags] INPUT [OUTPUT]",
	Short: "A retargetable assembler",
	Long: `caspr assembles INPUT for the architecture selected with the .arch
directive and writes the result to OUTPUT. If OUTPUT is omitted, it is named
after INPUT with the output format as extension.`,
	Args:              cobra.RangeArgs(1, 2),
	PersistentPreRunE: before,
	RunE:              assemble,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

var symbolsCmd = &cobra.Command{
	Use:   "symbols INPUT",
	Short: "Print the symbol table of INPUT as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prog, err := asm.AssembleFile(args[0], asmConfig())
		if err != nil {
			return err
		}
		return output.WriteSymbols(cmd.OutOrStdout(), prog.Symbols)
	},
}

var disasmCmd = &cobra.Command{
	Use:   "disasm --arch NAME IMAGE",
	Short: "Disassemble a raw binary image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		is, err := asm.LoadInstructionSet(archName, nil, asmConfig())
		if err != nil {
			return err
		}
		img, err := output.Load(args[0])
		if err != nil {
			return err
		}
		w := bufio.NewWriter(cmd.OutOrStdout())
		if err = asm.DisassembleAll(is, img, baseAddr, w); err != nil {
			return err
		}
		return errors.Wrap(w.Flush(), "write failed")
	},
}

func init() {
	fl := rootCmd.PersistentFlags()
	fl.StringVar(&configFile, "config", "", "configuration `file` (default "+config.DefaultFile+" if present)")
	fl.StringVar(&logLevel, "log-level", "", "logging level (panic, fatal, error, warn, info, debug, trace)")
	fl.BoolVar(&debug, "debug", false, "print stack traces with errors")
	fl.StringArrayVarP(&searchPath, "search-path", "I", nil, "add `dir` to the machine description search path (can be specified multiple times)")
	fl.StringVar(&colorMode, "color", "", "colorize diagnostics: auto, always or never")

	disasmCmd.Flags().StringVar(&archName, "arch", "", "architecture `name`")
	disasmCmd.Flags().IntVar(&baseAddr, "base", 0, "address of the first byte of the image")
	disasmCmd.MarkFlagRequired("arch")

	rootCmd.AddCommand(symbolsCmd, disasmCmd)
}

// before loads the configuration file, applies command line overrides and
// sets up logging.
func before(cmd *cobra.Command, args []string) error {
	var err error
	settings, err = config.Load(configFile)
	if err != nil {
		return err
	}
	fl := cmd.Flags()
	override(fl, "log-level", &settings.LogLevel, logLevel)
	override(fl, "color", &settings.Color, colorMode)
	if fl.Changed("search-path") {
		settings.SearchPath = append(append([]string(nil), searchPath...), settings.SearchPath...)
	}
	if err = settings.Validate(); err != nil {
		return err
	}
	lvl, _ := settings.Level()
	setupLog(cmd.ErrOrStderr(), lvl, settings.Color)
	return nil
}

// override sets *dst to v if the named flag was set on the command line.
func override(fl *pflag.FlagSet, name string, dst *string, v string) {
	if fl.Changed(name) {
		*dst = v
	}
}

func setupLog(w io.Writer, lvl logrus.Level, color string) {
	f := &logrus.TextFormatter{DisableTimestamp: true}
	switch color {
	case config.ColorAlways:
		f.ForceColors = true
	case config.ColorNever:
		f.DisableColors = true
	default:
		f.DisableColors = !isTerminal(w)
	}
	log.SetOutput(w)
	log.SetFormatter(f)
	log.SetLevel(lvl)
}

func asmConfig() asm.Config {
	return asm.Config{Log: log, SearchPath: settings.SearchPath}
}

func assemble(cmd *cobra.Command, args []string) error {
	prog, err := asm.AssembleFile(args[0], asmConfig())
	if err != nil {
		return err
	}
	if prog.Warnings != nil {
		log.Infof("%s: %d warning(s)", args[0], len(prog.Warnings.Errors))
	}

	format, ok := prog.Symbols.Str(asm.SymOutFmt)
	if !ok {
		format = settings.OutFmt
		if format == "" {
			format = output.Format(prog.Symbols)
			log.Infof("unknown output format, defaulting to %s", format)
		}
	}
	out := output.OutputName(args[0], format)
	if len(args) > 1 {
		out = args[1]
	}
	log.WithFields(logrus.Fields{
		"file":   out,
		"format": format,
		"size":   len(prog.Image),
	}).Info("writing output")
	return output.Save(out, format, prog.Image, prog.Symbols)
}

func atExit(err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%+v\n", err)
	os.Exit(1)
}

func main() {
	atExit(rootCmd.Execute())
}
