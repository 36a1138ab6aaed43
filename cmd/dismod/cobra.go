package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xyproto/dismod/internal/render"
	"github.com/xyproto/dismod/internal/xfmt"
)

// cobraSubcommands names the alternate command tree dismod falls into
// when invoked as "dismod <subcommand> ..." instead of the flat-flag
// mode in main(). Both wrap the same runOnce pipeline; this tree
// exists for scriptable batch use where one verb per invocation reads
// better than a flag soup.
var cobraSubcommands = map[string]bool{"dump": true, "disasm": true, "spec": true}

func runCobra() {
	var (
		syntaxFlag   string
		tableFlag    bool
		resourceFlag bool
		noColor      bool
		suppressRaw  bool
		suppressAddr bool
		specOut      string
	)

	rootCmd := &cobra.Command{
		Use:   "dismod",
		Short: "dismod disassembles MZ/NE/PE executable modules",
	}

	dumpCmd := &cobra.Command{
		Use:   "dump [files...]",
		Short: "print container headers, optionally as tables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := runOptions{table: tableFlag, resources: resourceFlag}
			return runAll(args, opts)
		},
	}
	dumpCmd.Flags().BoolVar(&tableFlag, "table", false, "render tables instead of a flat field/value dump")
	dumpCmd.Flags().BoolVarP(&resourceFlag, "resources", "r", false, "also print embedded resources")

	disasmCmd := &cobra.Command{
		Use:   "disasm [files...]",
		Short: "disassemble code reachable from every entry point",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := runOptions{
				disassemble: true,
				listing: render.ListingOptions{
					Syntax:        parseSyntax(syntaxFlag),
					SuppressRaw:   suppressRaw,
					SuppressAddrs: suppressAddr,
					NoColor:       noColor,
				},
			}
			return runAll(args, opts)
		},
	}
	disasmCmd.Flags().StringVar(&syntaxFlag, "syntax", xfmt.IntelNASM.String(), "assembly syntax: nasm, masm, or gas")
	disasmCmd.Flags().BoolVar(&noColor, "no-color", false, "disable ANSI highlighting of branch markers")
	disasmCmd.Flags().BoolVar(&suppressRaw, "no-raw", false, "omit the raw instruction bytes column")
	disasmCmd.Flags().BoolVar(&suppressAddr, "no-addr", false, "omit the address column")

	specCmd := &cobra.Command{
		Use:   "spec <file>",
		Short: "emit an export specfile for a single module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := specOut
			if out == "" {
				out = "-"
			}
			return runOnce(args[0], runOptions{specOut: out})
		},
	}
	specCmd.Flags().StringVarP(&specOut, "output", "o", "", "write to this path instead of stdout")

	rootCmd.AddCommand(dumpCmd, disasmCmd, specCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dismod: %v\n", err)
		os.Exit(1)
	}
}

func runAll(files []string, opts runOptions) error {
	failed := 0
	for _, path := range files {
		if err := runOnce(path, opts); err != nil {
			fmt.Fprintf(os.Stderr, "dismod: %s: %v\n", path, err)
			failed++
		}
	}
	if failed != 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(files))
	}
	return nil
}
