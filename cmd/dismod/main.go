// dismod disassembles MZ, NE, and PE/PE+ executable modules: it
// identifies the container format, parses its headers and directories,
// walks relocations, reconstructs a disassembly of reachable code, and
// can print resources or emit an export specfile.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/xyproto/dismod/internal/analyze"
	"github.com/xyproto/dismod/internal/config"
	"github.com/xyproto/dismod/internal/diag"
	"github.com/xyproto/dismod/internal/fswatch"
	"github.com/xyproto/dismod/internal/render"
	"github.com/xyproto/dismod/internal/specfile"
	"github.com/xyproto/dismod/internal/xfmt"
)

const versionString = "dismod 1.0.0"

func main() {
	if len(os.Args) > 1 && cobraSubcommands[os.Args[1]] {
		runCobra()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "dismod: %v\n", err)
		os.Exit(1)
	}

	var (
		versionShort = flag.Bool("V", false, "print version information and exit")
		version      = flag.Bool("version", false, "print version information and exit")
		disasmFlag   = flag.Bool("d", false, "disassemble code reachable from every entry point")
		disasmLong   = flag.Bool("disasm", false, "shorthand for -d")
		headerFlag   = flag.Bool("p", false, "print container headers")
		tableFlag    = flag.Bool("table", false, "render segment/section/import/export tables instead of a flat dump")
		resourceFlag = flag.Bool("r", false, "print embedded resources (NE/PE only)")
		specOut      = flag.String("o", "", "write an export specfile to this path (\"-\" for stdout)")
		syntaxFlag   = flag.String("syntax", string(cfg.Syntax), "assembly syntax: nasm, masm, or gas")
		noColor      = flag.Bool("no-color", cfg.NoColor, "disable ANSI highlighting of branch markers")
		suppressRaw  = flag.Bool("no-raw", cfg.SuppressRaw, "omit the raw instruction bytes column")
		suppressAddr = flag.Bool("no-addr", cfg.SuppressAddrs, "omit the address column")
		jsonDiag     = flag.Bool("json-diagnostics", false, "emit recovered diagnostics as structured JSON instead of plain text")
		watchFlag    = flag.Bool("watch", false, "re-run analysis when the input file changes on disk")
		peRelative   = flag.String("pe-relative", cfg.PERelative, "PE address display: on (section-relative), off (absolute VA), or auto (EXE absolute, DLL relative)")
	)
	flag.Parse()

	peRelativeExplicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "pe-relative" {
			peRelativeExplicit = true
		}
	})

	if *version || *versionShort {
		fmt.Println(versionString)
		os.Exit(0)
	}

	disassemble := *disasmFlag || *disasmLong
	syntax := parseSyntax(*syntaxFlag)

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: dismod [flags] file...")
		os.Exit(2)
	}

	opts := runOptions{
		disassemble:        disassemble,
		header:             *headerFlag,
		table:              *tableFlag,
		resources:          *resourceFlag,
		specOut:            *specOut,
		listing:            render.ListingOptions{Syntax: syntax, SuppressRaw: *suppressRaw, SuppressAddrs: *suppressAddr, NoColor: *noColor},
		jsonDiag:           *jsonDiag,
		peRelative:         *peRelative,
		peRelativeExplicit: peRelativeExplicit,
	}

	status := 0
	for _, path := range files {
		if err := runOnce(path, opts); err != nil {
			fmt.Fprintf(os.Stderr, "dismod: %s: %v\n", path, err)
			status = 1
		}
	}

	if *watchFlag {
		if len(files) != 1 {
			fmt.Fprintln(os.Stderr, "dismod: -watch requires exactly one input file")
			os.Exit(2)
		}
		watch(files[0], opts)
		return
	}

	os.Exit(status)
}

func parseSyntax(s string) xfmt.Syntax {
	switch config.Syntax(s) {
	case config.SyntaxIntelMASM:
		return xfmt.IntelMASM
	case config.SyntaxATTGAS:
		return xfmt.ATTGAS
	default:
		return xfmt.IntelNASM
	}
}

type runOptions struct {
	disassemble bool
	header      bool // force header printing even alongside -o
	table       bool
	resources   bool
	specOut     string
	listing     render.ListingOptions
	jsonDiag    bool

	peRelative         string // "on", "off", or "auto"
	peRelativeExplicit bool   // true if -pe-relative was passed explicitly
}

func runOnce(path string, opts runOptions) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var sink diag.Sink
	if opts.jsonDiag {
		zapSink, err := diag.NewZapSink(os.Stderr)
		if err != nil {
			return err
		}
		sink = diag.NewDedupSink(zapSink)
	} else {
		sink = diag.NewDedupSink(diag.NewTextSink(os.Stderr))
	}

	result, err := analyze.Load(raw, opts.disassemble, sink)
	if err != nil {
		return err
	}
	opts.listing.ShowAbsolute = showAbsolute(result, opts)

	fmt.Printf("%s: %s\n", path, result.Format)
	if opts.specOut == "" || opts.header {
		printHeader(result, opts)
	}

	if opts.resources {
		printResources(result)
	}

	if opts.specOut != "" {
		exports := exportsOf(result)
		if opts.specOut == "-" {
			return specfile.Write(os.Stdout, exports)
		}
		f, err := os.Create(opts.specOut)
		if err != nil {
			return err
		}
		defer f.Close()
		return specfile.Write(f, exports)
	}

	if opts.disassemble && result.Scanner != nil {
		render.Listing(os.Stdout, result.Arena, result.Scanner, opts.listing)
	}
	return nil
}

func watch(path string, opts runOptions) {
	w, err := fswatch.New(func(changed string) {
		fmt.Printf("--- %s changed, re-running ---\n", changed)
		if err := runOnce(changed, opts); err != nil {
			fmt.Fprintf(os.Stderr, "dismod: %s: %v\n", changed, err)
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "dismod: watch: %v\n", err)
		os.Exit(1)
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		fmt.Fprintf(os.Stderr, "dismod: watch: %v\n", err)
		os.Exit(1)
	}
	w.Run()
}
