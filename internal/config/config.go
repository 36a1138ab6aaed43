// Package config resolves dismod's option set from three layers,
// lowest priority first: built-in defaults, an optional .dismodrc.toml
// project file, then environment variables — with command-line flags
// (applied by the caller after Load returns) taking final precedence.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/xyproto/env/v2"
)

// Syntax is the default assembly-output syntax.
type Syntax string

const (
	SyntaxIntelNASM Syntax = "nasm"
	SyntaxIntelMASM Syntax = "masm"
	SyntaxATTGAS    Syntax = "gas"
)

// Config is the resolved option set dismod runs with for one
// invocation, before any per-flag overrides from the command line.
type Config struct {
	Syntax         Syntax `toml:"syntax"`
	DemangleNames  bool   `toml:"demangle_names"`
	NoColor        bool   `toml:"no_color"`
	PERelative     string `toml:"pe_relative"` // "auto", "on", "off"
	SuppressRaw    bool   `toml:"suppress_raw_bytes"`
	SuppressAddrs  bool   `toml:"suppress_addresses"`
	CompilableOut  bool   `toml:"compilable_output"`
	FullSections   bool   `toml:"full_section_contents"`
}

// Default returns the built-in baseline before any file or
// environment overrides are applied.
func Default() Config {
	return Config{
		Syntax:     SyntaxIntelNASM,
		PERelative: "auto",
	}
}

// projectFile is the filename Load looks for in the current
// directory, matching the teacher's convention of one dotfile per
// tool rather than a shared rc format.
const projectFile = ".dismodrc.toml"

// Load resolves a Config: defaults, then .dismodrc.toml if present in
// the current directory, then DISMOD_SYNTAX / DISMOD_NO_COLOR /
// DISMOD_RELATIVE environment variables.
func Load() (Config, error) {
	cfg := Default()

	if _, err := os.Stat(projectFile); err == nil {
		if _, err := toml.DecodeFile(projectFile, &cfg); err != nil {
			return cfg, err
		}
	}

	if s := env.Str("DISMOD_SYNTAX"); s != "" {
		cfg.Syntax = Syntax(s)
	}
	if _, ok := os.LookupEnv("DISMOD_NO_COLOR"); ok {
		cfg.NoColor = env.Bool("DISMOD_NO_COLOR")
	}
	if r := env.Str("DISMOD_RELATIVE"); r != "" {
		cfg.PERelative = r
	}

	return cfg, nil
}
