// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ManuGH/scenecue/internal/config"
	"github.com/ManuGH/scenecue/internal/version"
)

// defaultConfigEnv names the variable pointing at the config file when
// --config is not given.
const defaultConfigEnv = "SCENECUE_CONFIG"

func runConfigCLI(args []string) int {
	return configCLI(args, os.Stdout, os.Stderr)
}

func configCLI(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printConfigUsage(stderr)
		return 0
	}

	switch args[0] {
	case "validate":
		return runConfigValidate(args[1:], stdout, stderr)
	case "dump":
		return runConfigDump(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "Unknown subcommand: %s\n\n", args[0])
		printConfigUsage(stderr)
		return 2
	}
}

func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  scenecue config validate [--file|-f config.yaml]")
	fmt.Fprintln(w, "  scenecue config dump [--file|-f config.yaml] [--format=yaml|json]")
}

func resolveDefaultConfigPath() string {
	return strings.TrimSpace(os.Getenv(defaultConfigEnv))
}

func configFlags(name string, stderr io.Writer) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	var file string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	return fs, &file
}

func loadForCLI(file string, stderr io.Writer) (config.AppConfig, bool) {
	path := strings.TrimSpace(file)
	if path == "" {
		path = resolveDefaultConfigPath()
	}
	cfg, err := config.NewLoader(path, version.Version).Load()
	if err != nil {
		source := path
		if source == "" {
			source = "environment"
		}
		fmt.Fprintf(stderr, "Configuration error in %s:\n  %v\n", source, err)
		return cfg, false
	}
	return cfg, true
}

func runConfigValidate(args []string, stdout, stderr io.Writer) int {
	fs, file := configFlags("scenecue config validate", stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if _, ok := loadForCLI(*file, stderr); !ok {
		return 1
	}
	fmt.Fprintln(stdout, "configuration is valid")
	return 0
}

func runConfigDump(args []string, stdout, stderr io.Writer) int {
	fs, file := configFlags("scenecue config dump", stderr)
	format := fs.String("format", "yaml", "output format: yaml or json")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, ok := loadForCLI(*file, stderr)
	if !ok {
		return 1
	}
	fileCfg := config.ToFileConfig(cfg)
	config.RedactSecrets(&fileCfg)

	switch strings.ToLower(strings.TrimSpace(*format)) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(fileCfg); err != nil {
			fmt.Fprintf(stderr, "Failed to encode YAML: %v\n", err)
			return 1
		}
		_ = enc.Close()
		return 0
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(fileCfg); err != nil {
			fmt.Fprintf(stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(stderr, "Unsupported format: %s (use yaml or json)\n", *format)
		return 2
	}
}
