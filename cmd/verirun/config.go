package main

import (
	"flag"
	"io"
)

// cliConfig holds the parsed command line options.
type cliConfig struct {
	suitePath   string
	showRunID   string
	printSchema bool
	reportDir   string
	auditPath   string
	cacheSize   int
}

// parseFlags parses args into a cliConfig. Exactly one of the three
// modes (-suite, -show, -print-schema) must be selected. The second
// return value is the intended exit code: 0 to continue, 2 on misuse.
func parseFlags(args []string, stderr io.Writer) (cliConfig, int) {
	var cfg cliConfig

	fs := flag.NewFlagSet("verirun", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {}
	fs.StringVar(&cfg.suitePath, "suite", "", "path to a YAML suite manifest to run")
	fs.StringVar(&cfg.showRunID, "show", "", "print a stored run report by run ID")
	fs.BoolVar(&cfg.printSchema, "print-schema", false, "print the suite manifest JSON schema and exit")
	fs.StringVar(&cfg.reportDir, "report-dir", "", "directory for run reports (default: a fresh temp directory)")
	fs.StringVar(&cfg.auditPath, "audit", "", "append one JSON line per finished case to this file")
	fs.IntVar(&cfg.cacheSize, "report-cache", 5, "run reports kept in memory in front of the report dir")
	if err := fs.Parse(args); err != nil {
		return cfg, 2 // CLI misuse
	}

	modes := 0
	for _, selected := range []bool{cfg.suitePath != "", cfg.showRunID != "", cfg.printSchema} {
		if selected {
			modes++
		}
	}
	if modes != 1 {
		safeFprintln(stderr, "error: exactly one of -suite, -show or -print-schema is required")
		return cfg, 2 // CLI misuse
	}
	return cfg, 0
}
