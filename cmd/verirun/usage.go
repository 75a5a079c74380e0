package main

import (
	"io"
	"strings"

	"github.com/verirun/verirun/proc"
)

// helpRequested returns true if any canonical help token is present.
func helpRequested(args []string) bool {
	for _, a := range args {
		if a == "--help" || a == "-h" || a == "help" {
			return true
		}
	}
	return false
}

// versionRequested returns true if any canonical version token is present.
func versionRequested(args []string) bool {
	for _, a := range args {
		if a == "--version" || a == "-version" {
			return true
		}
	}
	return false
}

// printUsage writes a comprehensive usage guide to w.
func printUsage(w io.Writer) {
	var b strings.Builder
	b.WriteString("verirun — runs guest programs on embedded engines and verifies their output\n\n")
	b.WriteString("Usage:\n  verirun -suite <manifest> [flags]\n  verirun -show <run-id> -report-dir <dir>\n  verirun -print-schema\n\n")
	b.WriteString("Flags:\n")
	b.WriteString("  -suite string\n    Path to a YAML suite manifest to run\n")
	b.WriteString("  -show string\n    Print a stored run report by run ID (pair with -report-dir)\n")
	b.WriteString("  -print-schema\n    Print the suite manifest JSON schema and exit\n")
	b.WriteString("  -report-dir string\n    Directory for run reports (default: a fresh temp directory)\n")
	b.WriteString("  -report-cache int\n    Run reports kept in memory in front of the report dir (default 5)\n")
	b.WriteString("  -audit string\n    Append one JSON line per finished case to this file\n")
	b.WriteString("  --version | -version\n    Print version and exit\n")
	b.WriteString("\nEnvironment:\n")
	b.WriteString("  " + proc.EnvAOTImage + "\n    Run guest programs through this ahead-of-time compiled launcher instead of the embedded engines\n")
	b.WriteString("  " + proc.EnvAOTArgs + "\n    Extra launcher arguments inserted before the program path\n")
	b.WriteString("\nExit codes:\n")
	b.WriteString("  0  every case passed\n")
	b.WriteString("  1  failed or errored cases, or a runtime failure\n")
	b.WriteString("  2  command line misuse\n")
	b.WriteString("\nExamples:\n")
	b.WriteString("  # Run a suite and keep the reports\n")
	b.WriteString("  verirun -suite ./suites/smoke.yaml -report-dir ./reports\n\n")
	b.WriteString("  # Inspect a stored report\n")
	b.WriteString("  verirun -show 3f2a... -report-dir ./reports\n")
	safeFprintln(w, strings.TrimRight(b.String(), "\n"))
}
