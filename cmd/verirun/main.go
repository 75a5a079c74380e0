// Command verirun runs suites of guest programs on embedded engines
// and verifies their output and exit codes against native reference
// runs or explicit expectations.
package main

import (
	"io"
	"os"
)

func main() {
	os.Exit(cliMain(os.Args[1:], os.Stdout, os.Stderr))
}

// cliMain is the testable entrypoint. It accepts argv without the
// program name plus the output streams and returns the intended
// process exit code: 0 on success, 1 when the run failed, 2 on
// command line misuse.
func cliMain(args []string, stdout, stderr io.Writer) int {
	// Help and version win over any parsing or validation.
	if helpRequested(args) {
		printUsage(stdout)
		return 0
	}
	if versionRequested(args) {
		printVersion(stdout)
		return 0
	}

	cfg, exitOn := parseFlags(args, stderr)
	if exitOn != 0 {
		printUsage(stderr)
		return exitOn
	}

	switch {
	case cfg.printSchema:
		return printSuiteSchema(stdout, stderr)
	case cfg.showRunID != "":
		return showReport(cfg, stdout, stderr)
	default:
		return runSuite(cfg, stdout, stderr)
	}
}
