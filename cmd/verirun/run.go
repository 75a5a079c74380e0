package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"

	"github.com/verirun/verirun/engine"
	"github.com/verirun/verirun/engine/jsengine"
	"github.com/verirun/verirun/engine/wasmengine"
	"github.com/verirun/verirun/harness"
)

// runSuite loads the manifest, runs every case and stores the report.
// Interrupt aborts the remaining cases via context cancellation.
func runSuite(cfg cliConfig, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	suite, err := harness.LoadSuite(cfg.suitePath)
	if err != nil {
		safeFprintf(stderr, "error: %v\n", err)
		return 1
	}

	engines, err := engine.NewRegistry(jsengine.New(), wasmengine.New())
	if err != nil {
		safeFprintf(stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		if cerr := engines.Close(); cerr != nil {
			safeFprintf(stderr, "warning: closing engines: %v\n", cerr)
		}
	}()

	runner := &harness.Runner{Engines: engines}
	if cfg.auditPath != "" {
		runner.Events = harness.NewEventLog(cfg.auditPath)
	}

	report, err := runner.RunSuite(ctx, suite)
	if err != nil {
		safeFprintf(stderr, "error: %v\n", err)
		return 1
	}

	disk := harness.NewDiskStore(cfg.reportDir)
	store := harness.NewLRUStore(cfg.cacheSize, disk)
	if err := store.Save(report); err != nil {
		safeFprintf(stderr, "warning: saving report: %v\n", err)
	} else if dir, dirErr := disk.Dir(); dirErr == nil {
		safeFprintf(stdout, "report %s stored in %s\n", report.ID, dir)
	}

	printReport(stdout, report)
	if !report.Ok() {
		return 1
	}
	return 0
}

// showReport prints a stored run report as indented JSON. Pair it with
// the -report-dir the report was stored in.
func showReport(cfg cliConfig, stdout, stderr io.Writer) int {
	store := harness.NewDiskStore(cfg.reportDir)
	report, err := store.Load(cfg.showRunID)
	if err != nil {
		safeFprintf(stderr, "error: %v\n", err)
		return 1
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		safeFprintf(stderr, "error: encoding report: %v\n", err)
		return 1
	}
	safeFprintln(stdout, string(data))
	return 0
}

// printSuiteSchema writes the JSON schema for suite manifests.
func printSuiteSchema(stdout, stderr io.Writer) int {
	schema, err := harness.SuiteSchema()
	if err != nil {
		safeFprintf(stderr, "error: %v\n", err)
		return 1
	}
	safeFprintln(stdout, string(schema))
	return 0
}

// printReport writes one line per case followed by a summary line.
func printReport(w io.Writer, r *harness.RunReport) {
	for _, cr := range r.Cases {
		switch cr.Verdict {
		case harness.VerdictPass:
			safeFprintf(w, "ok   %s (%dms)\n", cr.Name, cr.MS)
		case harness.VerdictFail:
			safeFprintf(w, "FAIL %s: %s\n", cr.Name, cr.Detail)
		default:
			safeFprintf(w, "ERR  %s: %s\n", cr.Name, cr.Detail)
		}
	}
	safeFprintf(w, "%s: %d passed, %d failed, %d errors (run %s)\n",
		r.Suite, r.Passed, r.Failed, r.Errors, r.ID)
}
