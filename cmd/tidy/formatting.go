package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/tidy/pkg/executor"
	"github.com/arthur-debert/tidy/pkg/oplog"
)

// formatBold returns the string formatted as bold using pterm
func formatBold(s string) string {
	// Only apply formatting if output is a terminal
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// printResult renders a Result to stdout: summary, planned actions for
// dry runs, and any per-file failures.
func printResult(result executor.Result) {
	if result.DryRun {
		fmt.Printf("%s %s\n", formatBold("[dry run]"), result.Summary)
		for _, action := range result.Planned {
			fmt.Printf("  %s\n", action)
		}
	} else {
		fmt.Println(result.Summary)
	}

	if len(result.Failures) > 0 {
		fmt.Printf("%s\n", formatBold(fmt.Sprintf("%d file(s) failed:", len(result.Failures))))
		for _, failure := range result.Failures {
			fmt.Printf("  %s: %s\n", failure.Path, failure.Err)
		}
	}
}

// printGroups renders duplicate groups with keep/remove designations.
func printGroups(result executor.Result) {
	for i, group := range result.Groups {
		fmt.Printf("%s (sha256 %s…)\n", formatBold(fmt.Sprintf("group %d", i+1)), group.Digest[:12])
		fmt.Printf("  keep   %s\n", group.Keep())
		for _, dup := range group.Duplicates() {
			fmt.Printf("  remove %s\n", dup)
		}
	}
}

// printRecords renders operation-log records, oldest first.
func printRecords(records []oplog.Record) {
	for _, rec := range records {
		marker := " "
		if rec.DryRun {
			marker = "~"
		}
		fmt.Printf("%s #%d %s %s [%s] %s\n",
			marker, rec.Seq, rec.Time.Format("2006-01-02 15:04:05"),
			humanize.Time(rec.Time), rec.Outcome, rec.Summary)
		for _, path := range rec.Paths {
			fmt.Printf("      %s\n", path)
		}
	}
}
