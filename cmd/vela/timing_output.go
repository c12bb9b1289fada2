package main

import (
	"fmt"
	"io"

	"vela/internal/driver"
	"vela/internal/observ"
)

// printRunTimings prints the per-stage totals across every finished unit.
func printRunTimings(out io.Writer, results []driver.UnitResult) {
	if out == nil {
		return
	}
	var reports []observ.Report
	for _, r := range results {
		if r.Timing != nil {
			reports = append(reports, *r.Timing)
		}
	}
	if len(reports) == 0 {
		return
	}
	total := observ.Aggregate(reports...)
	fmt.Fprint(out, total.Summary())
}
