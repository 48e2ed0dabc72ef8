package iocache

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/huangsam/ecoscore/schema"
)

const statusTimeLayout = "2006-01-02 15:04:05"

// PrintCacheStatus prints cache status information.
func PrintCacheStatus(out io.Writer, status schema.CacheStatus) {
	_, _ = fmt.Fprintf(out, "Cache Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(out, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(out, "Total Entries: %d\n", status.TotalEntries)
	if status.TotalEntries > 0 {
		_, _ = fmt.Fprintf(out, "Last Entry: %s\n", status.LastEntryTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(out, "Oldest Entry: %s\n", status.OldestEntryTime.Format(statusTimeLayout))
	}
	_, _ = fmt.Fprintf(out, "Table Size: %d bytes\n", status.TableSizeBytes)
}

// PrintHistoryStatus prints run history status information.
func PrintHistoryStatus(out io.Writer, status schema.HistoryStatus) {
	_, _ = fmt.Fprintf(out, "History Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(out, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(out, "Schema Version: %d\n", status.SchemaVersion)
	_, _ = fmt.Fprintf(out, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(out, "Last Run ID: %d\n", status.LastRunID)
		_, _ = fmt.Fprintf(out, "Last Run: %s\n", status.LastRunTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(out, "Oldest Run: %s\n", status.OldestRunTime.Format(statusTimeLayout))
		_, _ = fmt.Fprintf(out, "Total Units Analyzed: %d\n", status.TotalUnitsAnalyzed)
	}
	_, _ = fmt.Fprintln(out, "Table Sizes:")
	for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
		_, _ = fmt.Fprintf(out, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}
