package formatter

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/younsl/jj/internal/models"
)

// PrintRenderSummary prints one line per written table followed by totals
func PrintRenderSummary(w io.Writer, results []models.TableResult, startTime time.Time, duration time.Duration) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No tables written.")
		return
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"REGION", "INSTANCE TYPES", "SIZE", "PATH"})

	var totalRows int
	var totalBytes uint64
	for _, result := range results {
		tw.AppendRow(table.Row{
			result.Region,
			humanize.Comma(int64(result.Rows)),
			humanize.Bytes(uint64(result.Bytes)),
			result.Path,
		})
		totalRows += result.Rows
		totalBytes += uint64(result.Bytes)
	}
	tw.AppendFooter(table.Row{"Total", humanize.Comma(int64(totalRows)), humanize.Bytes(totalBytes), ""})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	fmt.Fprintln(w, tw.Render())
	printTimestamp(w, startTime, duration)
}

// printTimestamp prints the run timestamp and duration
func printTimestamp(w io.Writer, startTime time.Time, duration time.Duration) {
	fmt.Fprintf(w, "Completed at %s (took %.2fs)\n", startTime.Format("2006-01-02 15:04:05"), duration.Seconds())
}
