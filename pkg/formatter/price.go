package formatter

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/younsl/jj/pkg/pricing"
)

// PrintPriceComparison shows the cached document price next to the Pricing API price
func PrintPriceComparison(w io.Writer, c pricing.Comparison) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"INSTANCE TYPE", "REGION", "DOCUMENT $/HR", "API $/HR", "DIFFERENCE"})
	tw.AppendRow(table.Row{
		c.InstanceType,
		c.Region,
		fmt.Sprintf("%.4f", c.DocumentPrice),
		fmt.Sprintf("%.4f", c.APIPrice),
		fmt.Sprintf("%+.4f", c.Difference()),
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	fmt.Fprintln(w, tw.Render())

	if c.Matches() {
		fmt.Fprintln(w, "✓ Prices match")
	} else {
		fmt.Fprintln(w, "✗ Prices differ; the cached document may be stale (run build-json)")
	}
}
