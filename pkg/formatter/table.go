package formatter

import (
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/younsl/jj/internal/errs"
	"github.com/younsl/jj/internal/models"
)

// columnGap separates columns in plain tables
const columnGap = "  "

// StylePlain renders cells only: no header, borders or separator lines
var StylePlain = table.Style{
	Name: "StylePlain",
	Box: table.BoxStyle{
		MiddleVertical: columnGap,
	},
	Options: table.Options{
		DrawBorder:      false,
		SeparateColumns: true,
		SeparateFooter:  false,
		SeparateHeader:  false,
		SeparateRows:    false,
	},
}

// RenderPlain formats rows as a left-aligned plain table, one row per line
// and no trailing newline. No rows renders as the empty string.
func RenderPlain(rows []models.DisplayRow) string {
	if len(rows) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(StylePlain)

	configs := make([]table.ColumnConfig, 0, 5)
	for i := 1; i <= 5; i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		tw.AppendRow(table.Row{row.InstanceType, row.VCPU, row.ClockSpeed, row.Memory, row.Price})
	}
	return tw.Render()
}

// WriteTableFile renders rows and writes them to path, replacing any existing
// content. Parent directories are created as needed.
func WriteTableFile(path string, rows []models.DisplayRow) (int, error) {
	const op = "formatter.WriteTableFile"

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, errs.E(errs.KindIO, op, err)
		}
	}

	content := RenderPlain(rows)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return 0, errs.E(errs.KindIO, op, err)
	}
	return len(content), nil
}
