package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/faroslabs/faros/pkg/query"
)

const tablePadding = 2

// Write renders the rows against the column set as an aligned table.
// Output is a pure function of its inputs: the same column set and rows
// produce byte-identical text. Rows render in the order given; the
// renderer never reorders them.
func Write(out io.Writer, cols ColumnSet, rows []query.Row) error {
	tw := tabwriter.NewWriter(out, 0, 0, tablePadding, ' ', 0)

	if _, err := fmt.Fprintln(tw, strings.Join(cols.Headers(), "\t")); err != nil {
		return fmt.Errorf("failed to write table header: %w", err)
	}

	cells := make([]string, len(cols))
	for _, row := range rows {
		for i, col := range cols {
			cells[i] = col.Value(row)
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return fmt.Errorf("failed to write table row: %w", err)
		}
	}

	return tw.Flush()
}

// WriteSimple renders a fixed-column table from pre-extracted cells,
// for listings that have no dynamic columns (images, container
// environments). Empty cells render as the None placeholder.
func WriteSimple(out io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(out, 0, 0, tablePadding, ' ', 0)

	if _, err := fmt.Fprintln(tw, strings.Join(headers, "\t")); err != nil {
		return fmt.Errorf("failed to write table header: %w", err)
	}

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = orNone(cell)
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return fmt.Errorf("failed to write table row: %w", err)
		}
	}

	return tw.Flush()
}
