package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableView is one rendered table. Footer is optional.
type tableView struct {
	Headers []string
	Rows    [][]string
	Footer  []string
	Aligns  []columnAlignment
}

func (v tableView) row(values []string) table.Row {
	r := make(table.Row, len(v.Headers))
	for i := range r {
		if i < len(values) {
			r[i] = values[i]
		} else {
			r[i] = ""
		}
	}
	return r
}

func (v tableView) Render() string {
	columns := len(v.Headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(v.row(v.Headers))
	for _, values := range v.Rows {
		tw.AppendRow(v.row(values))
	}
	if len(v.Footer) > 0 {
		tw.AppendFooter(v.row(v.Footer))
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(v.Aligns) && v.Aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			AlignFooter: align,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
