/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"chainguard.dev/gitmaint/maintenance"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

type column struct {
	header string
	align  tw.Align
	cell   func(maintenance.Result) string
}

// Pipes and newlines would break the markdown row.
var cellEscaper = strings.NewReplacer("|", `\|`, "\n", " ")

var columns = []column{
	{"Enlistment", tw.AlignLeft, func(r maintenance.Result) string { return r.Root }},
	{"Step", tw.AlignLeft, func(r maintenance.Result) string { return r.Area }},
	{"Outcome", tw.AlignCenter, outcome},
	{"Duration", tw.AlignRight, func(r maintenance.Result) string {
		return r.Duration.Round(time.Millisecond).String()
	}},
	{"Error", tw.AlignLeft, func(r maintenance.Result) string { return cellEscaper.Replace(r.Error()) }},
}

func outcome(r maintenance.Result) string {
	if r.Success() {
		return "ok"
	}
	return "❌ failed"
}

// Markdown renders results as a markdown table followed by a summary line.
// It reports whether any result failed.
func Markdown(results []maintenance.Result) (string, bool) {
	rows := make([][]string, 0, len(results))
	failed := 0
	for _, res := range results {
		if !res.Success() {
			failed++
		}
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = c.cell(res)
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	if err := render(&buf, rows); err != nil {
		fmt.Fprintf(&buf, "(table unavailable: %v)\n", err)
	}
	fmt.Fprintf(&buf, "\n%d/%d steps succeeded\n", len(results)-failed, len(results))
	return buf.String(), failed > 0
}

func render(w io.Writer, rows [][]string) error {
	headers := make([]string, len(columns))
	aligns := make([]tw.Align, len(columns))
	for i, c := range columns {
		headers[i] = c.header
		aligns[i] = c.align
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  tw.CellAlignment{PerColumn: aligns},
				Formatting: tw.CellFormatting{AutoFormat: tw.Off},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{PerColumn: aligns},
			},
			Behavior: tw.Behavior{TrimSpace: tw.Off},
		}),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{Left: tw.On, Right: tw.On, Top: tw.Off, Bottom: tw.Off},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
