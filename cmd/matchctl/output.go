// cmd/matchctl/output.go
package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"unimatch/internal/models"
)

const maxReasonWidth = 60

var (
	strongColor  = color.New(color.FgGreen, color.Bold)
	fairColor    = color.New(color.FgYellow)
	weakColor    = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow, color.Bold)
)

// colorPercentage renders a match percentage: green from 80, yellow from 60.
func colorPercentage(p int) string {
	text := strconv.Itoa(p) + "%"
	switch {
	case p >= 80:
		return strongColor.Sprint(text)
	case p >= 60:
		return fairColor.Sprint(text)
	default:
		return weakColor.Sprint(text)
	}
}

func writeMatchTable(w io.Writer, results []models.MatchResult) error {
	return writeResultsTable(w, results, 0)
}

func writeDiscoveryTable(w io.Writer, resp *models.DiscoveryResponse) error {
	offset := (resp.Pagination.CurrentPage - 1) * resp.Pagination.Limit
	if err := writeResultsTable(w, resp.Results, offset); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Page %d of %d (%d results, %d filters applied, search %s)\n",
		resp.Pagination.CurrentPage, resp.Pagination.TotalPages, resp.Pagination.TotalResults,
		resp.Filters.Applied, resp.SearchID); err != nil {
		return err
	}
	if r := resp.Restricted; r != nil {
		_, err := warningColor.Fprintf(w, "Showing %d of %d matches (%s). Upgrade to see every result.\n",
			r.Showing, r.ActualTotal, r.Reason)
		return err
	}
	return nil
}

func writeResultsTable(w io.Writer, results []models.MatchResult, offset int) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "University", "Location", "Match", "Tuition", "Reasons"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for i, r := range results {
		data = append(data, []string{
			strconv.Itoa(offset + i + 1),
			r.University.Name,
			location(&r.University),
			colorPercentage(r.MatchPercentage),
			tuition(r.University.Financials.TuitionOutState),
			truncate(strings.Join(r.Reasons, "; "), maxReasonWidth),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func location(u *models.University) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.City, u.State, u.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func tuition(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("$%.0f", *v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
