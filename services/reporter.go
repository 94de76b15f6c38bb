package services

import (
	"fmt"
	"io"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"

	"suumo-scraper/models"
)

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

// PrintReport renders the report as terminal tables.
func PrintReport(w io.Writer, r *models.Report, preview []*models.Listing) {
	fmt.Fprintf(w, "\nTotal number of properties matching criteria: %d\n\n", r.Total)

	if len(preview) > 0 {
		t := newTable(w, "First rows of the filtered data")
		t.AppendHeader(table.Row{"Building", "Station", "Rent (万円)", "Plan", "Size (m²)", "Age"})
		for _, l := range preview {
			age := "-"
			if l.BuildingAgeYears != nil {
				age = formatStat(*l.BuildingAgeYears)
			}
			t.AppendRow(table.Row{truncate(l.BuildingName, 24), truncate(l.StationText, 28),
				formatStat(l.Rent), l.FloorPlan, formatStat(l.SizeM2), age})
		}
		t.Render()
		fmt.Fprintln(w)
	}

	stats := newTable(w, "Summary Statistics")
	stats.AppendHeader(table.Row{"", "Rent (万円)", "Size (m²)"})
	stats.AppendRows([]table.Row{
		{"count", r.Rent.Count, r.Size.Count},
		{"mean", formatStat(r.Rent.Mean), formatStat(r.Size.Mean)},
		{"std", formatStat(r.Rent.Std), formatStat(r.Size.Std)},
		{"min", formatStat(r.Rent.Min), formatStat(r.Size.Min)},
		{"25%", formatStat(r.Rent.Q1), formatStat(r.Size.Q1)},
		{"50%", formatStat(r.Rent.Median), formatStat(r.Size.Median)},
		{"75%", formatStat(r.Rent.Q3), formatStat(r.Size.Q3)},
		{"max", formatStat(r.Rent.Max), formatStat(r.Size.Max)},
	})
	stats.Render()
	fmt.Fprintln(w)

	if len(r.StationOrder) > 0 {
		t := newTable(w, "Listings by Station")
		t.AppendHeader(table.Row{"Station", "Count"})
		for _, s := range r.StationOrder {
			t.AppendRow(table.Row{s, r.ByStation[s]})
		}
		t.Render()
		fmt.Fprintln(w)
	}

	if len(r.Distances) > 0 {
		t := newTable(w, "Walking Distance to Target Stations")
		t.AppendHeader(table.Row{"Station", "Building", "Walk (min)", "Rent (万円)"})
		for _, d := range r.Distances {
			walk := d.WalkMinutes
			if walk == "" {
				walk = "-"
			}
			t.AppendRow(table.Row{d.StationName, truncate(d.BuildingName, 24), walk, formatStat(d.Rent)})
		}
		t.Render()
		fmt.Fprintln(w)
	}
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.2f", v)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
