package output

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pricelens/pricelens/internal/core"
)

// TableFormatter renders results as an ASCII table.
type TableFormatter struct{}

// FormatRun renders a price run as a table.
func (f *TableFormatter) FormatRun(run *core.PriceRun) (string, error) {
	if run == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetTitle(fmt.Sprintf("%s (1 divine = %s, %s)", run.League, formatChaos(run.Ratio.Ratio), ratioSource(run.Ratio)))
	t.AppendHeader(table.Row{"Item", "Average", "Samples", "Range", "Notes"})

	for _, report := range run.Reports {
		if report == nil {
			continue
		}
		t.AppendRow(table.Row{
			report.Name,
			averageLabel(report),
			fmt.Sprintf("%d/%d", len(report.Samples), report.Listings),
			rangeLabel(report.Samples),
			report.Error,
		})
	}

	t.SetCaption(runSummary(run))
	return t.Render(), nil
}

// FormatHistory renders stored snapshots as a table.
func (f *TableFormatter) FormatHistory(snapshots []core.PriceSnapshot) (string, error) {
	if len(snapshots) == 0 {
		return "No price history recorded.", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Recorded", "League", "Item", "Average", "Samples", "Ratio"})
	for _, snapshot := range snapshots {
		t.AppendRow(table.Row{
			snapshot.RecordedAt.Local().Format(time.DateTime),
			snapshot.League,
			snapshot.Item,
			snapshotAverage(snapshot),
			len(snapshot.Samples),
			formatChaos(snapshot.Ratio),
		})
	}
	return t.Render(), nil
}

// FormatRatio renders an exchange ratio as a single-row table.
func (f *TableFormatter) FormatRatio(ratio core.ExchangeRatio, now time.Time) (string, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"League", "Chaos per Divine", "Updated", "Age", "Source"})
	t.AppendRow(table.Row{
		ratio.League,
		fmt.Sprintf("%.2f", ratio.Ratio),
		ratio.UpdatedAt.Local().Format(time.DateTime),
		ratioAge(ratio, now),
		ratioSource(ratio),
	})
	return t.Render(), nil
}
