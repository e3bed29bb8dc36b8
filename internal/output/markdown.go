package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/pricelens/pricelens/internal/core"
)

// MarkdownFormatter renders results as markdown tables.
type MarkdownFormatter struct{}

// FormatRun renders a price run as Markdown.
func (f *MarkdownFormatter) FormatRun(run *core.PriceRun) (string, error) {
	if run == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s prices\n\n", escapeMarkdownCell(run.League)))
	sb.WriteString(fmt.Sprintf("1 divine = %s (%s)\n\n", formatChaos(run.Ratio.Ratio), ratioSource(run.Ratio)))
	sb.WriteString("| Item | Average | Samples | Range | Notes |\n")
	sb.WriteString("|------|---------|---------|-------|-------|\n")

	for _, report := range run.Reports {
		if report == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %d/%d | %s | %s |\n",
			escapeMarkdownCell(report.Name),
			escapeMarkdownCell(averageLabel(report)),
			len(report.Samples), report.Listings,
			escapeMarkdownCell(rangeLabel(report.Samples)),
			escapeMarkdownCell(report.Error),
		))
	}

	sb.WriteString(fmt.Sprintf("\n**Summary**: %s\n", runSummary(run)))
	return sb.String(), nil
}

// FormatHistory renders stored snapshots as Markdown.
func (f *MarkdownFormatter) FormatHistory(snapshots []core.PriceSnapshot) (string, error) {
	if len(snapshots) == 0 {
		return "_No price history recorded._\n", nil
	}

	var sb strings.Builder
	sb.WriteString("| Recorded | League | Item | Average | Samples | Ratio |\n")
	sb.WriteString("|----------|--------|------|---------|---------|-------|\n")
	for _, snapshot := range snapshots {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d | %s |\n",
			snapshot.RecordedAt.UTC().Format(time.RFC3339),
			escapeMarkdownCell(snapshot.League),
			escapeMarkdownCell(snapshot.Item),
			snapshotAverage(snapshot),
			len(snapshot.Samples),
			formatChaos(snapshot.Ratio),
		))
	}
	return sb.String(), nil
}

// FormatRatio renders an exchange ratio as Markdown.
func (f *MarkdownFormatter) FormatRatio(ratio core.ExchangeRatio, now time.Time) (string, error) {
	var sb strings.Builder
	sb.WriteString("| League | Chaos per Divine | Updated | Age | Source |\n")
	sb.WriteString("|--------|------------------|---------|-----|--------|\n")
	sb.WriteString(fmt.Sprintf("| %s | %.2f | %s | %s | %s |\n",
		escapeMarkdownCell(ratio.League),
		ratio.Ratio,
		ratio.UpdatedAt.UTC().Format(time.RFC3339),
		ratioAge(ratio, now),
		ratioSource(ratio),
	))
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
