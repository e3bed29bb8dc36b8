package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/pricelens/pricelens/internal/core"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formatter renders price runs, stored history and exchange ratios.
type Formatter interface {
	FormatRun(run *core.PriceRun) (string, error)
	FormatHistory(snapshots []core.PriceSnapshot) (string, error)
	FormatRatio(ratio core.ExchangeRatio, now time.Time) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

func formatChaos(value float64) string {
	return fmt.Sprintf("%.1fc", value)
}

func averageLabel(report *core.ItemReport) string {
	switch {
	case report.Error != "":
		return "error"
	case !report.HasAverage:
		return "no prices"
	default:
		return formatChaos(report.Average)
	}
}

func snapshotAverage(snapshot core.PriceSnapshot) string {
	if !snapshot.HasAverage {
		return "no prices"
	}
	return formatChaos(snapshot.Average)
}

func rangeLabel(samples []float64) string {
	if len(samples) == 0 {
		return ""
	}
	low, high := samples[0], samples[0]
	for _, v := range samples[1:] {
		if v < low {
			low = v
		}
		if v > high {
			high = v
		}
	}
	if low == high {
		return formatChaos(low)
	}
	return formatChaos(low) + " - " + formatChaos(high)
}

func ratioSource(ratio core.ExchangeRatio) string {
	if ratio.FromCache {
		return "cached"
	}
	return "refreshed"
}

func ratioAge(ratio core.ExchangeRatio, now time.Time) string {
	return ratio.Age(now).Truncate(time.Minute).String()
}

func runSummary(run *core.PriceRun) string {
	priced := len(run.Reports) - run.Failed()
	summary := fmt.Sprintf("%d/%d priced", priced, len(run.Reports))
	if failed := run.Failed(); failed > 0 {
		summary += fmt.Sprintf(", %d failed", failed)
	}
	return summary
}
