package output

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pricelens/pricelens/internal/core"
)

func sampleRun() *core.PriceRun {
	return &core.PriceRun{
		RunID:  "run-1",
		League: "Standard",
		Ratio:  core.ExchangeRatio{League: "Standard", Ratio: 150, FromCache: true},
		Reports: []*core.ItemReport{
			{
				Name:       "Mageblood",
				Samples:    []float64{10, 300},
				Average:    155,
				HasAverage: true,
				Listings:   3,
			},
			{Name: "Pipe|Name", Samples: []float64{}, Error: "trade search: unexpected status 503"},
			{Name: "Unlisted", Samples: []float64{}},
		},
	}
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("table")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	format, err = ParseFormat("JSON")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, format)

	format, err = ParseFormat("md")
	require.NoError(t, err)
	require.Equal(t, FormatMarkdown, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatTable, format)

	_, err = ParseFormat("csv")
	require.Error(t, err)
}

func TestTableFormatRun(t *testing.T) {
	rendered, err := NewFormatter(FormatTable).FormatRun(sampleRun())
	require.NoError(t, err)
	require.Contains(t, rendered, "Mageblood")
	require.Contains(t, rendered, "155.0c")
	require.Contains(t, rendered, "10.0c - 300.0c")
	require.Contains(t, rendered, "2/3")
	require.Contains(t, rendered, "no prices")
	require.Contains(t, rendered, "2/3 priced, 1 failed")
}

func TestMarkdownFormatRunEscapesCells(t *testing.T) {
	rendered, err := NewFormatter(FormatMarkdown).FormatRun(sampleRun())
	require.NoError(t, err)
	require.Contains(t, rendered, "## Standard prices")
	require.Contains(t, rendered, "| Mageblood | 155.0c | 2/3 | 10.0c - 300.0c |  |")
	require.Contains(t, rendered, `Pipe\|Name`)
	require.Contains(t, rendered, "**Summary**: 2/3 priced, 1 failed")
}

func TestJSONFormatRun(t *testing.T) {
	rendered, err := NewFormatter(FormatJSON).FormatRun(sampleRun())
	require.NoError(t, err)

	var decoded core.PriceRun
	require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
	require.Equal(t, "run-1", decoded.RunID)
	require.Len(t, decoded.Reports, 3)
	require.Equal(t, []float64{10, 300}, decoded.Reports[0].Samples)
}

func TestFormatHistory(t *testing.T) {
	recorded := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	snapshots := []core.PriceSnapshot{
		{League: "Standard", Item: "Mageblood", Average: 155, HasAverage: true, Samples: []float64{10, 300}, Ratio: 150, RecordedAt: recorded},
	}

	rendered, err := NewFormatter(FormatMarkdown).FormatHistory(snapshots)
	require.NoError(t, err)
	require.Contains(t, rendered, "| 2025-01-01T12:00:00Z | Standard | Mageblood | 155.0c | 2 | 150.0c |")

	rendered, err = NewFormatter(FormatTable).FormatHistory(nil)
	require.NoError(t, err)
	require.Equal(t, "No price history recorded.", rendered)

	rendered, err = NewFormatter(FormatJSON).FormatHistory(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", rendered)
}

func TestFormatRatio(t *testing.T) {
	updated := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	ratio := core.ExchangeRatio{League: "Standard", Ratio: 187.25, UpdatedAt: updated, FromCache: true}
	now := updated.Add(90 * time.Minute)

	rendered, err := NewFormatter(FormatJSON).FormatRatio(ratio, now)
	require.NoError(t, err)
	require.Contains(t, rendered, `"age_seconds": 5400`)
	require.Contains(t, rendered, `"ratio": 187.25`)

	rendered, err = NewFormatter(FormatTable).FormatRatio(ratio, now)
	require.NoError(t, err)
	require.Contains(t, rendered, "187.25")
	require.Contains(t, rendered, "1h30m0s")
	require.Contains(t, rendered, "cached")
}
