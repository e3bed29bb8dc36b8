package output

import (
	"encoding/json"
	"time"

	"github.com/pricelens/pricelens/internal/core"
)

// JSONFormatter renders results as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatRun renders a price run as JSON.
func (f *JSONFormatter) FormatRun(run *core.PriceRun) (string, error) {
	if run == nil {
		return "", nil
	}
	return f.marshal(run)
}

// FormatHistory renders stored snapshots as a JSON array.
func (f *JSONFormatter) FormatHistory(snapshots []core.PriceSnapshot) (string, error) {
	if snapshots == nil {
		snapshots = []core.PriceSnapshot{}
	}
	return f.marshal(snapshots)
}

// FormatRatio renders an exchange ratio with its age in seconds.
func (f *JSONFormatter) FormatRatio(ratio core.ExchangeRatio, now time.Time) (string, error) {
	return f.marshal(struct {
		core.ExchangeRatio
		AgeSeconds int64 `json:"age_seconds"`
	}{ratio, int64(ratio.Age(now).Seconds())})
}

func (f *JSONFormatter) marshal(value any) (string, error) {
	var (
		data []byte
		err  error
	)

	if f.Indent {
		data, err = json.MarshalIndent(value, "", "  ")
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return "", err
	}

	return string(data), nil
}
