package core

import "time"

// Currency is the unit tag attached to a listed price.
type Currency string

const (
	// CurrencyChaos is the base unit every price is normalized into.
	CurrencyChaos Currency = "chaos"
	// CurrencyDivine converts to the base unit through the exchange ratio.
	CurrencyDivine Currency = "divine"
)

// Price is a listed amount in a single currency.
type Price struct {
	Amount   float64  `json:"amount"`
	Currency Currency `json:"currency"`
}

// Listing is a single marketplace offer.
type Listing struct {
	ID    string `json:"id"`
	Price Price  `json:"price"`
}

// Item is a named trade query taken from configuration.
type Item struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

// ExchangeRatio is the amount of base unit per one alternate unit.
type ExchangeRatio struct {
	League    string    `json:"league"`
	Ratio     float64   `json:"ratio"`
	UpdatedAt time.Time `json:"updated_at"`
	FromCache bool      `json:"from_cache"`
}

// Age reports how old the ratio is relative to now.
func (r ExchangeRatio) Age(now time.Time) time.Duration {
	if r.UpdatedAt.IsZero() {
		return 0
	}
	return now.Sub(r.UpdatedAt)
}

// ItemReport captures the priced outcome of one item within a run.
type ItemReport struct {
	RunID       string    `json:"run_id"`
	League      string    `json:"league"`
	Name        string    `json:"name"`
	Samples     []float64 `json:"samples"`
	Average     float64   `json:"average"`
	HasAverage  bool      `json:"has_average"`
	Listings    int       `json:"listings"`
	Ratio       float64   `json:"ratio"`
	Error       string    `json:"error,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
	ResolvedAt  time.Time `json:"resolved_at"`
}

// PriceRun is the outcome of pricing a set of items with a single ratio.
type PriceRun struct {
	RunID      string        `json:"run_id"`
	League     string        `json:"league"`
	Ratio      ExchangeRatio `json:"ratio"`
	Reports    []*ItemReport `json:"reports"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Failed counts the reports that carry an error.
func (r *PriceRun) Failed() int {
	if r == nil {
		return 0
	}
	failed := 0
	for _, report := range r.Reports {
		if report != nil && report.Error != "" {
			failed++
		}
	}
	return failed
}

// PriceSnapshot is a stored item report.
type PriceSnapshot struct {
	ID         string    `json:"id"`
	RunID      string    `json:"run_id"`
	League     string    `json:"league"`
	Item       string    `json:"item"`
	Average    float64   `json:"average"`
	HasAverage bool      `json:"has_average"`
	Samples    []float64 `json:"samples"`
	Listings   int       `json:"listings"`
	Ratio      float64   `json:"ratio"`
	RecordedAt time.Time `json:"recorded_at"`
}

// NewSnapshot converts a successful item report into a snapshot.
// Failed reports yield nil.
func NewSnapshot(report *ItemReport) *PriceSnapshot {
	if report == nil || report.Error != "" {
		return nil
	}
	recordedAt := report.ResolvedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}
	return &PriceSnapshot{
		RunID:      report.RunID,
		League:     report.League,
		Item:       report.Name,
		Average:    report.Average,
		HasAverage: report.HasAverage,
		Samples:    report.Samples,
		Listings:   report.Listings,
		Ratio:      report.Ratio,
		RecordedAt: recordedAt,
	}
}
