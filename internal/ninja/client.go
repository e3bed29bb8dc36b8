package ninja

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public poe.ninja root.
	DefaultBaseURL = "https://poe.ninja"

	divineOrb = "Divine Orb"
)

// ErrRatioNotFound is returned when the overview carries no Divine Orb line.
var ErrRatioNotFound = errors.New("divine orb ratio not found in currency overview")

// Client looks up currency exchange ratios.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient builds a client against baseURL. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL string, userAgent string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		userAgent:  strings.TrimSpace(userAgent),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type currencyOverview struct {
	Lines []struct {
		CurrencyTypeName string  `json:"currencyTypeName"`
		ChaosEquivalent  float64 `json:"chaosEquivalent"`
	} `json:"lines"`
}

// ChaosRatio returns how many chaos orbs one divine orb is worth in league.
func (c *Client) ChaosRatio(ctx context.Context, league string) (float64, error) {
	league = strings.TrimSpace(league)
	if league == "" {
		return 0, errors.New("league is required")
	}

	params := url.Values{}
	params.Set("league", league)
	params.Set("type", "Currency")
	target := c.baseURL + "/api/data/currencyoverview?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("build currency overview request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("currency overview request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("currency overview: unexpected status %d", resp.StatusCode)
	}

	var overview currencyOverview
	if err := json.NewDecoder(resp.Body).Decode(&overview); err != nil {
		return 0, fmt.Errorf("decode currency overview: %w", err)
	}

	for _, line := range overview.Lines {
		if line.CurrencyTypeName == divineOrb {
			if line.ChaosEquivalent <= 0 {
				return 0, fmt.Errorf("currency overview: non-positive divine orb ratio %v", line.ChaosEquivalent)
			}
			return line.ChaosEquivalent, nil
		}
	}

	return 0, ErrRatioNotFound
}
