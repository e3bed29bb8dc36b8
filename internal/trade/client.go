package trade

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/pricelens/pricelens/internal/core"
	"github.com/pricelens/pricelens/internal/core/engine"
	"github.com/pricelens/pricelens/internal/metrics"
)

const (
	// DefaultBaseURL is the public trade API root.
	DefaultBaseURL = "https://www.pathofexile.com/api/trade"
	// DefaultUserAgent identifies the client to the trade API.
	DefaultUserAgent = "pricelens/dev"
	// MaxFetchIDs is the most listings the fetch endpoint returns per call.
	MaxFetchIDs = 10

	endpointSearch = "search"
	endpointFetch  = "fetch"

	errorBodyLimit = 512
)

// Logger is the subset of the application logger the client writes to.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	SessionID   string
	UserAgent   string
	HTTPClient  *http.Client
	SearchQuota engine.Quota
	FetchQuota  engine.Quota
	Clock       clockwork.Clock
	Logger      Logger
}

// Client dispatches search and fetch calls against the trade API, pacing each
// endpoint through its own gate.
type Client struct {
	baseURL    string
	cookie     string
	userAgent  string
	httpClient *http.Client
	clock      clockwork.Clock
	logger     Logger

	search *engine.Gate
	fetch  *engine.Gate
}

// NewClient builds a client. Zero quotas fall back to the published trade limits.
func NewClient(opts Options) (*Client, error) {
	sessionID := strings.TrimSpace(opts.SessionID)
	if sessionID == "" {
		return nil, errors.New("trade session id is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid trade base url: %w", err)
	}

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	searchQuota := opts.SearchQuota
	if searchQuota.Interval == 0 {
		searchQuota = engine.SearchQuota
	}
	fetchQuota := opts.FetchQuota
	if fetchQuota.Interval == 0 {
		fetchQuota = engine.FetchQuota
	}

	search, err := engine.NewGate(searchQuota, clock)
	if err != nil {
		return nil, fmt.Errorf("search gate: %w", err)
	}
	fetch, err := engine.NewGate(fetchQuota, clock)
	if err != nil {
		return nil, fmt.Errorf("fetch gate: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Client{
		baseURL:    baseURL,
		cookie:     "POESESSID=" + sessionID,
		userAgent:  userAgent,
		httpClient: httpClient,
		clock:      clock,
		logger:     opts.Logger,
		search:     search,
		fetch:      fetch,
	}, nil
}

// Search runs a trade query for league and returns listing ids in the order
// the trade API ranked them.
func (c *Client) Search(ctx context.Context, league string, query string) ([]string, error) {
	league = strings.TrimSpace(league)
	if league == "" {
		return nil, errors.New("league is required")
	}

	target := c.baseURL + "/" + endpointSearch + "/" + url.PathEscape(league)
	body, err := c.send(ctx, c.search, endpointSearch, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader([]byte(query)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		ID     string    `json:"id"`
		Total  int       `json:"total"`
		Result *[]string `json:"result"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &DecodeError{Endpoint: endpointSearch, Err: err}
	}
	if payload.Result == nil {
		return nil, &DecodeError{Endpoint: endpointSearch, Err: errors.New("missing result")}
	}

	return *payload.Result, nil
}

// Fetch resolves listing ids into priced listings. Only the first MaxFetchIDs
// ids are requested; callers page through longer result sets themselves.
func (c *Client) Fetch(ctx context.Context, ids []string) ([]core.Listing, error) {
	if len(ids) > MaxFetchIDs {
		ids = ids[:MaxFetchIDs]
	}
	if len(ids) == 0 {
		return []core.Listing{}, nil
	}

	escaped := make([]string, len(ids))
	for i, id := range ids {
		escaped[i] = url.PathEscape(id)
	}
	target := c.baseURL + "/" + endpointFetch + "/" + strings.Join(escaped, ",")

	body, err := c.send(ctx, c.fetch, endpointFetch, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Result *[]*struct {
			ID      string `json:"id"`
			Listing *struct {
				Price *struct {
					Amount   float64 `json:"amount"`
					Currency string  `json:"currency"`
				} `json:"price"`
			} `json:"listing"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &DecodeError{Endpoint: endpointFetch, Err: err}
	}
	if payload.Result == nil {
		return nil, &DecodeError{Endpoint: endpointFetch, Err: errors.New("missing result")}
	}

	listings := make([]core.Listing, 0, len(*payload.Result))
	for _, entry := range *payload.Result {
		// Delisted entries come back as null; unpriced ones have no price block.
		if entry == nil || entry.Listing == nil || entry.Listing.Price == nil {
			continue
		}
		listings = append(listings, core.Listing{
			ID: entry.ID,
			Price: core.Price{
				Amount:   entry.Listing.Price.Amount,
				Currency: core.Currency(entry.Listing.Price.Currency),
			},
		})
	}

	return listings, nil
}

// send waits for gate admission, then performs one request. A 429 from the
// trade API defers the gate and loops back to admission; every other failure
// is returned to the caller.
func (c *Client) send(ctx context.Context, gate *engine.Gate, endpoint string, build func() (*http.Request, error)) ([]byte, error) {
	for {
		if ok, wait := gate.Admit(); !ok {
			metrics.RecordGateWait(endpoint, wait)
			c.debug("Waiting for trade quota", zap.String("endpoint", endpoint), zap.Duration("wait", wait))
			c.clock.Sleep(wait)
			continue
		}

		req, err := build()
		if err != nil {
			return nil, &TransportError{Endpoint: endpoint, Err: err}
		}
		req.Header.Set("Cookie", c.cookie)
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		startedAt := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			metrics.RecordTradeRequest(endpoint, "error", time.Since(startedAt))
			return nil, &TransportError{Endpoint: endpoint, URL: req.URL.String(), Err: err}
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		metrics.RecordTradeRequest(endpoint, http.StatusText(resp.StatusCode), time.Since(startedAt))
		c.debug("Trade request completed",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(startedAt)))

		if resp.StatusCode == http.StatusTooManyRequests {
			now := c.clock.Now()
			wait := retryAfter(resp, now)
			if wait <= 0 {
				wait = gate.Interval()
			}
			gate.Defer(now.Add(wait))
			metrics.RecordThrottled(endpoint)
			c.warn("Trade API throttled request, deferring", zap.String("endpoint", endpoint), zap.Duration("retry_after", wait))
			continue
		}

		if readErr != nil {
			return nil, &TransportError{Endpoint: endpoint, URL: req.URL.String(), StatusCode: resp.StatusCode, Err: readErr}
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &TransportError{
				Endpoint:   endpoint,
				URL:        req.URL.String(),
				StatusCode: resp.StatusCode,
				Body:       truncateBody(body),
			}
		}

		return body, nil
	}
}

func (c *Client) debug(msg string, fields ...zap.Field) {
	if c.logger != nil {
		c.logger.Debug(msg, fields...)
	}
}

func (c *Client) warn(msg string, fields ...zap.Field) {
	if c.logger != nil {
		c.logger.Warn(msg, fields...)
	}
}

func truncateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > errorBodyLimit {
		text = text[:errorBodyLimit] + "..."
	}
	return text
}
