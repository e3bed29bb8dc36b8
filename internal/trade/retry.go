package trade

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// retryAfter parses a Retry-After header given as delta-seconds or an HTTP date.
func retryAfter(resp *http.Response, now time.Time) time.Duration {
	if resp == nil || resp.Header == nil {
		return 0
	}

	value := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if parsed, err := http.ParseTime(value); err == nil {
		if wait := parsed.Sub(now); wait > 0 {
			return wait
		}
	}

	return 0
}
