package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"scholarly/internal/logger"
)

// defaultMaxRetries bounds the retry loop for transient provider failures.
const defaultMaxRetries = 3

// apiError carries a non-2xx provider response.
type apiError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

func isRetryableStatus(code int) bool {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

func isRetryableErr(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var httpErr *apiError
	if errors.As(err, &httpErr) {
		return isRetryableStatus(httpErr.StatusCode)
	}
	return false
}

// jitter spreads a backoff interval by +/- 20% so concurrent workers do not
// hammer a rate-limited endpoint in lockstep.
func jitter(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	delta := base.Seconds() * 0.2
	low := base.Seconds() - delta
	v := low + rand.Float64()*(2*delta)
	return time.Duration(v * float64(time.Second))
}

// jsonCall describes one JSON round trip to a provider endpoint.
type jsonCall struct {
	provider string
	method   string
	url      string
	header   map[string]string
	body     any
}

func doJSONOnce(ctx context.Context, client *http.Client, call jsonCall) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if call.body != nil {
		if err := json.NewEncoder(&buf).Encode(call.body); err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, call.method, call.url, &buf)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range call.header {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to make request: %w", err)
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, fmt.Errorf("failed to read response: %w", readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &apiError{Provider: call.provider, StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

// doJSON performs a JSON request with exponential backoff on transient
// failures (408, 429, 5xx and network timeouts). Backoff starts at 1s and
// doubles up to a 10s cap; a Retry-After header takes precedence when the
// server sends one.
func doJSON(ctx context.Context, client *http.Client, call jsonCall, out any) error {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= defaultMaxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := doJSONOnce(ctx, client, call)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("failed to unmarshal response: %w", uErr)
			}
			return nil
		}

		if !isRetryableErr(err) || attempt == defaultMaxRetries {
			return err
		}

		sleepFor := backoff
		if resp != nil {
			if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
				if secs, parseErr := strconv.Atoi(ra); parseErr == nil && secs > 0 {
					sleepFor = time.Duration(secs) * time.Second
				}
			}
		}
		if sleepFor > 10*time.Second {
			sleepFor = 10 * time.Second
		}
		sleepFor = jitter(sleepFor)

		logger.Warn("provider request retrying",
			"provider", call.provider,
			"url", call.url,
			"attempt", attempt+1,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return fmt.Errorf("retries exhausted")
}
