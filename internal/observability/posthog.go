// Package observability sends product analytics events to PostHog. Events
// are fire-and-forget: capture failures are logged and never surface to the
// caller, and the whole package is a no-op when PostHog is disabled or has
// no API key.
package observability

import (
	"fmt"

	"github.com/posthog/posthog-go"

	"scholarly/internal/config"
	"scholarly/internal/logger"
)

// Client wraps the PostHog SDK.
type Client struct {
	client  posthog.Client
	enabled bool
}

// New creates a client from configuration. A disabled section or a missing
// API key yields a working no-op client rather than an error.
func New(cfg config.PostHog) (*Client, error) {
	if !cfg.Enabled || cfg.APIKey == "" {
		return &Client{enabled: false}, nil
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, posthog.Config{
		Endpoint: cfg.Host,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create PostHog client: %w", err)
	}
	logger.Info("PostHog analytics enabled", "host", cfg.Host)
	return &Client{client: client, enabled: true}, nil
}

// Enabled reports whether events are actually sent anywhere.
func (c *Client) Enabled() bool {
	return c.enabled
}

// Capture enqueues one event. It satisfies the pipeline's Events interface.
func (c *Client) Capture(event string, properties map[string]any) {
	if !c.enabled {
		return
	}

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}
	err := c.client.Enqueue(posthog.Capture{
		DistinctId: "system",
		Event:      event,
		Properties: props,
	})
	if err != nil {
		logger.Warn("Failed to enqueue analytics event", "event", event, "error", err)
	}
}

// Close flushes pending events and shuts the client down.
func (c *Client) Close() error {
	if !c.enabled {
		return nil
	}
	return c.client.Close()
}
