/*
Package shippo queries the Shippo tracking API for the live status of a
shipment and derives the terminal status written back on chain.
*/
package shippo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the production tracking API.
const DefaultBaseURL = "https://api.goshippo.com"

const defaultRequestTimeout = 30 * time.Second

// Terminal statuses written into closing transactions.
const (
	StatusDelivered    = "DELIVERED"
	StatusNotDelivered = "NOT_DELIVERED"
)

type (
	// TrackingStatus is the current tracking state of one shipment.
	TrackingStatus struct {
		// Status is the carrier-reported state, e.g. "DELIVERED",
		// "TRANSIT", "PRE_TRANSIT".
		Status string `json:"status"`
		// StatusDetails is a descriptive message.
		StatusDetails string `json:"status_details"`
	}

	// trackingResponse is the API response, only the fields we need.
	trackingResponse struct {
		Carrier        string         `json:"carrier"`
		TrackingNumber string         `json:"tracking_number"`
		TrackingStatus TrackingStatus `json:"tracking_status"`
	}
)

// Client talks to the tracking API. Safe for concurrent use.
type Client struct {
	cli     *http.Client
	baseURL string
	apiKey  string
}

// Options defines options for the tracking client.
type Options struct {
	// BaseURL overrides DefaultBaseURL, used by tests.
	BaseURL        string
	RequestTimeout time.Duration
}

// New returns a Client authenticating with the given API key.
func New(apiKey string, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	return &Client{
		cli:     &http.Client{Timeout: opts.RequestTimeout},
		baseURL: opts.BaseURL,
		apiKey:  apiKey,
	}
}

// TrackStatus fetches the current tracking status of one shipment.
func (c *Client) TrackStatus(ctx context.Context, carrier, trackingNumber string) (TrackingStatus, error) {
	url := fmt.Sprintf("%s/tracks/%s/%s", c.baseURL, carrier, trackingNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return TrackingStatus{}, err
	}
	req.Header.Set("Authorization", "ShippoToken "+c.apiKey)

	resp, err := c.cli.Do(req)
	if err != nil {
		return TrackingStatus{}, fmt.Errorf("tracking query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return TrackingStatus{}, fmt.Errorf("tracking query failed (status %d): %s", resp.StatusCode, body)
	}

	var tr trackingResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return TrackingStatus{}, fmt.Errorf("unable to parse tracking response: %w", err)
	}
	return tr.TrackingStatus, nil
}

// FinalStatus maps a carrier status onto the status written on chain. The
// second return value is false while the shipment is still moving.
func FinalStatus(ts TrackingStatus) (string, bool) {
	switch ts.Status {
	case "DELIVERED":
		return StatusDelivered, true
	case "RETURNED", "FAILURE":
		return StatusNotDelivered, true
	}
	return "", false
}
