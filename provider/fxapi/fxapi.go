// Package fxapi provides a provider for JSON exchange rate APIs that
// respond with a {"rates": {"USD": 1.07, ...}} shaped payload
package fxapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/sig-0/harvest/ingest"
	"github.com/sig-0/harvest/storage/types"
)

var errNoRates = errors.New("no rates in response")

// ratesResponse is the expected API payload shape
type ratesResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// Provider is the FX rates API provider
type Provider struct {
	client *http.Client
	name   string
	url    string
}

// New creates a new instance of the FX rates API provider
func New(name, url string, timeout time.Duration) *Provider {
	return &Provider{
		client: &http.Client{
			Timeout: timeout,
		},
		name: name,
		url:  url,
	}
}

func (p *Provider) Name() string {
	return p.name
}

func (p *Provider) Fetch(ctx context.Context, emit ingest.Emit) error {
	// Prepare the request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, http.NoBody)
	if err != nil {
		return fmt.Errorf("unable to create new GET request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	// Execute the request
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("unable to execute GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	var payload ratesResponse

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("unable to parse response: %w", err)
	}

	if len(payload.Rates) == 0 {
		return errNoRates
	}

	// Stable record ordering, for reproducible runs
	targets := make([]string, 0, len(payload.Rates))

	for target := range payload.Rates {
		targets = append(targets, target)
	}

	sort.Strings(targets)

	var (
		fetchedAt = time.Now().UTC().Format(time.RFC3339)
		records   = make([]types.Record, 0, len(targets))
	)

	for _, target := range targets {
		records = append(records, types.Record{
			"base":       payload.Base,
			"target":     target,
			"rate":       payload.Rates[target],
			"as_of":      payload.Date,
			"fetched_at": fetchedAt,
		})
	}

	return emit(records)
}
