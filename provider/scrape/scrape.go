// Package scrape provides a selector-configured HTML table provider.
// Each matched row becomes one record, with cell text extracted through
// per-field CSS selectors
package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sig-0/harvest/ingest"
	"github.com/sig-0/harvest/storage/types"
)

// flushSize is how many rows are buffered before a batch is emitted
const flushSize = 100

var errInvalidConfig = errors.New("invalid scrape config")

// Config parameterizes a single scraping provider
type Config struct {
	Name        string
	URL         string
	RowSelector string            // selector matching one row per record
	Fields      map[string]string // record field -> selector within the row
	Timeout     time.Duration
}

// Provider is the generic HTML table scraping provider
type Provider struct {
	client *http.Client
	cfg    Config
}

// New creates a new instance of the scraping provider
func New(cfg Config) (*Provider, error) {
	if cfg.URL == "" || cfg.RowSelector == "" || len(cfg.Fields) == 0 {
		return nil, errInvalidConfig
	}

	return &Provider{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		cfg: cfg,
	}, nil
}

func (p *Provider) Name() string {
	return p.cfg.Name
}

func (p *Provider) Fetch(ctx context.Context, emit ingest.Emit) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL, http.NoBody)
	if err != nil {
		return fmt.Errorf("unable to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("unable to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("invalid status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("unable to parse html: %w", err)
	}

	var (
		fetchedAt = time.Now().UTC().Format(time.RFC3339)
		batch     = make([]types.Record, 0, flushSize)
		emitErr   error
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		if err := emit(batch); err != nil {
			return err
		}

		batch = make([]types.Record, 0, flushSize)

		return nil
	}

	doc.Find(p.cfg.RowSelector).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		record := types.Record{
			"fetched_at": fetchedAt,
		}

		empty := true

		for field, selector := range p.cfg.Fields {
			text := strings.TrimSpace(row.Find(selector).First().Text())
			if text != "" {
				empty = false
			}

			record[field] = text
		}

		// Rows matching none of the field selectors are separators / headers
		if empty {
			return true
		}

		batch = append(batch, record)

		if len(batch) >= flushSize {
			if emitErr = flush(); emitErr != nil {
				return false
			}
		}

		return true
	})

	if emitErr != nil {
		return emitErr
	}

	return flush()
}
