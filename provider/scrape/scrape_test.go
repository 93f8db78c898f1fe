package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/harvest/storage/types"
)

func TestProvider_New(t *testing.T) {
	t.Parallel()

	testTable := []struct {
		name string
		cfg  Config
	}{
		{
			"missing URL",
			Config{
				RowSelector: "table tr",
				Fields:      map[string]string{"rate": "td.rate"},
			},
		},
		{
			"missing row selector",
			Config{
				URL:    "https://example.com",
				Fields: map[string]string{"rate": "td.rate"},
			},
		},
		{
			"no fields",
			Config{
				URL:         "https://example.com",
				RowSelector: "table tr",
			},
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(testCase.cfg)

			assert.ErrorIs(t, err, errInvalidConfig)
		})
	}
}

func TestProvider_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("invalid status code", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}),
		)
		defer srv.Close()

		p, err := New(Config{
			Name:        "board",
			URL:         srv.URL,
			RowSelector: "table tr",
			Fields:      map[string]string{"rate": "td.rate"},
			Timeout:     time.Second,
		})
		require.NoError(t, err)

		assert.Error(t, p.Fetch(context.Background(), func(_ []types.Record) error {
			return nil
		}))
	})

	t.Run("rows become records", func(t *testing.T) {
		t.Parallel()

		page := `
		<html><body>
		<table id="rates">
			<tr><th>Currency</th><th>Rate</th></tr>
			<tr><td class="currency">USD</td><td class="rate">36.45</td></tr>
			<tr><td class="currency">EUR</td><td class="rate">39.12</td></tr>
		</table>
		</body></html>`

		srv := httptest.NewServer(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(page))
			}),
		)
		defer srv.Close()

		p, err := New(Config{
			Name:        "board",
			URL:         srv.URL,
			RowSelector: "table#rates tr",
			Fields: map[string]string{
				"currency": "td.currency",
				"rate":     "td.rate",
			},
			Timeout: time.Second,
		})
		require.NoError(t, err)

		assert.Equal(t, "board", p.Name())

		var emitted []types.Record

		err = p.Fetch(context.Background(), func(batch []types.Record) error {
			emitted = append(emitted, batch...)

			return nil
		})
		require.NoError(t, err)

		// The header row matches no field selectors, and is dropped
		require.Len(t, emitted, 2)

		assert.Equal(t, "USD", emitted[0]["currency"])
		assert.Equal(t, "36.45", emitted[0]["rate"])
		assert.Equal(t, "EUR", emitted[1]["currency"])
		assert.Equal(t, "39.12", emitted[1]["rate"])

		assert.NotEmpty(t, emitted[0]["fetched_at"])
	})

	t.Run("batched emission", func(t *testing.T) {
		t.Parallel()

		var sb strings.Builder

		sb.WriteString("<html><body><table>")

		for i := 0; i < flushSize+20; i++ {
			sb.WriteString(
				fmt.Sprintf("<tr><td class=\"rate\">%d</td></tr>", i),
			)
		}

		sb.WriteString("</table></body></html>")

		srv := httptest.NewServer(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(sb.String()))
			}),
		)
		defer srv.Close()

		p, err := New(Config{
			Name:        "board",
			URL:         srv.URL,
			RowSelector: "table tr",
			Fields:      map[string]string{"rate": "td.rate"},
			Timeout:     time.Second,
		})
		require.NoError(t, err)

		var (
			batches int
			total   int
		)

		err = p.Fetch(context.Background(), func(batch []types.Record) error {
			batches++
			total += len(batch)

			return nil
		})
		require.NoError(t, err)

		assert.Equal(t, 2, batches)
		assert.Equal(t, flushSize+20, total)
	})

	t.Run("emit failure stops the scrape", func(t *testing.T) {
		t.Parallel()

		var sb strings.Builder

		sb.WriteString("<html><body><table>")

		for i := 0; i < flushSize*3; i++ {
			sb.WriteString(
				fmt.Sprintf("<tr><td class=\"rate\">%d</td></tr>", i),
			)
		}

		sb.WriteString("</table></body></html>")

		srv := httptest.NewServer(
			http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(sb.String()))
			}),
		)
		defer srv.Close()

		p, err := New(Config{
			Name:        "board",
			URL:         srv.URL,
			RowSelector: "table tr",
			Fields:      map[string]string{"rate": "td.rate"},
			Timeout:     time.Second,
		})
		require.NoError(t, err)

		var (
			emitErr = errors.New("sink rejected the batch")
			calls   int
		)

		err = p.Fetch(context.Background(), func(_ []types.Record) error {
			calls++

			return emitErr
		})

		assert.ErrorIs(t, err, emitErr)
		assert.Equal(t, 1, calls)
	})
}
