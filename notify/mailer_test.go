package notify

import (
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/harvest/storage/types"
)

func validConfig() Config {
	return Config{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "reporter",
		Password: "hunter2",
		From:     "harvest@example.com",
		To:       []string{"ops@example.com", "oncall@example.com"},
	}
}

func TestMailer_Configured(t *testing.T) {
	t.Parallel()

	breakers := map[string]func(c *Config){
		"no host":       func(c *Config) { c.Host = "" },
		"no port":       func(c *Config) { c.Port = 0 },
		"no username":   func(c *Config) { c.Username = "" },
		"no password":   func(c *Config) { c.Password = "" },
		"no from":       func(c *Config) { c.From = "" },
		"no recipients": func(c *Config) { c.To = nil },
	}

	for name, breakFn := range breakers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			breakFn(&cfg)

			assert.False(t, NewMailer(cfg).Configured())
		})
	}

	t.Run("fully configured", func(t *testing.T) {
		t.Parallel()

		assert.True(t, NewMailer(validConfig()).Configured())
	})
}

func TestMailer_SendRunReport(t *testing.T) {
	t.Parallel()

	report := &types.RunReport{
		ID:         "d0bkrbeal578dm3kc123",
		ShardIndex: 0,
		ShardTotal: 2,
		FinishedAt: time.Date(2026, time.August, 20, 10, 5, 0, 0, time.UTC),
		Status:     types.RunPartialFailure,
		Outcomes: []*types.ProviderOutcome{
			{
				ProviderID: "rates-eur",
				Status:     types.OutcomeFailed,
				ErrorKind:  types.ErrorKindProvider,
				Error:      "upstream unavailable",
				Duration:   1200 * time.Millisecond,
			},
			{
				ProviderID:     "rates-usd",
				Status:         types.OutcomeSucceeded,
				RecordsWritten: 40,
				Duration:       800 * time.Millisecond,
			},
		},
	}

	t.Run("unconfigured mailer skips", func(t *testing.T) {
		t.Parallel()

		m := NewMailer(Config{})

		var called bool

		m.send = func(_ string, _ smtp.Auth, _ string, _ []string, _ []byte) error {
			called = true

			return nil
		}

		require.NoError(t, m.SendRunReport(report))
		assert.False(t, called)
	})

	t.Run("send failure is wrapped", func(t *testing.T) {
		t.Parallel()

		m := NewMailer(validConfig())

		sendErr := errors.New("connection refused")

		m.send = func(_ string, _ smtp.Auth, _ string, _ []string, _ []byte) error {
			return sendErr
		}

		assert.ErrorIs(t, m.SendRunReport(report), sendErr)
	})

	t.Run("message contents", func(t *testing.T) {
		t.Parallel()

		m := NewMailer(validConfig())

		var (
			capturedAddr string
			capturedFrom string
			capturedTo   []string
			capturedMsg  []byte
		)

		m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			capturedAddr = addr
			capturedFrom = from
			capturedTo = to
			capturedMsg = msg

			return nil
		}

		require.NoError(t, m.SendRunReport(report))

		assert.Equal(t, "smtp.example.com:587", capturedAddr)
		assert.Equal(t, "harvest@example.com", capturedFrom)
		assert.Equal(t, []string{"ops@example.com", "oncall@example.com"}, capturedTo)

		msg := string(capturedMsg)

		assert.Contains(
			t,
			msg,
			"Subject: [harvest] run d0bkrbeal578dm3kc123 shard 0/2: PARTIAL_FAILURE",
		)
		assert.Contains(t, msg, "To: ops@example.com, oncall@example.com")
		assert.Contains(t, msg, "- rates-usd: SUCCEEDED, 40 records, 800ms")
		assert.Contains(t, msg, "- rates-eur: FAILED, 0 records, 1.2s (provider: upstream unavailable)")
	})
}
