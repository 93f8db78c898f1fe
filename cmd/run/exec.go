package run

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sig-0/harvest/cmd/env"
	"github.com/sig-0/harvest/ingest"
	"github.com/sig-0/harvest/notify"
	"github.com/sig-0/harvest/ratelimit"
	"github.com/sig-0/harvest/storage"
)

// ingestAndReport executes the shard's ingestion pass against the given
// store: registry build, shard planning, the rate-limited run itself,
// report persistence and the optional mail notification
func (c *runCfg) ingestAndReport(
	ctx context.Context,
	logger *slog.Logger,
	store storage.Storage,
) error {
	// Build the provider registry from configuration
	registry, err := buildRegistry(c.config)
	if err != nil {
		return err
	}

	// An explicit selection resolves by ID,
	// otherwise every configured provider runs
	descriptors := registry.All()

	if selected := c.selectedProviders(); len(selected) > 0 {
		descriptors, err = registry.Resolve(selected)
		if err != nil {
			return err
		}
	}

	// Select this shard's providers
	assignment := ingest.Assignment{
		Index: c.shardIndex,
		Total: c.shardTotal,
	}

	planned, err := ingest.Plan(descriptors, assignment)
	if err != nil {
		return err
	}

	logger.Info(
		"shard planned",
		"index", assignment.Index,
		"total", assignment.Total,
		"registered", len(descriptors),
		"assigned", len(planned),
	)

	// Set up the rate limiter
	maxWait, err := c.config.ParseRateLimitMaxWait()
	if err != nil {
		return err
	}

	classes := make([]ratelimit.Class, 0, len(c.config.RateLimits))

	for _, class := range c.config.RateLimits {
		classes = append(classes, ratelimit.Class{
			Name:  class.Name,
			Rate:  class.Rate,
			Burst: class.Burst,
		})
	}

	limiter := ratelimit.New(classes, ratelimit.WithMaxWait(maxWait))

	// Resolve the run deadline
	budget, err := c.config.ParseDeadline()
	if err != nil {
		return err
	}

	var deadline time.Time

	if budget > 0 {
		deadline = time.Now().Add(budget)
	}

	// Execute the run
	runner := ingest.NewRunner(
		store,
		ingest.WithLogger(logger),
		ingest.WithLimiter(limiter),
		ingest.WithMaxConcurrency(c.config.MaxConcurrency),
	)

	report := runner.Run(ctx, assignment, planned, deadline)

	// Persist the run report
	saveCtx, cancelFn := context.WithTimeout(context.Background(), time.Second*10)
	defer cancelFn()

	if err := store.SaveRunReport(saveCtx, report); err != nil {
		logger.Error(
			"unable to save run report",
			"id", report.ID,
			"err", err,
		)
	}

	// Notify, if SMTP is configured
	if err := mailerFromEnv().SendRunReport(report); err != nil {
		logger.Error(
			"unable to send run report mail",
			"id", report.ID,
			"err", err,
		)
	}

	printReport(os.Stdout, report)

	return statusError(report.Status)
}

// mailerFromEnv builds the notification mailer from env variables
func mailerFromEnv() *notify.Mailer {
	port, _ := strconv.Atoi(os.Getenv(env.Prefix + env.SMTPPortSuffix))

	var to []string

	for _, recipient := range strings.Split(os.Getenv(env.Prefix+env.MailToSuffix), ",") {
		if r := strings.TrimSpace(recipient); r != "" {
			to = append(to, r)
		}
	}

	return notify.NewMailer(notify.Config{
		Host:     os.Getenv(env.Prefix + env.SMTPHostSuffix),
		Port:     port,
		Username: os.Getenv(env.Prefix + env.SMTPUsernameSuffix),
		Password: os.Getenv(env.Prefix + env.SMTPPasswordSuffix),
		From:     os.Getenv(env.Prefix + env.MailFromSuffix),
		To:       to,
	})
}
