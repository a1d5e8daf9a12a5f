package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Tiliavir/trivial-time-report/internal/model"
	"github.com/Tiliavir/trivial-time-report/internal/source"
)

// FetchTimeoutError reports a source that did not answer within its deadline.
type FetchTimeoutError struct {
	Source string
	After  time.Duration
}

func (e *FetchTimeoutError) Error() string {
	return fmt.Sprintf("%s: no answer after %s", e.Source, e.After)
}

// Collector fetches sources concurrently. Each source gets its own deadline
// and retry budget; a failing source yields an empty sheet instead of
// failing the report.
type Collector struct {
	// Timeout bounds one source's fetch including retries.
	Timeout time.Duration
	// Attempts is the number of tries per fetch. Values below 1 mean 1.
	Attempts   int
	RetryDelay time.Duration
	Logger     zerolog.Logger
}

// NewCollector returns a Collector with the given deadline and attempts and
// a 500ms initial retry delay.
func NewCollector(deadline time.Duration, attempts int, logger zerolog.Logger) *Collector {
	return &Collector{
		Timeout:    deadline,
		Attempts:   attempts,
		RetryDelay: 500 * time.Millisecond,
		Logger:     logger,
	}
}

// Collect fetches and parses every source for day. All fetches run in
// parallel and Collect returns once each has finished or timed out. The
// sheets are returned in the order of sources.
func (c *Collector) Collect(ctx context.Context, sources []source.Source, day time.Time) []model.Sheet {
	sheets := make([]model.Sheet, len(sources))
	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			sheets[i] = c.collectOne(ctx, src, day)
			return nil
		})
	}
	_ = g.Wait()
	return sheets
}

func (c *Collector) collectOne(ctx context.Context, src source.Source, day time.Time) model.Sheet {
	sheet := model.Sheet{
		Source:   src.Name(),
		EntryURL: src.EntryURL(),
		Date:     day,
		Entries:  []model.Entry{},
	}
	log := c.Logger.With().Str("source", src.Name()).Logger()

	started := time.Now()
	raw, err := c.fetch(ctx, src.Name(), func(ctx context.Context) ([]byte, error) {
		return src.Fetch(ctx, day)
	})
	if err != nil {
		log.Warn().Err(err).Msg("Fetch failed, reporting no entries")
		sheet.Err = err
		return sheet
	}
	log.Debug().Dur("took", time.Since(started)).Int("bytes", len(raw)).Msg("Fetched")

	entries, err := src.Parse(raw, day)
	if err != nil {
		log.Error().Err(err).Msg("Could not parse response, reporting no entries")
		sheet.Err = err
		return sheet
	}
	sheet.Entries = entries
	return sheet
}

// Ticket fetches every entry booked on ticket id. Unlike Collect, failures
// are returned to the caller.
func (c *Collector) Ticket(ctx context.Context, src source.TicketSource, id string) ([]model.Entry, error) {
	raw, err := c.fetch(ctx, src.Name(), func(ctx context.Context) ([]byte, error) {
		return src.FetchTicket(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return src.ParseTicket(raw)
}

// fetch runs fn with retries under the collector's deadline. Only transient
// failures (network errors, 429 and 5xx answers) are retried.
func (c *Collector) fetch(ctx context.Context, name string, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	attempts := c.Attempts
	if attempts < 1 {
		attempts = 1
	}

	r := retry.New[[]byte](retry.Config{
		MaxAttempts:   attempts,
		InitialDelay:  c.RetryDelay,
		BackoffPolicy: retry.BackoffExponential,
		IsRetryable:   source.IsTransient,
	})
	attempt := func(ctx context.Context) ([]byte, error) {
		return r.Do(ctx, fn)
	}

	if c.Timeout <= 0 {
		return attempt(ctx)
	}
	t := timeout.New[[]byte](timeout.Config{DefaultTimeout: c.Timeout})
	raw, err := t.Execute(ctx, c.Timeout, attempt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, &FetchTimeoutError{Source: name, After: c.Timeout}
		}
		return nil, err
	}
	return raw, nil
}
