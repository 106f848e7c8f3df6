// Package analytics keeps per-listing daily counters supplied by the
// directory's front end and sums them for the owner dashboard.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"business-directory/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

var ErrInvalidRange = errors.New("ANALYTICS_INVALID_RANGE")

const (
	fieldViews  = "views"
	fieldClicks = "clicks"
	fieldLeads  = "leads"

	MaxSummaryDays = 90
	retention      = (MaxSummaryDays + 1) * 24 * time.Hour
)

type Summary struct {
	ListingID string `json:"listingId"`
	Days      int    `json:"days"`
	Views     int64  `json:"views"`
	Clicks    int64  `json:"clicks"`
	Leads     int64  `json:"leads"`
}

// Counter stores one redis hash per listing per UTC day.
type Counter struct {
	rdb    redis.Cmdable
	now    func() time.Time
	logger logger.Logger
}

func NewCounter(rdb redis.Cmdable, log logger.Logger) *Counter {
	return &Counter{
		rdb:    rdb,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.ForComponent(log, "analytics"),
	}
}

func (c *Counter) RecordView(ctx context.Context, listingID string) error {
	return c.incr(ctx, listingID, fieldViews)
}

func (c *Counter) RecordClick(ctx context.Context, listingID string) error {
	return c.incr(ctx, listingID, fieldClicks)
}

func (c *Counter) RecordLead(ctx context.Context, listingID string) error {
	return c.incr(ctx, listingID, fieldLeads)
}

func (c *Counter) incr(ctx context.Context, listingID, field string) error {
	key := dayKey(listingID, c.now())

	pipe := c.rdb.TxPipeline()
	pipe.HIncrBy(ctx, key, field, 1)
	pipe.Expire(ctx, key, retention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record %s for %s: %w", field, listingID, err)
	}
	return nil
}

// Summary sums the last days days, today included.
func (c *Counter) Summary(ctx context.Context, listingID string, days int) (*Summary, error) {
	if days < 1 || days > MaxSummaryDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidRange, MaxSummaryDays)
	}

	today := c.now()
	pipe := c.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, days)
	for i := 0; i < days; i++ {
		cmds[i] = pipe.HGetAll(ctx, dayKey(listingID, today.AddDate(0, 0, -i)))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to read analytics for %s: %w", listingID, err)
	}

	summary := &Summary{ListingID: listingID, Days: days}
	for _, cmd := range cmds {
		values, err := cmd.Result()
		if err != nil {
			continue
		}
		summary.Views += parseCount(values[fieldViews])
		summary.Clicks += parseCount(values[fieldClicks])
		summary.Leads += parseCount(values[fieldLeads])
	}
	return summary, nil
}

func dayKey(listingID string, day time.Time) string {
	return fmt.Sprintf("analytics:%s:%s", listingID, day.Format("20060102"))
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
