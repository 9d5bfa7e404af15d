package anthropic

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Polling cadence for enhancement batches. They carry small
// classification requests and usually end within a few minutes, so
// polling starts tight and the poller gives up after an hour, far
// short of the API's own 24 hour expiry.
const (
	pollStart   = 3 * time.Second
	pollCeiling = 20 * time.Second
	pollBudget  = time.Hour
)

// PollOption tunes batch polling. Tests shrink the intervals.
type PollOption func(*pollConfig)

type pollConfig struct {
	start   time.Duration
	ceiling time.Duration
	budget  time.Duration
}

// WithPollInterval sets the first poll interval.
func WithPollInterval(d time.Duration) PollOption {
	return func(c *pollConfig) { c.start = d }
}

// WithPollCap sets the largest poll interval.
func WithPollCap(d time.Duration) PollOption {
	return func(c *pollConfig) { c.ceiling = d }
}

// WithPollTimeout sets the overall deadline when the caller's context
// has none.
func WithPollTimeout(d time.Duration) PollOption {
	return func(c *pollConfig) { c.budget = d }
}

// PollBatch polls GetBatch until the batch ends, doubling the wait up
// to the ceiling. An expired or canceled batch returns an error
// immediately.
func PollBatch(ctx context.Context, client Client, batchID string, opts ...PollOption) (*BatchResponse, error) {
	cfg := pollConfig{start: pollStart, ceiling: pollCeiling, budget: pollBudget}
	for _, opt := range opts {
		opt(&cfg)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.budget)
		defer cancel()
	}

	delay := cfg.start
	for attempt := 1; ; attempt++ {
		batch, err := client.GetBatch(ctx, batchID)
		if err != nil {
			return nil, eris.Wrap(err, fmt.Sprintf("anthropic: poll batch %s", batchID))
		}

		switch batch.ProcessingStatus {
		case "ended":
			return batch, nil
		case "expired":
			return batch, eris.Errorf("anthropic: batch %s expired", batchID)
		case "canceled", "canceling":
			return batch, eris.Errorf("anthropic: batch %s canceled", batchID)
		}

		zap.L().Debug("anthropic: batch still processing",
			zap.String("batch_id", batchID),
			zap.Int("attempt", attempt),
			zap.Int64("pending", batch.RequestCounts.Processing),
			zap.Int64("succeeded", batch.RequestCounts.Succeeded),
			zap.Int64("errored", batch.RequestCounts.Errored),
		)

		select {
		case <-ctx.Done():
			return nil, eris.Wrap(ctx.Err(), fmt.Sprintf("anthropic: poll batch %s timed out", batchID))
		case <-time.After(jittered(delay)):
		}
		delay = min(delay*2, cfg.ceiling)
	}
}

// jittered spreads concurrent pollers by up to a quarter either way.
func jittered(d time.Duration) time.Duration {
	j := time.Duration(rand.Int63n(int64(d) / 4))
	if rand.Intn(2) == 0 {
		return d + j
	}
	return d - j
}

// BatchFailure names one batch item that did not succeed.
type BatchFailure struct {
	CustomID string
	Type     string // "errored", "canceled", "expired"
}

// BatchCollectResult splits an ended batch into its succeeded messages
// and failures.
type BatchCollectResult struct {
	Succeeded map[string]*MessageResponse
	Failures  []BatchFailure
}

// CollectBatchResults drains the iterator and returns succeeded messages
// keyed by custom ID. Failed items are logged and dropped; the caller's
// pattern fallback covers them.
func CollectBatchResults(iter BatchResultIterator) (map[string]*MessageResponse, error) {
	result, err := CollectBatchResultsDetailed(iter)
	if err != nil {
		return nil, err
	}
	return result.Succeeded, nil
}

// CollectBatchResultsDetailed drains the iterator and keeps the failure
// list alongside the succeeded messages.
func CollectBatchResultsDetailed(iter BatchResultIterator) (*BatchCollectResult, error) {
	defer iter.Close()

	result := &BatchCollectResult{
		Succeeded: make(map[string]*MessageResponse),
	}
	for iter.Next() {
		item := iter.Item()
		switch {
		case item.Type == "succeeded" && item.Message != nil:
			result.Succeeded[item.CustomID] = item.Message
		case item.Type != "succeeded":
			result.Failures = append(result.Failures, BatchFailure{
				CustomID: item.CustomID,
				Type:     item.Type,
			})
			zap.L().Warn("anthropic: batch item failed",
				zap.String("custom_id", item.CustomID),
				zap.String("type", item.Type),
			)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, eris.Wrap(err, "anthropic: collect batch results")
	}

	if len(result.Failures) > 0 {
		zap.L().Warn("anthropic: batch finished with failures",
			zap.Int("succeeded", len(result.Succeeded)),
			zap.Int("failed", len(result.Failures)),
		)
	}
	return result, nil
}
