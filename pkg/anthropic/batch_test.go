package anthropic

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollBatchEndedImmediately(t *testing.T) {
	client := &stubClient{
		getBatch: func(_ context.Context, batchID string) (*BatchResponse, error) {
			return &BatchResponse{
				ID:               batchID,
				ProcessingStatus: "ended",
				RequestCounts:    RequestCounts{Succeeded: 5},
			}, nil
		},
	}

	resp, err := PollBatch(context.Background(), client, "batch_enh_1",
		WithPollInterval(10*time.Millisecond),
	)
	require.NoError(t, err)
	assert.Equal(t, "ended", resp.ProcessingStatus)
	assert.Equal(t, int64(5), resp.RequestCounts.Succeeded)
}

func TestPollBatchEndsAfterSeveralPolls(t *testing.T) {
	var calls atomic.Int32
	client := &stubClient{
		getBatch: func(_ context.Context, batchID string) (*BatchResponse, error) {
			if calls.Add(1) < 3 {
				return &BatchResponse{ID: batchID, ProcessingStatus: "in_progress"}, nil
			}
			return &BatchResponse{
				ID:               batchID,
				ProcessingStatus: "ended",
				RequestCounts:    RequestCounts{Succeeded: 12},
			}, nil
		},
	}

	resp, err := PollBatch(context.Background(), client, "batch_enh_2",
		WithPollInterval(5*time.Millisecond),
		WithPollCap(10*time.Millisecond),
	)
	require.NoError(t, err)
	assert.Equal(t, "ended", resp.ProcessingStatus)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPollBatchExpired(t *testing.T) {
	client := &stubClient{
		getBatch: func(_ context.Context, batchID string) (*BatchResponse, error) {
			return &BatchResponse{ID: batchID, ProcessingStatus: "expired"}, nil
		},
	}

	_, err := PollBatch(context.Background(), client, "batch_exp",
		WithPollInterval(5*time.Millisecond),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestPollBatchCanceled(t *testing.T) {
	client := &stubClient{
		getBatch: func(_ context.Context, batchID string) (*BatchResponse, error) {
			return &BatchResponse{ID: batchID, ProcessingStatus: "canceled"}, nil
		},
	}

	_, err := PollBatch(context.Background(), client, "batch_can",
		WithPollInterval(5*time.Millisecond),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canceled")
}

func TestPollBatchContextDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	client := &stubClient{
		getBatch: func(_ context.Context, batchID string) (*BatchResponse, error) {
			return &BatchResponse{ID: batchID, ProcessingStatus: "in_progress"}, nil
		},
	}

	_, err := PollBatch(ctx, client, "batch_slow",
		WithPollInterval(10*time.Millisecond),
		WithPollCap(15*time.Millisecond),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPollBatchOwnTimeout(t *testing.T) {
	client := &stubClient{
		getBatch: func(_ context.Context, batchID string) (*BatchResponse, error) {
			return &BatchResponse{ID: batchID, ProcessingStatus: "in_progress"}, nil
		},
	}

	_, err := PollBatch(context.Background(), client, "batch_slow",
		WithPollInterval(5*time.Millisecond),
		WithPollCap(10*time.Millisecond),
		WithPollTimeout(40*time.Millisecond),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPollBatchAPIError(t *testing.T) {
	client := &stubClient{
		getBatch: func(context.Context, string) (*BatchResponse, error) {
			return nil, fmt.Errorf("api error: 500")
		},
	}

	_, err := PollBatch(context.Background(), client, "batch_err",
		WithPollInterval(5*time.Millisecond),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api error: 500")
}

func TestPollBatchBackoffGrows(t *testing.T) {
	var stamps []time.Time
	var calls atomic.Int32
	client := &stubClient{
		getBatch: func(_ context.Context, batchID string) (*BatchResponse, error) {
			stamps = append(stamps, time.Now())
			if calls.Add(1) < 4 {
				return &BatchResponse{ID: batchID, ProcessingStatus: "in_progress"}, nil
			}
			return &BatchResponse{ID: batchID, ProcessingStatus: "ended"}, nil
		},
	}

	_, err := PollBatch(context.Background(), client, "batch_backoff",
		WithPollInterval(20*time.Millisecond),
		WithPollCap(100*time.Millisecond),
	)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(stamps), 3)

	gap1 := stamps[1].Sub(stamps[0])
	gap2 := stamps[2].Sub(stamps[1])
	assert.Greater(t, gap2.Milliseconds(), gap1.Milliseconds()-5,
		"interval should roughly double: %v then %v", gap1, gap2)
}

func TestCollectBatchResults(t *testing.T) {
	items := []BatchResultItem{
		{CustomID: "rec-8f3a", Type: "succeeded", Message: &MessageResponse{
			ID:      "msg_1",
			Content: []ContentBlock{{Type: "text", Text: `{"property_type":"duplex","area":"Lekki Phase 1"}`}},
		}},
		{CustomID: "rec-11c0", Type: "errored"},
		{CustomID: "rec-2d77", Type: "succeeded", Message: &MessageResponse{
			ID:      "msg_3",
			Content: []ContentBlock{{Type: "text", Text: `{"property_type":"bungalow"}`}},
		}},
		{CustomID: "rec-909b", Type: "expired"},
	}

	results, err := CollectBatchResults(newSliceIterator(items, nil))
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Contains(t, results["rec-8f3a"].Content[0].Text, "Lekki Phase 1")
	assert.Nil(t, results["rec-11c0"])
	assert.Nil(t, results["rec-909b"])
}

func TestCollectBatchResultsDetailedKeepsFailures(t *testing.T) {
	items := []BatchResultItem{
		{CustomID: "rec-8f3a", Type: "succeeded", Message: &MessageResponse{ID: "msg_1"}},
		{CustomID: "rec-11c0", Type: "errored"},
		{CustomID: "rec-909b", Type: "canceled"},
	}

	result, err := CollectBatchResultsDetailed(newSliceIterator(items, nil))
	require.NoError(t, err)
	assert.Len(t, result.Succeeded, 1)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, BatchFailure{CustomID: "rec-11c0", Type: "errored"}, result.Failures[0])
	assert.Equal(t, BatchFailure{CustomID: "rec-909b", Type: "canceled"}, result.Failures[1])
}

func TestCollectBatchResultsEmpty(t *testing.T) {
	results, err := CollectBatchResults(newSliceIterator(nil, nil))
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCollectBatchResultsIteratorError(t *testing.T) {
	items := []BatchResultItem{
		{CustomID: "rec-8f3a", Type: "succeeded", Message: &MessageResponse{ID: "msg_1"}},
	}

	_, err := CollectBatchResults(newSliceIterator(items, fmt.Errorf("stream interrupted")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stream interrupted")
}
