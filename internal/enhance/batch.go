package enhance

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Tee-David/realtors-practice-sub002/internal/model"
	"github.com/Tee-David/realtors-practice-sub002/pkg/anthropic"
)

// BatchInput pairs a record with the page text it was extracted from.
type BatchInput struct {
	Record *model.NormalizedRecord
	Text   string
}

// EnhanceBatch enhances many records through the message batch API,
// which halves the per-token cost for large backfills. A primer request
// warms the shared system-prompt cache before the batch is submitted.
// Records whose batch item fails fall back to pattern enhancement, so
// the call as a whole only errors when the batch itself cannot run.
func (e *LLMEnhancer) EnhanceBatch(ctx context.Context, inputs []BatchInput) error {
	if len(inputs) == 0 {
		return nil
	}

	req := anthropic.BatchRequest{Requests: make([]anthropic.BatchRequestItem, len(inputs))}
	for i, in := range inputs {
		req.Requests[i] = anthropic.BatchRequestItem{
			CustomID: fmt.Sprintf("enhance-%d", i),
			Params:   e.request(in.Text),
		}
	}

	if resp, err := anthropic.PrimerRequest(ctx, e.client, req.Requests[0].Params); err != nil {
		zap.L().Debug("enhance: primer request failed", zap.Error(err))
	} else {
		resp.Usage.LogCost(e.model, "enhance-primer")
	}

	batch, err := e.client.CreateBatch(ctx, req)
	if err != nil {
		return err
	}
	zap.L().Info("enhance: batch submitted",
		zap.String("batch_id", batch.ID),
		zap.Int("records", len(inputs)),
	)

	if _, err := anthropic.PollBatch(ctx, e.client, batch.ID); err != nil {
		return err
	}

	iter, err := e.client.GetBatchResults(ctx, batch.ID)
	if err != nil {
		return err
	}
	results, err := anthropic.CollectBatchResults(iter)
	if err != nil {
		return err
	}

	for i, in := range inputs {
		resp, ok := results[fmt.Sprintf("enhance-%d", i)]
		if !ok {
			e.fallback.Enhance(ctx, in.Record, in.Text)
			continue
		}
		resp.Usage.LogCost(e.model, "enhance-batch")
		if enh, parsed := parseEnhancement(resp); parsed {
			apply(in.Record, enh)
		} else {
			e.fallback.Enhance(ctx, in.Record, in.Text)
		}
	}
	return nil
}
