package anthropic

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// SystemCacheTTL is the prompt-cache tier for enhancement system
// prompts. A backfill run can outlive the default 5 minute window, so
// blocks pin the 1 hour tier.
const SystemCacheTTL = "1h"

// BuildCachedSystemBlocks wraps a system prompt in a single block with
// a cache breakpoint. Every enhancement request shares the same system
// prompt, so one warm cache serves a whole run.
func BuildCachedSystemBlocks(text string) []SystemBlock {
	return []SystemBlock{
		{
			Text:         text,
			CacheControl: &CacheControl{TTL: SystemCacheTTL},
		},
	}
}

// PrimerRequest sends one message to write the system prompt into the
// cache before a batch is submitted, so batch items read the cache
// instead of each paying the cache write.
func PrimerRequest(ctx context.Context, client Client, req MessageRequest) (*MessageResponse, error) {
	resp, err := client.CreateMessage(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "anthropic: primer request")
	}
	zap.L().Debug("anthropic: cache primed",
		zap.Int64("cache_write_tokens", resp.Usage.CacheCreationInputTokens),
		zap.Int64("cache_read_tokens", resp.Usage.CacheReadInputTokens),
	)
	return resp, nil
}
