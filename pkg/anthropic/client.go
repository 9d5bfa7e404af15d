// Package anthropic wraps the official SDK behind a small interface the
// enhancement layer can mock. It exposes single-message calls for online
// enhancement and the Batches API for offline runs, and classifies API
// failures so the retry layer knows what is safe to retry.
package anthropic

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/jsonl"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Tee-David/realtors-practice-sub002/internal/resilience"
)

// Client is the surface the enhancers depend on.
type Client interface {
	CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error)
	CreateBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error)
	GetBatch(ctx context.Context, batchID string) (*BatchResponse, error)
	GetBatchResults(ctx context.Context, batchID string) (BatchResultIterator, error)
}

// BatchResultIterator streams per-record results from an ended batch.
type BatchResultIterator interface {
	Next() bool
	Item() BatchResultItem
	Err() error
	Close() error
}

// MessageRequest carries everything one enhancement call needs.
type MessageRequest struct {
	Model       string
	MaxTokens   int64
	System      []SystemBlock
	Messages    []Message
	Temperature *float64
}

// SystemBlock is one system prompt block. A non-nil CacheControl marks
// it as a prompt-cache breakpoint.
type SystemBlock struct {
	Text         string
	CacheControl *CacheControl
}

// CacheControl sets the cache TTL for a block, "5m" or "1h".
type CacheControl struct {
	TTL string
}

// Message is a single turn, role "user" or "assistant".
type Message struct {
	Role    string
	Content string
}

// MessageResponse is the model's reply plus token accounting.
type MessageResponse struct {
	ID           string
	Model        string
	Content      []ContentBlock
	StopReason   string
	Usage        TokenUsage
	StopSequence string
}

// ContentBlock is one response block; the enhancers only read "text".
type ContentBlock struct {
	Type string
	Text string
}

// TokenUsage tracks token consumption for one call.
type TokenUsage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

// modelPricing maps model ID to {input, output} USD per million tokens.
// Only the models the enhancer is configured to run are listed; anything
// else estimates to zero.
var modelPricing = map[string][2]float64{
	"claude-haiku-4-5-20251001":  {0.80, 4.00},
	"claude-sonnet-4-5-20250929": {3.00, 15.00},
}

// EstimateCost returns the estimated USD cost of this usage on the given
// model. Cache writes bill at 1.25x input, cache reads at 0.1x.
func (u TokenUsage) EstimateCost(model string) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		return 0
	}
	in := (float64(u.InputTokens) / 1e6) * pricing[0]
	out := (float64(u.OutputTokens) / 1e6) * pricing[1]
	cacheWrite := (float64(u.CacheCreationInputTokens) / 1e6) * pricing[0] * 1.25
	cacheRead := (float64(u.CacheReadInputTokens) / 1e6) * pricing[0] * 0.1
	return in + out + cacheWrite + cacheRead
}

// LogCost emits one structured usage line attributed to a phase, so a
// run's spend can be summed from the logs.
func (u TokenUsage) LogCost(model, phase string) {
	zap.L().Info("anthropic: usage",
		zap.String("model", model),
		zap.String("phase", phase),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Int64("cache_write_tokens", u.CacheCreationInputTokens),
		zap.Int64("cache_read_tokens", u.CacheReadInputTokens),
		zap.Float64("estimated_cost_usd", u.EstimateCost(model)),
	)
}

// BatchRequest submits many enhancement requests in one batch.
type BatchRequest struct {
	Requests []BatchRequestItem
}

// BatchRequestItem pairs a caller-chosen ID with its request. The
// enhancers use the record content hash as the CustomID.
type BatchRequestItem struct {
	CustomID string
	Params   MessageRequest
}

// BatchResponse describes a batch's processing state.
type BatchResponse struct {
	ID               string
	ProcessingStatus string
	ResultsURL       string
	RequestCounts    RequestCounts
}

// RequestCounts tallies batch items by outcome.
type RequestCounts struct {
	Processing int64
	Succeeded  int64
	Errored    int64
	Canceled   int64
	Expired    int64
}

// BatchResultItem is one item from an ended batch. Message is set only
// when Type is "succeeded".
type BatchResultItem struct {
	CustomID string
	Type     string // "succeeded", "errored", "canceled", "expired"
	Message  *MessageResponse
}

// apiClient is the SDK-backed Client.
type apiClient struct {
	sdk sdk.Client
}

// NewClient returns a Client backed by the official SDK.
func NewClient(apiKey string) Client {
	return &apiClient{
		sdk: sdk.NewClient(option.WithAPIKey(apiKey)),
	}
}

// classify marks rate-limit, overload and server errors as transient so
// the retry layer in the enhancers can tell them from hard failures.
func classify(err error, op string) error {
	var apierr *sdk.Error
	if errors.As(err, &apierr) && resilience.IsTransientHTTPStatus(apierr.StatusCode) {
		err = resilience.NewTransientError(err, apierr.StatusCode)
	}
	return eris.Wrap(err, op)
}

func (c *apiClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages:  sdkMessages(req.Messages),
	}
	if len(req.System) > 0 {
		params.System = sdkSystem(req.System)
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}

	msg, err := c.sdk.Messages.New(ctx, params)
	if err != nil {
		return nil, classify(err, "anthropic: create message")
	}
	return messageFromSDK(msg), nil
}

func (c *apiClient) CreateBatch(ctx context.Context, req BatchRequest) (*BatchResponse, error) {
	items := make([]sdk.MessageBatchNewParamsRequest, len(req.Requests))
	for i, r := range req.Requests {
		items[i] = sdk.MessageBatchNewParamsRequest{
			CustomID: r.CustomID,
			Params: sdk.MessageBatchNewParamsRequestParams{
				Model:     sdk.Model(r.Params.Model),
				MaxTokens: r.Params.MaxTokens,
				Messages:  sdkMessages(r.Params.Messages),
			},
		}
		if len(r.Params.System) > 0 {
			items[i].Params.System = sdkSystem(r.Params.System)
		}
		if r.Params.Temperature != nil {
			items[i].Params.Temperature = sdk.Float(*r.Params.Temperature)
		}
	}

	batch, err := c.sdk.Messages.Batches.New(ctx, sdk.MessageBatchNewParams{Requests: items})
	if err != nil {
		return nil, classify(err, "anthropic: create batch")
	}
	return batchFromSDK(batch), nil
}

func (c *apiClient) GetBatch(ctx context.Context, batchID string) (*BatchResponse, error) {
	batch, err := c.sdk.Messages.Batches.Get(ctx, batchID)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("anthropic: get batch %s", batchID))
	}
	return batchFromSDK(batch), nil
}

func (c *apiClient) GetBatchResults(ctx context.Context, batchID string) (BatchResultIterator, error) {
	stream := c.sdk.Messages.Batches.ResultsStreaming(ctx, batchID)
	if err := stream.Err(); err != nil {
		return nil, classify(err, fmt.Sprintf("anthropic: get batch results %s", batchID))
	}
	return &resultStream{stream: stream}, nil
}

// resultStream adapts the SDK's jsonl stream to BatchResultIterator.
type resultStream struct {
	stream *jsonl.Stream[sdk.MessageBatchIndividualResponse]
	item   BatchResultItem
}

func (s *resultStream) Next() bool {
	if !s.stream.Next() {
		return false
	}
	s.item = resultFromSDK(s.stream.Current())
	return true
}

func (s *resultStream) Item() BatchResultItem { return s.item }
func (s *resultStream) Err() error            { return s.stream.Err() }
func (s *resultStream) Close() error          { return s.stream.Close() }

func sdkMessages(msgs []Message) []sdk.MessageParam {
	out := make([]sdk.MessageParam, len(msgs))
	for i, m := range msgs {
		block := sdk.NewTextBlock(m.Content)
		if m.Role == "assistant" {
			out[i] = sdk.NewAssistantMessage(block)
		} else {
			out[i] = sdk.NewUserMessage(block)
		}
	}
	return out
}

func sdkSystem(blocks []SystemBlock) []sdk.TextBlockParam {
	out := make([]sdk.TextBlockParam, len(blocks))
	for i, b := range blocks {
		out[i] = sdk.TextBlockParam{Text: b.Text}
		if b.CacheControl != nil {
			cc := sdk.NewCacheControlEphemeralParam()
			if b.CacheControl.TTL != "" {
				cc.SetExtraFields(map[string]any{"ttl": b.CacheControl.TTL})
			}
			out[i].CacheControl = cc
		}
	}
	return out
}

func messageFromSDK(msg *sdk.Message) *MessageResponse {
	blocks := make([]ContentBlock, 0, len(msg.Content))
	for _, b := range msg.Content {
		blocks = append(blocks, ContentBlock{Type: b.Type, Text: b.Text})
	}
	return &MessageResponse{
		ID:           msg.ID,
		Model:        string(msg.Model),
		Content:      blocks,
		StopReason:   string(msg.StopReason),
		StopSequence: msg.StopSequence,
		Usage: TokenUsage{
			InputTokens:              msg.Usage.InputTokens,
			OutputTokens:             msg.Usage.OutputTokens,
			CacheCreationInputTokens: msg.Usage.CacheCreationInputTokens,
			CacheReadInputTokens:     msg.Usage.CacheReadInputTokens,
		},
	}
}

func batchFromSDK(batch *sdk.MessageBatch) *BatchResponse {
	return &BatchResponse{
		ID:               batch.ID,
		ProcessingStatus: string(batch.ProcessingStatus),
		ResultsURL:       batch.ResultsURL,
		RequestCounts: RequestCounts{
			Processing: batch.RequestCounts.Processing,
			Succeeded:  batch.RequestCounts.Succeeded,
			Errored:    batch.RequestCounts.Errored,
			Canceled:   batch.RequestCounts.Canceled,
			Expired:    batch.RequestCounts.Expired,
		},
	}
}

func resultFromSDK(resp sdk.MessageBatchIndividualResponse) BatchResultItem {
	item := BatchResultItem{
		CustomID: resp.CustomID,
		Type:     resp.Result.Type,
	}
	if resp.Result.Type == "succeeded" {
		msg := resp.Result.Message
		item.Message = messageFromSDK(&msg)
	}
	return item
}
