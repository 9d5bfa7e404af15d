package main

import (
	"bufio"
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Tee-David/realtors-practice-sub002/internal/enhance"
	"github.com/Tee-David/realtors-practice-sub002/internal/model"
	"github.com/Tee-David/realtors-practice-sub002/internal/page"
)

var (
	processURL          string
	processSite         string
	processBatch        string
	processDryRun       bool
	processBatchEnhance bool
)

var processCmd = &cobra.Command{
	Use:   "process [html files...]",
	Short: "Classify, extract and score scraped pages",
	Long:  "Runs the full pipeline over HTML files or a JSONL batch of page samples, persisting records and a rejection log.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		samples, err := collectSamples(args)
		if err != nil {
			return err
		}
		if len(samples) == 0 {
			return eris.New("no input: pass HTML files or --batch")
		}

		env, err := initPipeline(ctx, "process")
		if err != nil {
			return err
		}
		defer env.Close()

		var records []*model.NormalizedRecord
		if processBatchEnhance {
			records = processWithBatchEnhance(ctx, env, samples)
		} else {
			records = env.Pipeline.ProcessAll(ctx, samples, cfg.Pipeline.Workers)
		}

		if processDryRun {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			for _, rec := range records {
				if err := enc.Encode(rec); err != nil {
					return eris.Wrap(err, "encode record")
				}
			}
			return nil
		}

		var rejections []model.Rejection
		for _, rec := range records {
			if !rec.Accepted() {
				rejections = append(rejections, model.RejectionOf(rec))
			}
		}

		saved, err := env.Store.SaveRecords(ctx, records)
		if err != nil {
			return eris.Wrap(err, "save records")
		}
		if len(rejections) > 0 {
			if _, err := env.Store.SaveRejections(ctx, rejections); err != nil {
				return eris.Wrap(err, "save rejections")
			}
		}

		zap.L().Info("process complete",
			zap.Int64("saved", saved),
			zap.Int("accepted", len(records)-len(rejections)),
			zap.Int("rejected", len(rejections)))
		return nil
	},
}

// processWithBatchEnhance runs the pipeline with inline enhancement
// disabled, then enhances the accepted records through the message
// batch API at half the per-token cost. A batch-level failure leaves
// the records unenhanced but still saved.
func processWithBatchEnhance(ctx context.Context, env *pipelineEnv, samples []model.PageSample) []*model.NormalizedRecord {
	llm, ok := env.Enhancer.(*enhance.LLMEnhancer)
	if !ok {
		zap.L().Warn("process: --batch-enhance needs the llm enhancer, enhancing inline")
		return env.Pipeline.ProcessAll(ctx, samples, cfg.Pipeline.Workers)
	}

	records := env.Pipeline.WithoutEnhancer().ProcessAll(ctx, samples, cfg.Pipeline.Workers)

	var inputs []enhance.BatchInput
	for i, rec := range records {
		if rec == nil || !rec.Accepted() {
			continue
		}
		inputs = append(inputs, enhance.BatchInput{
			Record: rec,
			Text:   page.New(samples[i]).VisibleText,
		})
	}
	if len(inputs) == 0 {
		return records
	}

	if err := llm.EnhanceBatch(ctx, inputs); err != nil {
		zap.L().Warn("process: batch enhancement failed, records kept unenhanced", zap.Error(err))
	}
	return records
}

// collectSamples builds page samples from positional HTML files and the
// optional JSONL batch file.
func collectSamples(paths []string) ([]model.PageSample, error) {
	var samples []model.PageSample

	for _, path := range paths {
		markup, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "read %s", path)
		}
		url := processURL
		if url == "" || len(paths) > 1 {
			url = "file://" + path
		}
		samples = append(samples, model.PageSample{
			URL:       url,
			RawMarkup: string(markup),
			SiteHint:  processSite,
		})
	}

	if processBatch != "" {
		batch, err := readBatch(processBatch)
		if err != nil {
			return nil, err
		}
		samples = append(samples, batch...)
	}

	return samples, nil
}

// readBatch reads page samples from a JSONL file, one sample per line.
func readBatch(path string) ([]model.PageSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open batch %s", path)
	}
	defer f.Close()

	var samples []model.PageSample
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var sample model.PageSample
		if err := json.Unmarshal(scanner.Bytes(), &sample); err != nil {
			return nil, eris.Wrapf(err, "parse batch line %d", line)
		}
		samples = append(samples, sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "read batch %s", path)
	}
	return samples, nil
}

func init() {
	processCmd.Flags().StringVar(&processURL, "url", "", "source URL for a single HTML file")
	processCmd.Flags().StringVar(&processSite, "site", "", "site hint recorded on each sample")
	processCmd.Flags().StringVar(&processBatch, "batch", "", "JSONL file of page samples")
	processCmd.Flags().BoolVar(&processDryRun, "dry-run", false, "print records instead of persisting")
	processCmd.Flags().BoolVar(&processBatchEnhance, "batch-enhance", false, "enhance accepted records through the message batch API after processing")
	rootCmd.AddCommand(processCmd)
}
