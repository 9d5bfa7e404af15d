package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Tee-David/realtors-practice-sub002/internal/classifier"
	"github.com/Tee-David/realtors-practice-sub002/internal/enhance"
	"github.com/Tee-David/realtors-practice-sub002/internal/extract"
	"github.com/Tee-David/realtors-practice-sub002/internal/gazetteer"
	"github.com/Tee-David/realtors-practice-sub002/internal/locale"
	"github.com/Tee-David/realtors-practice-sub002/internal/pipeline"
	"github.com/Tee-David/realtors-practice-sub002/internal/quality"
	"github.com/Tee-David/realtors-practice-sub002/internal/store"
	anthropicpkg "github.com/Tee-David/realtors-practice-sub002/pkg/anthropic"
)

// pipelineEnv holds the initialized store and pipeline shared by the
// process, records, export and serve commands. Enhancer is the same
// instance wired into the pipeline, exposed for the deferred
// batch-enhancement path.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
	Enhancer enhance.Enhancer
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initPipeline validates config for the given mode, opens the store and
// builds the processing pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context, mode string) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	profile := locale.Naira()
	if cfg.Locale.ProfilePath != "" {
		profile, err = locale.Load(cfg.Locale.ProfilePath)
		if err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "load locale profile")
		}
	}

	gaz := gazetteer.Default()
	if cfg.Gazetteer.Path != "" {
		gaz, err = gazetteer.Load(cfg.Gazetteer.Path)
		if err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "load gazetteer")
		}
	}

	var client anthropicpkg.Client
	if cfg.Anthropic.Key != "" {
		client = anthropicpkg.NewClient(cfg.Anthropic.Key)
	} else {
		zap.L().Debug("REALTORS_ANTHROPIC_KEY not set, LLM enhancement unavailable")
	}
	enhancer := enhance.Select(cfg.Enhancer.Mode, client, cfg.Anthropic.Model, gaz)

	pl := pipeline.New(
		classifier.New(cfg.Classifier.CategoryThreshold),
		extract.New(profile, gaz),
		quality.New(quality.Config{
			AcceptThreshold:        cfg.Quality.AcceptThreshold,
			GenericLocationPenalty: cfg.Quality.GenericLocationPenalty,
		}),
		enhancer,
	)

	return &pipelineEnv{Store: st, Pipeline: pl, Enhancer: enhancer}, nil
}
