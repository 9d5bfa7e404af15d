package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Tee-David/realtors-practice-sub002/internal/model"
	"github.com/Tee-David/realtors-practice-sub002/internal/pipeline"
	"github.com/Tee-David/realtors-practice-sub002/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  "Serves the pipeline over HTTP: submit scraped pages for processing and query stored records and rejections.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		limiter := rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)
		router := newRouter(env, limiter)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go shutdownOnSignal(ctx, srv)

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// shutdownGrace bounds how long in-flight requests get to finish once a
// termination signal arrives.
const shutdownGrace = 10 * time.Second

// shutdownOnSignal drains the server after ctx is canceled. The signal
// context is already dead at that point, so the drain runs under its
// own deadline instead.
func shutdownOnSignal(ctx context.Context, srv *http.Server) {
	<-ctx.Done()
	zap.L().Info("shutting down server")

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		zap.L().Warn("serve: shutdown did not drain cleanly", zap.Error(err))
	}
}

// newRouter builds the API routes. Split out so handler tests can mount
// the router without a listening server.
func newRouter(env *pipelineEnv, limiter *rate.Limiter) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	if limiter != nil {
		r.Use(rateLimit(limiter))
	}

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/process", handleProcess(env))
		r.Get("/records", handleListRecords(env))
		r.Get("/records/{id}", handleGetRecord(env))
		r.Get("/rejections", handleListRejections(env))
	})

	return r
}

func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func handleProcess(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var sample model.PageSample
		if err := json.NewDecoder(req.Body).Decode(&sample); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if sample.URL == "" {
			writeError(w, http.StatusBadRequest, "url is required")
			return
		}
		if sample.RawMarkup == "" && sample.VisibleText == "" {
			writeError(w, http.StatusBadRequest, "raw_markup or visible_text is required")
			return
		}

		rec := env.Pipeline.Process(req.Context(), sample)
		pipeline.Stamp(rec)

		if err := env.Store.SaveRecord(req.Context(), rec); err != nil {
			zap.L().Error("serve: save record failed", zap.String("url", rec.URL), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "save failed")
			return
		}
		if !rec.Accepted() {
			if err := env.Store.SaveRejection(req.Context(), model.RejectionOf(rec)); err != nil {
				zap.L().Warn("serve: save rejection failed", zap.String("url", rec.URL), zap.Error(err))
			}
		}

		writeJSON(w, http.StatusOK, rec)
	}
}

func handleListRecords(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()

		filter := store.RecordFilter{
			SiteHint: q.Get("site"),
			MinScore: queryInt(q.Get("min_score")),
			Limit:    queryInt(q.Get("limit")),
			Offset:   queryInt(q.Get("offset")),
		}
		if v := q.Get("accepted"); v != "" {
			accepted := v == "true" || v == "1"
			filter.Accepted = &accepted
		}

		records, err := env.Store.ListRecords(req.Context(), filter)
		if err != nil {
			zap.L().Error("serve: list records failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list failed")
			return
		}
		if records == nil {
			records = []model.NormalizedRecord{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func handleGetRecord(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		rec, err := env.Store.GetRecord(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "record not found")
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func handleListRejections(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()

		rejections, err := env.Store.ListRejections(req.Context(),
			queryInt(q.Get("limit")), queryInt(q.Get("offset")))
		if err != nil {
			zap.L().Error("serve: list rejections failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list failed")
			return
		}
		if rejections == nil {
			rejections = []model.Rejection{}
		}
		writeJSON(w, http.StatusOK, rejections)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func queryInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
