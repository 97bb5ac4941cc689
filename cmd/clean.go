package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/corpusfilter/config"
	"github.com/mohammad-safakhou/corpusfilter/internal/jsonl"
	"github.com/mohammad-safakhou/corpusfilter/internal/pipeline"
	"github.com/mohammad-safakhou/corpusfilter/internal/runtime"
	"github.com/mohammad-safakhou/corpusfilter/internal/worker"
)

func cleanCMD() *cobra.Command {
	var (
		cfgPath       string
		inPath        string
		outPath       string
		languages     []string
		minWords      int
		workers       int
		metricsPort   int
		noMaskPII     bool
		noQualityGate bool
	)

	clean := &cobra.Command{
		Use:   "clean",
		Short: "Run the full filter pipeline over a JSONL document stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if len(languages) > 0 {
				cfg.Filter.AllowedLanguages = languages
			}
			if minWords > 0 {
				cfg.Quality.Bounds.MinWords = minWords
			}
			if workers > 0 {
				cfg.Workers.Count = workers
			}
			if noMaskPII {
				cfg.Filter.MaskPII = false
			}
			if noQualityGate {
				cfg.Quality.Enabled = false
			}

			logger := runtime.NewLogger("CLEAN")
			runID := uuid.NewString()
			logger.Printf("run %s starting", runID)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			metrics := runtime.NewMetrics()
			if metricsPort > 0 {
				go metrics.Serve(ctx, metricsPort, logger)
			}

			in, err := openInput(inPath)
			if err != nil {
				return err
			}
			defer in.Close()
			out, err := openOutput(outPath)
			if err != nil {
				return err
			}
			defer out.Close()

			stages := pipeline.Stages{
				Language: true,
				Harmful:  true,
				Quality:  cfg.Quality.Enabled,
				MaskPII:  cfg.Filter.MaskPII,
			}
			pipe := buildPipeline(cfg, stages, logger, metrics)
			pool := worker.NewPool(pipe, cfg.Workers.Count, logger, metrics)

			summary, err := pool.Run(ctx, jsonl.NewReader(in, logger), jsonl.NewWriter(out))
			if err != nil {
				return err
			}

			logger.Printf("run %s finished: total=%d kept=%d skipped=%d", runID, summary.Total, summary.Kept, summary.Skipped)
			for gate, n := range summary.Rejected {
				logger.Printf("run %s rejected %d records at the %s gate", runID, n, gate)
			}
			return nil
		},
	}

	clean.Flags().StringVarP(&cfgPath, "config", "c", "", "config file")
	clean.Flags().StringVarP(&inPath, "input", "i", "-", "input JSONL ('-' = stdin)")
	clean.Flags().StringVarP(&outPath, "output", "o", "-", "output JSONL ('-' = stdout)")
	clean.Flags().StringSliceVar(&languages, "languages", nil, "allowed language codes (overrides config)")
	clean.Flags().IntVar(&minWords, "min-words", 0, "minimum word count override for the quality filter")
	clean.Flags().IntVar(&workers, "workers", 0, "worker count (0 = one per CPU)")
	clean.Flags().IntVar(&metricsPort, "metrics-port", 0, "serve prometheus metrics on this port during the run")
	clean.Flags().BoolVar(&noMaskPII, "no-mask-pii", false, "emit original text instead of masked text")
	clean.Flags().BoolVar(&noQualityGate, "no-quality-filter", false, "skip the heuristic quality gate")

	return clean
}
