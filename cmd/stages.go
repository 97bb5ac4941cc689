package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/corpusfilter/config"
	"github.com/mohammad-safakhou/corpusfilter/internal/jsonl"
	"github.com/mohammad-safakhou/corpusfilter/internal/pipeline"
	"github.com/mohammad-safakhou/corpusfilter/internal/runtime"
	"github.com/mohammad-safakhou/corpusfilter/internal/worker"
)

// stageCMD builds a single-stage command: it annotates every record with
// one stage's fields and writes all records back out, keeping the old
// one-script-per-stage workflow available on top of the in-process
// pipeline.
func stageCMD(use, short string, stages pipeline.Stages) *cobra.Command {
	var (
		cfgPath string
		inPath  string
		outPath string
		workers int
	)

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Workers.Count = workers
			}

			logger := runtime.NewLogger(strings.ToUpper(use))

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

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

			pipe := buildPipeline(cfg, stages, logger, nil)
			pool := worker.NewPool(pipe, cfg.Workers.Count, logger, nil)

			summary, err := pool.RunAnnotate(ctx, jsonl.NewReader(in, logger), jsonl.NewWriter(out))
			if err != nil {
				return err
			}
			logger.Printf("annotated %d records (%d malformed lines skipped)", summary.Total, summary.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config file")
	cmd.Flags().StringVarP(&inPath, "input", "i", "-", "input JSONL ('-' = stdin)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "-", "output JSONL ('-' = stdout)")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker count (0 = one per CPU)")
	return cmd
}

func langidCMD() *cobra.Command {
	return stageCMD("langid", "Annotate records with language and confidence", pipeline.Stages{Language: true})
}

func harmfulCMD() *cobra.Command {
	return stageCMD("harmful", "Annotate records with NSFW and toxicity judgments", pipeline.Stages{Harmful: true})
}

func qualityCMD() *cobra.Command {
	return stageCMD("quality", "Annotate records with the heuristic quality verdict", pipeline.Stages{Quality: true})
}

func maskpiiCMD() *cobra.Command {
	return stageCMD("maskpii", "Mask emails, phone numbers and IPs in record text", pipeline.Stages{MaskPII: true})
}
