package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mohammad-safakhou/corpusfilter/config"
	"github.com/mohammad-safakhou/corpusfilter/internal/classify"
	"github.com/mohammad-safakhou/corpusfilter/internal/harmful"
	"github.com/mohammad-safakhou/corpusfilter/internal/langid"
	"github.com/mohammad-safakhou/corpusfilter/internal/pipeline"
	"github.com/mohammad-safakhou/corpusfilter/internal/quality"
	"github.com/mohammad-safakhou/corpusfilter/internal/runtime"
)

// openInput opens path for reading; "" or "-" means stdin.
func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

// openOutput opens path for writing; "" or "-" means stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// buildPipeline assembles classifier handles once, at startup. Endpoints
// select the HTTP adapters; without one, language identification falls back
// to the in-process detector, the harmful judges stay nil (benign), and
// quality verdicts come from the heuristic bounds alone.
func buildPipeline(cfg *config.Config, stages pipeline.Stages, logger *log.Logger, metrics *runtime.Metrics) *pipeline.Pipeline {
	var lang classify.Classifier
	if stages.Language {
		if ep := cfg.Classifiers.LanguageEndpoint; ep != "" {
			lang = classify.NewHTTPClient(ep, cfg.Classifiers.Timeout)
		} else {
			lang = langid.NewDetector()
		}
	}

	var nsfw, toxic *harmful.Judge
	if stages.Harmful {
		if ep := cfg.Classifiers.NSFWEndpoint; ep != "" {
			nsfw = harmful.NewNSFWJudge(classify.NewHTTPClient(ep, cfg.Classifiers.Timeout))
		} else {
			logger.Printf("warn: no nsfw endpoint configured, nsfw stage degrades to benign")
		}
		if ep := cfg.Classifiers.ToxicityEndpoint; ep != "" {
			toxic = harmful.NewToxicityJudge(classify.NewHTTPClient(ep, cfg.Classifiers.Timeout))
		} else {
			logger.Printf("warn: no toxicity endpoint configured, toxicity stage degrades to benign")
		}
	}

	pipe := pipeline.New(cfg, stages, lang, nsfw, toxic, logger, metrics)
	if stages.Quality {
		if ep := cfg.Classifiers.QualityEndpoint; ep != "" {
			pipe = pipe.WithQualityClassifier(quality.NewClassifier(classify.NewHTTPClient(ep, cfg.Classifiers.Timeout)))
		}
	}
	return pipe
}
