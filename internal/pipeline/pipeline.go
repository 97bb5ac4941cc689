// Package pipeline sequences the annotation stages over a document record
// and applies the decision policy. Stage order is fixed: language first
// (cheap, structural), then harmful-content classification, then quality
// heuristics, with PII masking last so every other stage sees the original
// text. Each stage writes only its own record slots.
package pipeline

import (
	"context"
	"log"

	"github.com/mohammad-safakhou/corpusfilter/config"
	"github.com/mohammad-safakhou/corpusfilter/internal/classify"
	"github.com/mohammad-safakhou/corpusfilter/internal/harmful"
	"github.com/mohammad-safakhou/corpusfilter/internal/langid"
	"github.com/mohammad-safakhou/corpusfilter/internal/pii"
	"github.com/mohammad-safakhou/corpusfilter/internal/quality"
	"github.com/mohammad-safakhou/corpusfilter/internal/record"
	"github.com/mohammad-safakhou/corpusfilter/internal/runtime"
)

// Stages toggles individual pipeline stages. The zero value runs nothing;
// AllStages is the full pipeline.
type Stages struct {
	Language bool
	Harmful  bool
	Quality  bool
	MaskPII  bool
}

// AllStages enables every stage.
func AllStages() Stages {
	return Stages{Language: true, Harmful: true, Quality: true, MaskPII: true}
}

// Pipeline runs annotation stages over records. Classifier handles are
// constructed once at startup and shared read-only across workers; the
// pipeline itself carries no per-record state.
type Pipeline struct {
	cfg          *config.Config
	stages       Stages
	lang         classify.Classifier
	nsfw         *harmful.Judge
	toxic        *harmful.Judge
	qualityModel *quality.Classifier
	logger       *log.Logger
	metrics      *runtime.Metrics
}

// New assembles a pipeline. lang may be nil only when the language stage is
// disabled; nil judges degrade to benign.
func New(cfg *config.Config, stages Stages, lang classify.Classifier, nsfw, toxic *harmful.Judge, logger *log.Logger, metrics *runtime.Metrics) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		stages:  stages,
		lang:    lang,
		nsfw:    nsfw,
		toxic:   toxic,
		logger:  logger,
		metrics: metrics,
	}
}

// WithQualityClassifier switches the quality stage to the trained
// wiki-vs-cc model, keeping the heuristic bounds as the fallback when the
// model cannot answer.
func (p *Pipeline) WithQualityClassifier(c *quality.Classifier) *Pipeline {
	p.qualityModel = c
	return p
}

// Annotate runs the enabled stages over doc in order, attaching each
// stage's fields. It never fails a record: classifier trouble degrades to
// unknown/benign annotations and processing continues.
func (p *Pipeline) Annotate(ctx context.Context, doc *record.Document) {
	if p.stages.Language {
		p.annotateLanguage(ctx, doc)
	}
	if p.stages.Harmful {
		p.annotateHarmful(ctx, doc)
	}
	if p.stages.Quality {
		p.annotateQuality(ctx, doc)
	}
	if p.stages.MaskPII {
		p.Mask(doc)
	}
}

// Process annotates doc and applies the decision policy. Masking runs only
// on kept records: rejected records are dropped whole, so masking them is
// wasted work. Masking itself never rejects.
func (p *Pipeline) Process(ctx context.Context, doc *record.Document) (bool, Reason) {
	if p.stages.Language {
		p.annotateLanguage(ctx, doc)
	}
	if p.stages.Harmful {
		p.annotateHarmful(ctx, doc)
	}
	if p.stages.Quality {
		p.annotateQuality(ctx, doc)
	}

	keep, reason := Decide(doc, p.cfg)
	if !keep {
		if p.metrics != nil {
			p.metrics.RecordsRejected.WithLabelValues(string(reason)).Inc()
		}
		return false, reason
	}

	if p.stages.MaskPII && p.cfg.Filter.MaskPII {
		p.Mask(doc)
	}
	if p.metrics != nil {
		p.metrics.RecordsKept.Inc()
	}
	return true, ReasonNone
}

func (p *Pipeline) annotateLanguage(ctx context.Context, doc *record.Document) {
	var la record.LanguageAnnotator = doc
	code, score := langid.Unknown, 0.0
	if p.lang != nil {
		code, score = langid.Identify(ctx, p.lang, doc.Text)
	}
	if code == langid.Unknown && p.metrics != nil {
		p.metrics.ClassifierDegraded.WithLabelValues("language").Inc()
	}
	la.SetLanguage(code, score)
}

func (p *Pipeline) annotateHarmful(ctx context.Context, doc *record.Document) {
	var ha record.HarmfulAnnotator = doc
	n := p.nsfw.Classify(ctx, doc.Text)
	x := p.toxic.Classify(ctx, doc.Text)
	ha.SetNSFW(n.Flagged, n.Score)
	ha.SetToxic(x.Flagged, x.Score)
}

func (p *Pipeline) annotateQuality(ctx context.Context, doc *record.Document) {
	var qa record.QualityAnnotator = doc
	if p.qualityModel != nil {
		if verdict, ok := p.qualityModel.Passes(ctx, doc.Text); ok {
			qa.SetPassesQuality(verdict)
			return
		}
		if p.metrics != nil {
			p.metrics.ClassifierDegraded.WithLabelValues("quality").Inc()
		}
	}
	qa.SetPassesQuality(quality.Passes(doc.Text, p.cfg.Quality.Bounds))
}

// Mask rewrites doc.Text with all PII sentinels and records the per-kind
// counts. Exposed for the single-stage maskpii command.
func (p *Pipeline) Mask(doc *record.Document) {
	var pa record.PIIAnnotator = doc
	masked, counts := pii.MaskAll(doc.Text)
	pa.SetMasked(masked, map[string]int{
		"email": counts.Emails,
		"phone": counts.Phones,
		"ip":    counts.IPs,
	})
	if p.metrics != nil {
		p.metrics.PIIMasked.WithLabelValues("email").Add(float64(counts.Emails))
		p.metrics.PIIMasked.WithLabelValues("phone").Add(float64(counts.Phones))
		p.metrics.PIIMasked.WithLabelValues("ip").Add(float64(counts.IPs))
	}
	if counts.Total() > 0 && p.logger != nil {
		p.logger.Printf("masked %d PII replacements in %s", counts.Total(), doc.URL)
	}
}
