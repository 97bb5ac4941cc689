package pipeline

import (
	"github.com/mohammad-safakhou/corpusfilter/config"
	"github.com/mohammad-safakhou/corpusfilter/internal/record"
)

// Reason names the gate that rejected a record.
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonLanguage Reason = "language"
	ReasonHarmful  Reason = "harmful"
	ReasonQuality  Reason = "quality"
)

// Decide evaluates the gates in fixed order (language, then harmful, then
// quality) and short-circuits on the first failure. Masking is not a gate:
// it never rejects. Slots a disabled stage left nil read as unknown
// language and zero harmful scores.
func Decide(doc *record.Document, cfg *config.Config) (bool, Reason) {
	// Gate 1: language must be allowed and confidently identified.
	lang := ""
	if doc.Language != nil {
		lang = *doc.Language
	}
	score := 0.0
	if doc.LanguageScore != nil {
		score = *doc.LanguageScore
	}
	if !cfg.Filter.AllowsLanguage(lang) || score < cfg.Filter.MinLanguageConfidence {
		return false, ReasonLanguage
	}

	// Gate 2: either harmful score at or above its threshold rejects.
	// Thresholds default high: these classifiers skew toward false
	// positives on under-represented languages.
	if scoreOf(doc.NSFWScore) >= cfg.Filter.NSFWThreshold ||
		scoreOf(doc.ToxicScore) >= cfg.Filter.ToxicThreshold {
		return false, ReasonHarmful
	}

	// Gate 3: heuristic quality, when enabled.
	if cfg.Quality.Enabled {
		if doc.PassesQuality == nil || !*doc.PassesQuality {
			return false, ReasonQuality
		}
	}

	return true, ReasonNone
}

func scoreOf(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
