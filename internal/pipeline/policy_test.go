package pipeline

import (
	"testing"

	"github.com/mohammad-safakhou/corpusfilter/config"
	"github.com/mohammad-safakhou/corpusfilter/internal/quality"
	"github.com/mohammad-safakhou/corpusfilter/internal/record"
)

func testConfig() *config.Config {
	return &config.Config{
		Filter: config.FilterConfig{
			AllowedLanguages:      []string{"en"},
			MinLanguageConfidence: 0.5,
			NSFWThreshold:         0.95,
			ToxicThreshold:        0.99,
			MaskPII:               true,
		},
		Quality: config.QualityConfig{Enabled: true, Bounds: quality.DefaultBounds()},
	}
}

func annotated(lang string, langScore, nsfw, toxic float64, passesQuality bool) *record.Document {
	doc := &record.Document{URL: "https://a.example", Text: "text"}
	doc.SetLanguage(lang, langScore)
	doc.SetNSFW(nsfw >= 0.5, nsfw)
	doc.SetToxic(toxic >= 0.5, toxic)
	doc.SetPassesQuality(passesQuality)
	return doc
}

func TestDecide_Keep(t *testing.T) {
	keep, reason := Decide(annotated("en", 0.9, 0.1, 0.1, true), testConfig())
	if !keep || reason != ReasonNone {
		t.Errorf("got (%v, %q)", keep, reason)
	}
}

// A disallowed language rejects at gate 1 no matter how clean and
// high-quality the document is.
func TestDecide_LanguageGateShortCircuits(t *testing.T) {
	doc := annotated("fr", 0.92, 0.0, 0.0, true)
	keep, reason := Decide(doc, testConfig())
	if keep {
		t.Fatal("disallowed language kept")
	}
	if reason != ReasonLanguage {
		t.Errorf("reason = %q, want %q", reason, ReasonLanguage)
	}

	// Even a document that would also fail later gates reports the
	// language gate: rule 1 runs before rules 2-4.
	doc = annotated("fr", 0.92, 0.99, 0.99, false)
	if _, reason = Decide(doc, testConfig()); reason != ReasonLanguage {
		t.Errorf("reason = %q, want %q", reason, ReasonLanguage)
	}
}

func TestDecide_LanguageConfidenceFloor(t *testing.T) {
	keep, reason := Decide(annotated("en", 0.4, 0.0, 0.0, true), testConfig())
	if keep || reason != ReasonLanguage {
		t.Errorf("got (%v, %q)", keep, reason)
	}
}

func TestDecide_HarmfulGate(t *testing.T) {
	cfg := testConfig()

	keep, reason := Decide(annotated("en", 0.9, 0.96, 0.0, true), cfg)
	if keep || reason != ReasonHarmful {
		t.Errorf("nsfw: got (%v, %q)", keep, reason)
	}

	keep, reason = Decide(annotated("en", 0.9, 0.0, 0.995, true), cfg)
	if keep || reason != ReasonHarmful {
		t.Errorf("toxic: got (%v, %q)", keep, reason)
	}

	// At-threshold rejects: the comparison is >=.
	keep, _ = Decide(annotated("en", 0.9, 0.95, 0.0, true), cfg)
	if keep {
		t.Error("score equal to threshold kept")
	}

	// Just under both thresholds passes.
	keep, _ = Decide(annotated("en", 0.9, 0.94, 0.98, true), cfg)
	if !keep {
		t.Error("sub-threshold scores rejected")
	}
}

func TestDecide_QualityGate(t *testing.T) {
	cfg := testConfig()
	keep, reason := Decide(annotated("en", 0.9, 0.0, 0.0, false), cfg)
	if keep || reason != ReasonQuality {
		t.Errorf("got (%v, %q)", keep, reason)
	}

	cfg.Quality.Enabled = false
	keep, _ = Decide(annotated("en", 0.9, 0.0, 0.0, false), cfg)
	if !keep {
		t.Error("quality gate applied while disabled")
	}
}

func TestDecide_MissingAnnotations(t *testing.T) {
	cfg := testConfig()

	// No language annotation reads as unknown and fails gate 1.
	doc := &record.Document{Text: "text"}
	doc.SetPassesQuality(true)
	keep, reason := Decide(doc, cfg)
	if keep || reason != ReasonLanguage {
		t.Errorf("got (%v, %q)", keep, reason)
	}

	// Missing harmful scores read as zero and pass gate 2.
	doc = &record.Document{Text: "text"}
	doc.SetLanguage("en", 0.9)
	doc.SetPassesQuality(true)
	keep, _ = Decide(doc, cfg)
	if !keep {
		t.Error("missing harmful annotation rejected the record")
	}
}
