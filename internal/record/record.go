// Package record defines the document record that flows through the
// pipeline. All annotation slots are declared up front as optional typed
// fields; each stage writes only its own slots through a stage-scoped
// interface, and only the decision policy reads across stages.
package record

// Document is one unit of work: a URL plus extracted text, accumulating
// per-stage annotations. Nil pointer fields mean "stage did not run".
// JSON field names match the upstream JSONL corpus format.
type Document struct {
	URL  string `json:"url"`
	Text string `json:"text"`

	Language      *string  `json:"language,omitempty"`
	LanguageScore *float64 `json:"score,omitempty"`

	NSFWLabel  *bool    `json:"nsfw_label,omitempty"`
	NSFWScore  *float64 `json:"nsfw_score,omitempty"`
	ToxicLabel *bool    `json:"toxic_label,omitempty"`
	ToxicScore *float64 `json:"toxic_score,omitempty"`

	PassesQuality *bool `json:"passes_quality,omitempty"`

	PIICounts map[string]int `json:"pii_counts,omitempty"`
}

// Stage-scoped write access. A stage receives the interface for its own
// slots, nothing else.

// LanguageAnnotator is the language-identification stage's write surface.
type LanguageAnnotator interface {
	SetLanguage(code string, score float64)
}

// HarmfulAnnotator is the harmful-content stage's write surface.
type HarmfulAnnotator interface {
	SetNSFW(flagged bool, score float64)
	SetToxic(flagged bool, score float64)
}

// QualityAnnotator is the quality stage's write surface.
type QualityAnnotator interface {
	SetPassesQuality(ok bool)
}

// PIIAnnotator is the masking stage's write surface. SetMasked rewrites the
// document text; it is the only stage allowed to touch Text.
type PIIAnnotator interface {
	SetMasked(text string, counts map[string]int)
}

func (d *Document) SetLanguage(code string, score float64) {
	d.Language = &code
	d.LanguageScore = &score
}

func (d *Document) SetNSFW(flagged bool, score float64) {
	d.NSFWLabel = &flagged
	d.NSFWScore = &score
}

func (d *Document) SetToxic(flagged bool, score float64) {
	d.ToxicLabel = &flagged
	d.ToxicScore = &score
}

func (d *Document) SetPassesQuality(ok bool) {
	d.PassesQuality = &ok
}

func (d *Document) SetMasked(text string, counts map[string]int) {
	d.Text = text
	d.PIICounts = counts
}

var (
	_ LanguageAnnotator = (*Document)(nil)
	_ HarmfulAnnotator  = (*Document)(nil)
	_ QualityAnnotator  = (*Document)(nil)
	_ PIIAnnotator      = (*Document)(nil)
)
