// Package langid identifies the main language of a document. The default
// detector runs in-process on lingua; a fasttext model server can be used
// instead through the classify.HTTPClient adapter. Both normalize labels to
// ISO 639-1 codes.
package langid

import (
	"context"
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/mohammad-safakhou/corpusfilter/internal/classify"
)

// Unknown is returned when no confident prediction exists.
const Unknown = "unknown"

// Normalize maps a classifier label to a canonical ISO 639-1 code.
// fasttext lid labels arrive as "__label__en"; lingua ISO codes arrive
// uppercase. English must come out "en" and Chinese "zh" regardless of the
// backing model's scheme.
func Normalize(label string) string {
	code := strings.ToLower(classify.CleanLabel(strings.TrimSpace(label)))
	switch code {
	case "":
		return Unknown
	case "eng", "english":
		return "en"
	case "zho", "chi", "chinese", "zh-cn", "zh-tw":
		return "zh"
	}
	return code
}

// Detector is the in-process language classifier.
type Detector struct {
	detector lingua.LanguageDetector
}

// NewDetector builds a detector over lingua's full language set. The model
// is immutable after Build and shared read-only across workers.
func NewDetector() *Detector {
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().FromAllLanguages().Build(),
	}
}

// Classify returns the top language and its confidence. Inputs the model
// cannot place (empty, whitespace, pure symbols) yield Unknown with
// confidence 0 instead of an error.
func (d *Detector) Classify(_ context.Context, text string) (classify.Prediction, error) {
	text = classify.Flatten(text)
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return classify.Prediction{Label: Unknown, Confidence: 0}, nil
	}
	confidence := d.detector.ComputeLanguageConfidence(text, lang)
	return classify.Prediction{
		Label:      lang.IsoCode639_1().String(),
		Confidence: confidence,
	}, nil
}

var _ classify.Classifier = (*Detector)(nil)

// Identify runs c and normalizes the outcome. Classifier failure degrades
// to (Unknown, 0); it never surfaces an error to the record.
func Identify(ctx context.Context, c classify.Classifier, text string) (string, float64) {
	pred, err := c.Classify(ctx, text)
	if err != nil {
		return Unknown, 0
	}
	code := Normalize(pred.Label)
	if code == Unknown {
		return Unknown, 0
	}
	return code, pred.Confidence
}
