// Package harmful wraps the NSFW and toxic-speech classifiers. The two
// judgments are independent: a document can be NSFW-flagged without being
// toxic-flagged and vice versa. Combining them is the decision policy's
// job, not this package's.
package harmful

import (
	"context"
	"strings"

	"github.com/mohammad-safakhou/corpusfilter/internal/classify"
)

// Label vocabularies of the jigsaw fasttext models.
const (
	LabelNSFW     = "nsfw"
	LabelNonNSFW  = "non-nsfw"
	LabelToxic    = "toxic"
	LabelNonToxic = "non-toxic"
)

// Judgment is one classifier's verdict. Score is the confidence that the
// text IS harmful: when the model predicts the benign label with confidence
// p, the harmful score is 1-p.
type Judgment struct {
	Flagged bool
	Score   float64
}

// Judge binds a classifier to the label that counts as harmful.
type Judge struct {
	classifier classify.Classifier
	positive   string
}

// NewNSFWJudge wraps the NSFW model.
func NewNSFWJudge(c classify.Classifier) *Judge {
	return &Judge{classifier: c, positive: LabelNSFW}
}

// NewToxicityJudge wraps the toxic-speech model.
func NewToxicityJudge(c classify.Classifier) *Judge {
	return &Judge{classifier: c, positive: LabelToxic}
}

// Classify evaluates the text. A nil judge, classifier failure, or timeout
// degrades to benign with score 0 so one bad call never sinks the record.
func (j *Judge) Classify(ctx context.Context, text string) Judgment {
	if j == nil || j.classifier == nil {
		return Judgment{}
	}
	pred, err := j.classifier.Classify(ctx, text)
	if err != nil {
		return Judgment{}
	}
	label := strings.ToLower(classify.CleanLabel(pred.Label))
	if label == j.positive {
		return Judgment{Flagged: true, Score: pred.Confidence}
	}
	return Judgment{Flagged: false, Score: 1 - pred.Confidence}
}
