package quality

import (
	"context"
	"strings"

	"github.com/mohammad-safakhou/corpusfilter/internal/classify"
)

// Label vocabulary of the trained wiki-vs-cc quality model: reference text
// is labeled "wiki", crawl-grade text "cc".
const (
	LabelHighQuality = "wiki"
	LabelLowQuality  = "cc"
)

// Classifier is the model-based alternative to the heuristic bounds: a
// trained binary classifier served behind the usual adapter contract.
type Classifier struct {
	classifier classify.Classifier
}

// NewClassifier wraps a quality model.
func NewClassifier(c classify.Classifier) *Classifier {
	return &Classifier{classifier: c}
}

// Passes asks the model for a verdict. ok is false when the model is
// unreachable or answers outside its vocabulary, so the caller can fall
// back to the heuristic bounds instead of inventing a verdict.
func (c *Classifier) Passes(ctx context.Context, text string) (verdict, ok bool) {
	if c == nil || c.classifier == nil {
		return false, false
	}
	pred, err := c.classifier.Classify(ctx, text)
	if err != nil {
		return false, false
	}
	switch strings.ToLower(classify.CleanLabel(pred.Label)) {
	case LabelHighQuality:
		return true, true
	case LabelLowQuality:
		return false, true
	}
	return false, false
}
