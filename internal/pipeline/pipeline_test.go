package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mohammad-safakhou/corpusfilter/internal/classify"
	"github.com/mohammad-safakhou/corpusfilter/internal/harmful"
	"github.com/mohammad-safakhou/corpusfilter/internal/langid"
	"github.com/mohammad-safakhou/corpusfilter/internal/quality"
	"github.com/mohammad-safakhou/corpusfilter/internal/record"
)

type stubClassifier struct {
	pred classify.Prediction
	err  error
}

func (s stubClassifier) Classify(context.Context, string) (classify.Prediction, error) {
	return s.pred, s.err
}

func englishStub(conf float64) classify.Classifier {
	return stubClassifier{pred: classify.Prediction{Label: "en", Confidence: conf}}
}

func benignJudges() (*harmful.Judge, *harmful.Judge) {
	nsfw := harmful.NewNSFWJudge(stubClassifier{pred: classify.Prediction{Label: harmful.LabelNonNSFW, Confidence: 0.99}})
	toxic := harmful.NewToxicityJudge(stubClassifier{pred: classify.Prediction{Label: harmful.LabelNonToxic, Confidence: 0.99}})
	return nsfw, toxic
}

// passingText satisfies the default quality bounds.
func passingText() string {
	return strings.TrimSpace(strings.Repeat("the quick brown foxes jumped over a lazy dog today ", 12))
}

func TestProcess_KeepsAndMasks(t *testing.T) {
	nsfw, toxic := benignJudges()
	p := New(testConfig(), AllStages(), englishStub(0.93), nsfw, toxic, nil, nil)

	doc := &record.Document{
		URL:  "https://a.example",
		Text: passingText() + " Contact me at jane@example.com or call (415) 555-0199.",
	}
	keep, reason := p.Process(context.Background(), doc)
	if !keep || reason != ReasonNone {
		t.Fatalf("got (%v, %q)", keep, reason)
	}
	if strings.Contains(doc.Text, "jane@example.com") {
		t.Error("email not masked in kept record")
	}
	if !strings.Contains(doc.Text, "|||EMAIL_ADDRESS|||") || !strings.Contains(doc.Text, "|||PHONE_NUMBER|||") {
		t.Errorf("sentinels missing: %q", doc.Text)
	}
	if doc.PIICounts["email"] != 1 || doc.PIICounts["phone"] != 1 || doc.PIICounts["ip"] != 0 {
		t.Errorf("pii counts = %v", doc.PIICounts)
	}
	if doc.Language == nil || *doc.Language != "en" {
		t.Error("language annotation missing")
	}
	if doc.PassesQuality == nil || !*doc.PassesQuality {
		t.Error("quality annotation missing or false")
	}
}

func TestProcess_MaskingDisabledLeavesText(t *testing.T) {
	cfg := testConfig()
	cfg.Filter.MaskPII = false
	nsfw, toxic := benignJudges()
	p := New(cfg, AllStages(), englishStub(0.93), nsfw, toxic, nil, nil)

	text := passingText() + " reach me at jane@example.com please."
	doc := &record.Document{URL: "https://a.example", Text: text}
	keep, _ := p.Process(context.Background(), doc)
	if !keep {
		t.Fatal("record rejected")
	}
	if doc.Text != text {
		t.Error("text rewritten with masking disabled")
	}
}

func TestProcess_RejectedRecordNotMasked(t *testing.T) {
	nsfw, toxic := benignJudges()
	p := New(testConfig(), AllStages(), stubClassifier{pred: classify.Prediction{Label: "fr", Confidence: 0.92}}, nsfw, toxic, nil, nil)

	text := passingText() + " jane@example.com"
	doc := &record.Document{URL: "https://a.example", Text: text}
	keep, reason := p.Process(context.Background(), doc)
	if keep || reason != ReasonLanguage {
		t.Fatalf("got (%v, %q)", keep, reason)
	}
	if doc.Text != text {
		t.Error("rejected record's text was rewritten")
	}
}

func TestProcess_ClassifierFailureDegrades(t *testing.T) {
	nsfw, toxic := benignJudges()
	p := New(testConfig(), AllStages(), stubClassifier{err: errors.New("down")}, nsfw, toxic, nil, nil)

	doc := &record.Document{URL: "https://a.example", Text: passingText()}
	keep, reason := p.Process(context.Background(), doc)
	if keep || reason != ReasonLanguage {
		t.Fatalf("got (%v, %q)", keep, reason)
	}
	if doc.Language == nil || *doc.Language != langid.Unknown {
		t.Error("degraded language annotation missing")
	}
	if doc.LanguageScore == nil || *doc.LanguageScore != 0 {
		t.Error("degraded language score should be 0")
	}
}

func TestProcess_HarmfulRejection(t *testing.T) {
	nsfw := harmful.NewNSFWJudge(stubClassifier{pred: classify.Prediction{Label: harmful.LabelNSFW, Confidence: 0.97}})
	_, toxic := benignJudges()
	p := New(testConfig(), AllStages(), englishStub(0.93), nsfw, toxic, nil, nil)

	doc := &record.Document{URL: "https://a.example", Text: passingText()}
	keep, reason := p.Process(context.Background(), doc)
	if keep || reason != ReasonHarmful {
		t.Errorf("got (%v, %q)", keep, reason)
	}
	if doc.NSFWLabel == nil || !*doc.NSFWLabel {
		t.Error("nsfw label not attached")
	}
	if doc.ToxicLabel == nil || *doc.ToxicLabel {
		t.Error("toxic label should be attached and false")
	}
}

func qualityModel(label string) *quality.Classifier {
	return quality.NewClassifier(stubClassifier{pred: classify.Prediction{Label: label, Confidence: 0.9}})
}

func TestProcess_QualityModelKeepsHeuristicFailure(t *testing.T) {
	nsfw, toxic := benignJudges()
	p := New(testConfig(), AllStages(), englishStub(0.93), nsfw, toxic, nil, nil).
		WithQualityClassifier(qualityModel("__label__wiki"))

	// Far too short for the heuristic bounds; the model verdict decides.
	doc := &record.Document{URL: "https://a.example", Text: "short reference text"}
	keep, reason := p.Process(context.Background(), doc)
	if !keep || reason != ReasonNone {
		t.Fatalf("got (%v, %q)", keep, reason)
	}
	if doc.PassesQuality == nil || !*doc.PassesQuality {
		t.Error("model verdict not attached")
	}
}

func TestProcess_QualityModelRejectsHeuristicPass(t *testing.T) {
	nsfw, toxic := benignJudges()
	p := New(testConfig(), AllStages(), englishStub(0.93), nsfw, toxic, nil, nil).
		WithQualityClassifier(qualityModel("cc"))

	doc := &record.Document{URL: "https://a.example", Text: passingText()}
	keep, reason := p.Process(context.Background(), doc)
	if keep || reason != ReasonQuality {
		t.Fatalf("got (%v, %q)", keep, reason)
	}
	if doc.PassesQuality == nil || *doc.PassesQuality {
		t.Error("model verdict not attached")
	}
}

func TestProcess_QualityModelFailureFallsBackToBounds(t *testing.T) {
	nsfw, toxic := benignJudges()
	broken := quality.NewClassifier(stubClassifier{err: errors.New("down")})
	p := New(testConfig(), AllStages(), englishStub(0.93), nsfw, toxic, nil, nil).
		WithQualityClassifier(broken)

	doc := &record.Document{URL: "https://a.example", Text: passingText()}
	keep, reason := p.Process(context.Background(), doc)
	if !keep || reason != ReasonNone {
		t.Fatalf("got (%v, %q)", keep, reason)
	}
	if doc.PassesQuality == nil || !*doc.PassesQuality {
		t.Error("heuristic fallback verdict not attached")
	}
}

func TestAnnotate_SingleStage(t *testing.T) {
	p := New(testConfig(), Stages{Quality: true}, nil, nil, nil, nil, nil)
	doc := &record.Document{URL: "https://a.example", Text: passingText()}
	p.Annotate(context.Background(), doc)

	if doc.PassesQuality == nil {
		t.Fatal("quality slot not set")
	}
	if doc.Language != nil || doc.NSFWScore != nil || doc.PIICounts != nil {
		t.Error("disabled stages wrote their slots")
	}
}

func TestAnnotate_RunsMaskStage(t *testing.T) {
	p := New(testConfig(), Stages{MaskPII: true}, nil, nil, nil, nil, nil)
	doc := &record.Document{URL: "https://a.example", Text: "ping 192.168.1.1 now"}
	p.Annotate(context.Background(), doc)
	if doc.Text != "ping |||IP_ADDRESS||| now" {
		t.Errorf("text = %q", doc.Text)
	}
	if doc.PIICounts["ip"] != 1 {
		t.Errorf("counts = %v", doc.PIICounts)
	}
}
