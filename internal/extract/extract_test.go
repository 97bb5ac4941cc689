package extract

import (
	"strings"
	"testing"
)

func TestFromHTML_Article(t *testing.T) {
	page := `<!DOCTYPE html><html><head><title>On Corpus Hygiene</title></head><body>
<article>
<h1>On Corpus Hygiene</h1>
<p>` + strings.Repeat("Filtering a web crawl takes patience and a steady set of heuristics. ", 10) + `</p>
<p>` + strings.Repeat("Each document earns its place in the corpus or it does not. ", 10) + `</p>
</article>
<script>trackPageview();</script>
</body></html>`

	text, err := FromHTML([]byte(page), "https://example.com/post")
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	if !strings.Contains(text, "steady set of heuristics") {
		t.Errorf("article text missing: %q", text)
	}
	if strings.Contains(text, "trackPageview") {
		t.Error("script content leaked into extracted text")
	}
}

func TestFromHTML_FallbackWalk(t *testing.T) {
	// Too little structure for readability; the DOM walk must still
	// produce the visible text.
	page := `<div>hello there</div><style>body{}</style><div>general kenobi</div>`
	text, err := FromHTML([]byte(page), "https://example.com")
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	if !strings.Contains(text, "hello there") || !strings.Contains(text, "general kenobi") {
		t.Errorf("text = %q", text)
	}
	if strings.Contains(text, "body{}") {
		t.Error("style content leaked")
	}
}

func TestFromHTML_BadURLStillExtracts(t *testing.T) {
	text, err := FromHTML([]byte("<p>content survives</p>"), "://not a url")
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	if !strings.Contains(text, "content survives") {
		t.Errorf("text = %q", text)
	}
}
