// Package extract converts raw HTML into plain text for the pipeline.
// Extraction is a collaborator of the filter, not a stage: the core
// pipeline consumes already-extracted text, and the extract command exists
// so a crawl dump can be brought into that shape.
package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// FromHTML extracts the readable text of an HTML document. Readability
// handles article-shaped pages; for pages it cannot parse into an article
// (index pages, fragments) a plain text walk of the DOM is used instead.
func FromHTML(raw []byte, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		u = &url.URL{}
	}

	article, err := readability.FromReader(bytes.NewReader(raw), u)
	if err == nil {
		text := strings.TrimSpace(article.TextContent)
		if text != "" {
			return text, nil
		}
	}

	text, walkErr := textWalk(raw)
	if walkErr != nil {
		return "", fmt.Errorf("extract %s: %w", pageURL, walkErr)
	}
	return text, nil
}

// textWalk concatenates the text nodes of the document, skipping script
// and style subtrees, one line per block-ish chunk.
func textWalk(raw []byte) (string, error) {
	root, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				sb.WriteString(t)
				sb.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(root)
	return strings.TrimSpace(sb.String()), nil
}
