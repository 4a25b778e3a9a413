package fetch

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/tokhist/internal/lexer"
	"github.com/nao1215/tokhist/internal/model"
)

// Scripts holds the JavaScript found in an HTML page.
type Scripts struct {
	// Inline are the bodies of <script> elements without src, in document
	// order. Empty bodies are skipped.
	Inline []model.Source

	// External are absolute http(s) URLs from <script src>, deduplicated,
	// in document order.
	External []string
}

// ExtractScripts parses an HTML document and returns its JavaScript.
// Scripts whose type attribute is not a JavaScript type (e.g. JSON or
// templates) are ignored. Relative src values are resolved against
// baseURL, or against <base href> when the page sets one.
func ExtractScripts(baseURL, body string) (*Scripts, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	scripts := &Scripts{
		Inline:   make([]model.Source, 0),
		External: make([]string, 0),
	}
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "base":
				if href := getAttr(n, "href"); href != "" {
					if u, err := url.Parse(strings.TrimSpace(href)); err == nil {
						base = base.ResolveReference(u)
					}
				}
			case "script":
				if !lexer.IsJavaScriptMediaType(getAttr(n, "type")) {
					break
				}
				if src := getAttr(n, "src"); src != "" {
					if resolved := resolveScriptURL(base, src); resolved != "" && !seen[resolved] {
						seen[resolved] = true
						scripts.External = append(scripts.External, resolved)
					}
					break
				}
				if text := nodeText(n); strings.TrimSpace(text) != "" {
					scripts.Inline = append(scripts.Inline, model.Source{
						Name:    fmt.Sprintf("%s#script%d", baseURL, len(scripts.Inline)+1),
						Content: text,
					})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return scripts, nil
}

// resolveScriptURL resolves src against base. Non-http(s) results such as
// data: URLs are dropped.
func resolveScriptURL(base *url.URL, src string) string {
	u, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}

// nodeText concatenates the text children of n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

// getAttr returns the value of attribute key, or "".
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
