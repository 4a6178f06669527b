package internet

import (
	"bytes"
	"fmt"
	"mime"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

var tagsToRemove = map[string]bool{
	"script": true, "style": true, "noscript": true, "svg": true, "iframe": true,
	"link": true, "meta": true, "head": true, "template": true, "form": true,
	"nav": true, "footer": true,
}

var blankLines = regexp.MustCompile(`\n{3,}`)

func isHTML(contentType, body string) bool {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return mediaType == "text/html" || mediaType == "application/xhtml+xml"
	}
	head := strings.ToLower(strings.TrimSpace(body))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.Contains(head, "<html")
}

func htmlToText(rawHTML string) (string, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	root := findContentNode(doc)
	cleanNode(root)

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return "", fmt.Errorf("render HTML: %w", err)
	}

	markdown, err := htmltomarkdown.ConvertString(buf.String())
	if err != nil {
		return "", fmt.Errorf("convert HTML to markdown: %w", err)
	}
	return strings.TrimSpace(blankLines.ReplaceAllString(markdown, "\n\n")), nil
}

// findContentNode prefers <main>, then <article>, then <body>.
func findContentNode(doc *html.Node) *html.Node {
	for _, tag := range []string{"main", "article", "body"} {
		if n := findElement(doc, tag); n != nil {
			return n
		}
	}
	return doc
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func cleanNode(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.CommentNode:
			n.RemoveChild(c)
		case c.Type == html.ElementNode && tagsToRemove[c.Data]:
			n.RemoveChild(c)
		case c.Type == html.ElementNode:
			c.Attr = filterAttributes(c.Attr)
			cleanNode(c)
		}
		c = next
	}
}

func filterAttributes(attrs []html.Attribute) []html.Attribute {
	var kept []html.Attribute
	for _, attr := range attrs {
		switch attr.Key {
		case "href", "src", "alt", "title":
			kept = append(kept, attr)
		}
	}
	return kept
}
