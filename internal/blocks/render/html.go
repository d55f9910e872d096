package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tdewolff/minify/v2"
	mhtml "github.com/tdewolff/minify/v2/html"
	"golang.org/x/net/html"
)

var minifier *minify.M = minify.New()

func init() {
	minifier.AddFunc("text/html", mhtml.Minify)
	UgcPolicy.AllowElements("s")
}

// ToHTMLNode переводит представление в узлы x/net/html.
func ToHTMLNode(v *ViewNode) *html.Node {
	if v.IsText() {
		return &html.Node{Type: html.TextNode, Data: v.Text}
	}
	n := &html.Node{Type: html.ElementNode, Data: v.Tag}
	keys := make([]string, 0, len(v.Attrs))
	for k := range v.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.Attr = append(n.Attr, html.Attribute{Key: k, Val: v.Attrs[k]})
	}
	for _, c := range v.Children {
		n.AppendChild(ToHTMLNode(c))
	}
	return n
}

// RawHTML HTML без очистки и минификации, атрибуты в алфавитном порядке.
func RawHTML(nodes []*ViewNode) (string, error) {
	var b strings.Builder
	for _, v := range nodes {
		if err := html.Render(&b, ToHTMLNode(v)); err != nil {
			return "", fmt.Errorf("render html: %w", err)
		}
	}
	return b.String(), nil
}

// HTML очищенный политикой UgcPolicy и минифицированный HTML.
func HTML(nodes []*ViewNode) (string, error) {
	raw, err := RawHTML(nodes)
	if err != nil {
		return "", err
	}
	clean := UgcPolicy.Sanitize(raw)
	res, err := minifier.String("text/html", clean)
	if err != nil {
		return "", fmt.Errorf("minify html: %w", err)
	}
	return res, nil
}

// PlainText текст документа без разметки.
func PlainText(nodes []*ViewNode) (string, error) {
	raw, err := RawHTML(nodes)
	if err != nil {
		return "", err
	}
	raw = strings.NewReplacer("<p>", "\n<p>", "<li>", "\n<li>", "<pre", "\n<pre", "<h", "\n<h", "<blockquote>", "\n<blockquote>").Replace(raw)
	return strings.TrimSpace(html.UnescapeString(StripTagsPolicy.Sanitize(raw))), nil
}
