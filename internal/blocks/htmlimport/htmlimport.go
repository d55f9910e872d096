// Пакет htmlimport превращает HTML (вставка из буфера обмена, импорт файлов) в блоки документа.
//
// Основные возможности:
//   - очистка входного HTML политикой render.UgcPolicy;
//   - абзацы, заголовки h1-h6, цитаты, блоки кода с языком, изображения;
//   - вложенные списки ul/ol с уровнем вложенности;
//   - ссылки и модификаторы текста (strong/b, em/i, u, s/del/strike, code), перенос строки br.
package htmlimport

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
	"github.com/aisa-it/blocks/internal/blocks/render"
)

var spaceRegexp = regexp.MustCompile(`\s+`)

var markTags = map[string]edtypes.Mark{
	"strong": edtypes.MarkBold,
	"b":      edtypes.MarkBold,
	"em":     edtypes.MarkItalic,
	"i":      edtypes.MarkItalic,
	"u":      edtypes.MarkUnderline,
	"s":      edtypes.MarkStrikethrough,
	"del":    edtypes.MarkStrikethrough,
	"strike": edtypes.MarkStrikethrough,
	"code":   edtypes.MarkCode,
}

// ParseHTML читает HTML и возвращает блоки верхнего уровня. Пустой результат означает,
// что в HTML нет поддерживаемого содержимого.
func ParseHTML(r io.Reader) ([]*edtypes.Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}
	rootNode, err := html.Parse(bytes.NewReader(render.UgcPolicy.SanitizeBytes(data)))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	body := getBody(rootNode)
	if body == nil {
		return nil, nil
	}
	return parseBlocks(body), nil
}

// ParseDocument HTML в документ. Документ без блоков получает пустой абзац.
func ParseDocument(r io.Reader) (*edtypes.Document, error) {
	nodes, err := ParseHTML(r)
	if err != nil {
		return nil, err
	}
	return edtypes.NewDocument(nodes...), nil
}

func parseBlocks(parent *html.Node) []*edtypes.Node {
	var res []*edtypes.Node
	var inline []*edtypes.Node
	flush := func() {
		if inline = trimInline(inline); len(inline) > 0 {
			res = append(res, edtypes.NewParagraph(inline...))
		}
		inline = nil
	}

	for el := parent.FirstChild; el != nil; el = el.NextSibling {
		switch el.Type {
		case html.TextNode:
			inline = append(inline, inlineNodes(el, nil)...)
			continue
		case html.ElementNode:
		default:
			continue
		}

		switch el.Data {
		case "p":
			flush()
			res = append(res, parseParagraph(el)...)
		case "h1", "h2", "h3", "h4", "h5", "h6":
			flush()
			level, _ := strconv.Atoi(el.Data[1:])
			res = append(res, edtypes.NewHeading(level, trimInline(parseInline(el))...))
		case "blockquote":
			flush()
			res = append(res, parseQuote(el))
		case "pre":
			flush()
			res = append(res, parseCode(el))
		case "ul", "ol":
			flush()
			if list := parseList(el, 0); list != nil {
				res = append(res, list)
			}
		case "img":
			flush()
			if img := getImage(el); img != nil {
				res = append(res, img)
			}
		case "div", "section", "article", "main", "header", "footer", "figure":
			flush()
			res = append(res, parseBlocks(el)...)
		default:
			inline = append(inline, inlineNodes(el, nil)...)
		}
	}
	flush()
	return res
}

// parseParagraph абзац и изображения, которые стояли внутри него.
func parseParagraph(root *html.Node) []*edtypes.Node {
	var res []*edtypes.Node
	if content := trimInline(parseInline(root)); len(content) > 0 {
		res = append(res, edtypes.NewParagraph(content...))
	}
	iterNodes(root, func(el *html.Node) bool {
		if img := getImage(el); img != nil {
			res = append(res, img)
			return true
		}
		return false
	})
	if len(res) == 0 {
		res = append(res, edtypes.EmptyParagraph())
	}
	return res
}

func parseQuote(root *html.Node) *edtypes.Node {
	var content []*edtypes.Node
	var lines int
	for el := root.FirstChild; el != nil; el = el.NextSibling {
		if el.Type == html.ElementNode && el.Data == "p" {
			if lines > 0 {
				content = append(content, edtypes.NewText("\n"))
			}
			content = append(content, trimInline(parseInline(el))...)
			lines++
			continue
		}
		content = append(content, inlineNodes(el, nil)...)
	}
	return edtypes.NewQuote(trimInline(content)...)
}

func parseCode(root *html.Node) *edtypes.Node {
	var text string
	language := getAttrValue("data-language", root.Attr)
	iterNodes(root, func(child *html.Node) bool {
		if child.Type == html.ElementNode && child.Data == "code" && language == "" {
			language = getAttrValue("data-language", child.Attr)
			for _, class := range strings.Fields(getAttrValue("class", child.Attr)) {
				if l, ok := strings.CutPrefix(class, "language-"); ok {
					language = l
				}
			}
		}
		if child.Type != html.TextNode {
			return false
		}
		text += child.Data
		return false
	})
	return edtypes.NewCode(language, edtypes.NewText(strings.TrimSuffix(text, "\n")))
}

// parseList список; вложенные списки становятся соседями элементов с уровнем indent+1.
func parseList(root *html.Node, indent int) *edtypes.Node {
	if root.Type != html.ElementNode || (root.Data != "ul" && root.Data != "ol") {
		return nil
	}
	format := edtypes.ListUnordered
	if root.Data == "ol" {
		format = edtypes.ListOrdered
	}
	list := edtypes.NewList(format, indent)

	for li := root.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode {
			continue
		}
		if nested := parseList(li, indent+1); nested != nil {
			list.Children = append(list.Children, nested)
			continue
		}
		if li.Data != "li" {
			continue
		}

		var content, nested []*edtypes.Node
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if sub := parseList(c, indent+1); sub != nil {
				nested = append(nested, sub)
				continue
			}
			if c.Type == html.ElementNode && c.Data == "p" {
				if len(content) > 0 {
					content = append(content, edtypes.NewText(" "))
				}
				content = append(content, parseInline(c)...)
				continue
			}
			content = append(content, inlineNodes(c, nil)...)
		}
		list.Children = append(list.Children, edtypes.NewListItem(trimInline(content)...))
		list.Children = append(list.Children, nested...)
	}

	if len(list.Children) == 0 {
		return nil
	}
	return list
}

func parseInline(root *html.Node) []*edtypes.Node {
	var res []*edtypes.Node
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		res = append(res, inlineNodes(c, nil)...)
	}
	return res
}

// inlineNodes текст и ссылки поддерева с накопленными модификаторами marks.
func inlineNodes(n *html.Node, marks []edtypes.Mark) []*edtypes.Node {
	switch n.Type {
	case html.TextNode:
		text := spaceRegexp.ReplaceAllString(n.Data, " ")
		if text == "" {
			return nil
		}
		return []*edtypes.Node{edtypes.NewText(text, marks...)}
	case html.ElementNode:
	default:
		return nil
	}

	switch n.Data {
	case "br":
		return []*edtypes.Node{edtypes.NewText("\n", marks...)}
	case "img", "ul", "ol", "pre", "script", "style":
		return nil
	case "a":
		var children []*edtypes.Node
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			for _, child := range inlineNodes(c, marks) {
				// вложенные ссылки не поддерживаются
				if child.IsInline() {
					children = append(children, child.Children...)
					continue
				}
				children = append(children, child)
			}
		}
		link := edtypes.NewLink(getAttrValue("href", n.Attr), children...)
		if target := getAttrValue("target", n.Attr); target != "" {
			link.SetAttr(edtypes.AttrTarget, target)
		}
		return []*edtypes.Node{link}
	}

	if m, ok := markTags[n.Data]; ok && !slices.Contains(marks, m) {
		marks = append(slices.Clone(marks), m)
	}
	var res []*edtypes.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		res = append(res, inlineNodes(c, marks)...)
	}
	return res
}

// trimInline убирает пробелы по краям строчного содержимого блока.
func trimInline(nodes []*edtypes.Node) []*edtypes.Node {
	for len(nodes) > 0 && nodes[0].IsText() && strings.TrimSpace(nodes[0].Text) == "" {
		nodes = nodes[1:]
	}
	for len(nodes) > 0 && nodes[len(nodes)-1].IsText() && strings.TrimSpace(nodes[len(nodes)-1].Text) == "" {
		nodes = nodes[:len(nodes)-1]
	}
	if len(nodes) == 0 {
		return nil
	}
	if first := nodes[0]; first.IsText() {
		first.Text = strings.TrimLeft(first.Text, " ")
	}
	if last := nodes[len(nodes)-1]; last.IsText() {
		last.Text = strings.TrimRight(last.Text, " ")
	}
	return nodes
}

func getImage(el *html.Node) *edtypes.Node {
	if el.Type != html.ElementNode || el.Data != "img" {
		return nil
	}
	src := getAttrValue("src", el.Attr)
	if src == "" {
		return nil
	}
	m := &edtypes.Media{
		URL:             src,
		Name:            path.Base(strings.SplitN(src, "?", 2)[0]),
		AlternativeText: getAttrValue("alt", el.Attr),
	}
	m.Width, _ = strconv.Atoi(strings.TrimSuffix(getAttrValue("width", el.Attr), "px"))
	m.Height, _ = strconv.Atoi(strings.TrimSuffix(getAttrValue("height", el.Attr), "px"))
	m.Ext = path.Ext(m.Name)
	return edtypes.NewImage(m)
}

func findElementByTagName(rootNode *html.Node, tagName string) *html.Node {
	var el *html.Node
	iterNodes(rootNode, func(child *html.Node) bool {
		if child.Type == html.ElementNode && child.Data == tagName {
			el = child
			return true
		}
		return false
	})
	return el
}

func getBody(rootNode *html.Node) *html.Node {
	return findElementByTagName(rootNode, "body")
}

func iterNodes(node *html.Node, f func(child *html.Node) bool) {
	if f(node) {
		return
	}
	for p := node.FirstChild; p != nil; p = p.NextSibling {
		iterNodes(p, f)
	}
}

func getAttrValue(key string, attrs []html.Attribute) string {
	for _, attr := range attrs {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
