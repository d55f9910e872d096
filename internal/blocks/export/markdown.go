// Пакет для экспорта документов редактора в Markdown и PDF.
//
// Основные возможности:
//   - Markdown: заголовки, параграфы, вложенные списки, цитаты, блоки кода, изображения и файлы, ссылки и модификаторы текста.
//   - PDF: те же блоки с учетом модификаторов, ссылок и отступов списков.
//   - Относительные адреса медиатеки дополняются адресом бэкенда.
package export

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	md "github.com/nao1215/markdown"

	"github.com/aisa-it/blocks/internal/blocks"
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

// Отступ вложенного списка, достаточный и для "- ", и для "1. ".
const mdListIndent = "   "

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
)

// Markdown записывает блоки верхнего уровня в w. backendURL дополняет относительные адреса медиатеки.
func Markdown(nodes []*edtypes.Node, w io.Writer, backendURL string) error {
	m := md.NewMarkdown(w)
	first := true
	for _, n := range nodes {
		if n.Type == edtypes.TypeParagraph && n.IsEmpty() {
			continue
		}
		if !first {
			m.PlainText("")
		}
		first = false
		writeMarkdownBlock(m, n, backendURL)
	}
	return m.Build()
}

func writeMarkdownBlock(m *md.Markdown, n *edtypes.Node, backendURL string) {
	switch n.Type {
	case edtypes.TypeParagraph:
		m.PlainText(markdownInline(n.Children, "  \n"))
	case edtypes.TypeHeading:
		text := markdownInline(n.Children, " ")
		switch n.Level() {
		case 1:
			m.H1(text)
		case 2:
			m.H2(text)
		case 3:
			m.H3(text)
		case 4:
			m.H4(text)
		case 5:
			m.H5(text)
		default:
			m.H6(text)
		}
	case edtypes.TypeQuote:
		m.Blockquote(markdownInline(n.Children, "  \n"))
	case edtypes.TypeCode:
		lang := n.Language()
		if lang == edtypes.DefaultCodeLanguage {
			lang = ""
		}
		m.CodeBlocks(md.SyntaxHighlight(lang), n.String())
	case edtypes.TypeList:
		if isFlatList(n) {
			items := make([]string, 0, len(n.Children))
			for _, item := range n.Children {
				items = append(items, markdownInline(item.Children, " "))
			}
			if n.Format() == edtypes.ListOrdered {
				m.OrderedList(items...)
			} else {
				m.BulletList(items...)
			}
			return
		}
		writeMarkdownList(m, n, "")
	case edtypes.TypeImage:
		img := n.Image()
		if img == nil {
			return
		}
		m.PlainText(md.Image(mdEscaper.Replace(mediaTitle(img)), blocks.PrefixFileURL(backendURL, img.URL)))
	case edtypes.TypeFile:
		f := n.File()
		if f == nil {
			return
		}
		m.PlainText(md.Link(mdEscaper.Replace(mediaTitle(f)), blocks.PrefixFileURL(backendURL, f.URL)))
	}
}

func isFlatList(list *edtypes.Node) bool {
	for _, c := range list.Children {
		if c.Type == edtypes.TypeList {
			return false
		}
	}
	return true
}

func writeMarkdownList(m *md.Markdown, list *edtypes.Node, indent string) {
	num := 0
	for _, c := range list.Children {
		if c.Type == edtypes.TypeList {
			writeMarkdownList(m, c, indent+mdListIndent)
			continue
		}
		num++
		marker := "- "
		if list.Format() == edtypes.ListOrdered {
			marker = fmt.Sprintf("%d. ", num)
		}
		m.PlainText(indent + marker + markdownInline(c.Children, " "))
	}
}

// markdownInline текст блока с модификаторами и ссылками. Переносы строк внутри блока заменяются на lineBreak.
func markdownInline(nodes []*edtypes.Node, lineBreak string) string {
	var sb strings.Builder
	for _, n := range nodes {
		switch {
		case n.IsText():
			sb.WriteString(markdownText(n, lineBreak))
		case n.Type == edtypes.TypeLink:
			sb.WriteString(md.Link(markdownInline(n.Children, " "), n.URL()))
		}
	}
	return sb.String()
}

func markdownText(n *edtypes.Node, lineBreak string) string {
	text := n.Text
	if n.HasMark(edtypes.MarkCode) {
		text = md.Code(text)
	} else {
		text = mdEscaper.Replace(text)
	}

	lead, core, trail := splitSpaces(text)
	if core == "" {
		return strings.ReplaceAll(text, "\n", lineBreak)
	}
	if n.HasMark(edtypes.MarkBold) {
		core = md.Bold(core)
	}
	if n.HasMark(edtypes.MarkItalic) {
		core = md.Italic(core)
	}
	if n.HasMark(edtypes.MarkStrikethrough) {
		core = md.Strikethrough(core)
	}
	if n.HasMark(edtypes.MarkUnderline) {
		core = "<u>" + core + "</u>"
	}
	return strings.ReplaceAll(lead+core+trail, "\n", lineBreak)
}

// splitSpaces выносит крайние пробелы за пределы маркеров выделения.
func splitSpaces(s string) (lead, core, trail string) {
	core = strings.TrimLeftFunc(s, unicode.IsSpace)
	lead = s[:len(s)-len(core)]
	trimmed := strings.TrimRightFunc(core, unicode.IsSpace)
	trail = core[len(trimmed):]
	return lead, trimmed, trail
}

func mediaTitle(m *edtypes.Media) string {
	if m.AlternativeText != "" {
		return m.AlternativeText
	}
	return m.Name
}
