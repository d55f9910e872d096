package edtypes

import "maps"

// NodeType тег узла документа.
type NodeType string

const (
	TypeRoot      NodeType = "root"
	TypeText      NodeType = "text"
	TypeParagraph NodeType = "paragraph"
	TypeHeading   NodeType = "heading"
	TypeQuote     NodeType = "quote"
	TypeCode      NodeType = "code"
	TypeList      NodeType = "list"
	TypeListItem  NodeType = "list-item"
	TypeImage     NodeType = "image"
	TypeFile      NodeType = "file"
	TypeLink      NodeType = "link"
)

// KnownTypes все теги, которые может содержать документ.
var KnownTypes = []NodeType{
	TypeText, TypeParagraph, TypeHeading, TypeQuote, TypeCode,
	TypeList, TypeListItem, TypeImage, TypeFile, TypeLink,
}

type ListFormat string

const (
	ListOrdered   ListFormat = "ordered"
	ListUnordered ListFormat = "unordered"
)

// Mark модификатор текстового листа.
type Mark string

const (
	MarkBold          Mark = "bold"
	MarkItalic        Mark = "italic"
	MarkUnderline     Mark = "underline"
	MarkStrikethrough Mark = "strikethrough"
	MarkCode          Mark = "code"
)

var AllMarks = []Mark{MarkBold, MarkItalic, MarkUnderline, MarkStrikethrough, MarkCode}

// Имена атрибутов узлов.
const (
	AttrLevel       = "level"
	AttrFormat      = "format"
	AttrIndentLevel = "indentLevel"
	AttrLanguage    = "language"
	AttrURL         = "url"
	AttrRel         = "rel"
	AttrTarget      = "target"
	AttrImage       = "image"
	AttrFile        = "file"
)

const DefaultCodeLanguage = "plaintext"

// Node узел дерева документа. Текстовые листья хранят Text и флаги модификаторов в Attrs,
// элементы хранят Children и атрибуты своего тега.
type Node struct {
	Type     NodeType
	Text     string
	Children []*Node
	Attrs    map[string]any
}

// Props частичный набор атрибутов. Значение nil означает удаление атрибута.
type Props map[string]any

func (n *Node) IsText() bool {
	return n != nil && n.Type == TypeText
}

func (n *Node) IsElement() bool {
	return n != nil && n.Type != TypeText && n.Type != TypeRoot
}

func (n *Node) IsRoot() bool {
	return n != nil && n.Type == TypeRoot
}

// IsInline ссылки встраиваются в текст блока.
func (n *Node) IsInline() bool {
	return n != nil && n.Type == TypeLink
}

// IsVoid изображения и файлы не редактируются внутри и держат ровно один пустой текст.
func (n *Node) IsVoid() bool {
	return n != nil && (n.Type == TypeImage || n.Type == TypeFile)
}

func (n *Node) IsBlock() bool {
	return n.IsElement() && !n.IsInline()
}

// HasInlineChildren блоки, содержимое которых состоит из текста и ссылок.
func (n *Node) HasInlineChildren() bool {
	switch n.Type {
	case TypeParagraph, TypeHeading, TypeQuote, TypeCode, TypeListItem, TypeLink, TypeImage, TypeFile:
		return true
	}
	return false
}

func (n *Node) Attr(key string) (any, bool) {
	if n.Attrs == nil {
		return nil, false
	}
	v, ok := n.Attrs[key]
	return v, ok
}

func (n *Node) SetAttr(key string, value any) {
	if value == nil {
		delete(n.Attrs, key)
		return
	}
	if n.Attrs == nil {
		n.Attrs = make(map[string]any)
	}
	n.Attrs[key] = value
}

func (n *Node) Level() int {
	return getAttrInt(n.Attrs, AttrLevel)
}

func (n *Node) Format() ListFormat {
	return ListFormat(getAttrString(n.Attrs, AttrFormat))
}

func (n *Node) IndentLevel() int {
	return getAttrInt(n.Attrs, AttrIndentLevel)
}

func (n *Node) Language() string {
	if l := getAttrString(n.Attrs, AttrLanguage); l != "" {
		return l
	}
	return DefaultCodeLanguage
}

func (n *Node) URL() string {
	return getAttrString(n.Attrs, AttrURL)
}

func (n *Node) Rel() string {
	return getAttrString(n.Attrs, AttrRel)
}

func (n *Node) Target() string {
	return getAttrString(n.Attrs, AttrTarget)
}

func (n *Node) Image() *Media {
	return getAttrMedia(n.Attrs, AttrImage)
}

func (n *Node) File() *Media {
	return getAttrMedia(n.Attrs, AttrFile)
}

func (n *Node) HasMark(m Mark) bool {
	return getAttrBool(n.Attrs, string(m))
}

// Marks возвращает включенные модификаторы текстового листа.
func (n *Node) Marks() map[Mark]bool {
	res := make(map[Mark]bool)
	for _, m := range AllMarks {
		if n.HasMark(m) {
			res[m] = true
		}
	}
	return res
}

// SameMarks сравнивает модификаторы двух текстовых листьев.
func SameMarks(a, b *Node) bool {
	for _, m := range AllMarks {
		if a.HasMark(m) != b.HasMark(m) {
			return false
		}
	}
	return true
}

// Props возвращает копию всех атрибутов узла.
func (n *Node) Props() Props {
	p := make(Props, len(n.Attrs))
	maps.Copy(p, n.Attrs)
	return p
}

// Clone глубокая копия узла.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Type: n.Type, Text: n.Text}
	if n.Attrs != nil {
		c.Attrs = make(map[string]any, len(n.Attrs))
		for k, v := range n.Attrs {
			if m, ok := v.(*Media); ok {
				v = m.Clone()
			}
			c.Attrs[k] = v
		}
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// String текстовое содержимое узла.
func (n *Node) String() string {
	if n.IsText() {
		return n.Text
	}
	var res string
	for _, c := range n.Children {
		res += c.String()
	}
	return res
}

// IsEmpty элемент без текста: единственный пустой текстовый лист.
func (n *Node) IsEmpty() bool {
	if n.IsText() {
		return n.Text == ""
	}
	return len(n.Children) == 0 ||
		(len(n.Children) == 1 && n.Children[0].IsText() && n.Children[0].Text == "")
}

func NewText(text string, marks ...Mark) *Node {
	n := &Node{Type: TypeText, Text: text}
	for _, m := range marks {
		n.SetAttr(string(m), true)
	}
	return n
}

func EmptyText() *Node {
	return NewText("")
}

func inlineChildren(children []*Node) []*Node {
	if len(children) == 0 {
		return []*Node{EmptyText()}
	}
	return children
}

func NewParagraph(children ...*Node) *Node {
	return &Node{Type: TypeParagraph, Children: inlineChildren(children)}
}

func EmptyParagraph() *Node {
	return NewParagraph()
}

func NewHeading(level int, children ...*Node) *Node {
	n := &Node{Type: TypeHeading, Children: inlineChildren(children)}
	n.SetAttr(AttrLevel, level)
	return n
}

func NewQuote(children ...*Node) *Node {
	return &Node{Type: TypeQuote, Children: inlineChildren(children)}
}

func NewCode(language string, children ...*Node) *Node {
	if language == "" {
		language = DefaultCodeLanguage
	}
	n := &Node{Type: TypeCode, Children: inlineChildren(children)}
	n.SetAttr(AttrLanguage, language)
	return n
}

func NewList(format ListFormat, indentLevel int, items ...*Node) *Node {
	n := &Node{Type: TypeList, Children: items}
	n.SetAttr(AttrFormat, string(format))
	n.SetAttr(AttrIndentLevel, indentLevel)
	return n
}

func NewListItem(children ...*Node) *Node {
	return &Node{Type: TypeListItem, Children: inlineChildren(children)}
}

func NewLink(url string, children ...*Node) *Node {
	n := &Node{Type: TypeLink, Children: inlineChildren(children)}
	n.SetAttr(AttrURL, url)
	return n
}

func NewImage(image *Media) *Node {
	n := &Node{Type: TypeImage, Children: []*Node{EmptyText()}}
	n.SetAttr(AttrImage, image)
	return n
}

func NewFile(file *Media) *Node {
	n := &Node{Type: TypeFile, Children: []*Node{EmptyText()}}
	n.SetAttr(AttrFile, file)
	return n
}
