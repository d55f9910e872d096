// Пакет render описывает независимое от интерфейса представление документа (ViewNode)
// и его вывод в HTML.
package render

// ViewNode узел представления. Пустой Tag означает текст.
type ViewNode struct {
	Tag      string
	Attrs    map[string]string
	Text     string
	Children []*ViewNode
}

// Element узел с тегом. Пустые значения атрибутов отбрасываются.
func Element(tag string, attrs map[string]string, children ...*ViewNode) *ViewNode {
	v := &ViewNode{Tag: tag, Children: children}
	for k, val := range attrs {
		if val == "" {
			continue
		}
		if v.Attrs == nil {
			v.Attrs = make(map[string]string)
		}
		v.Attrs[k] = val
	}
	return v
}

func Text(s string) *ViewNode {
	return &ViewNode{Text: s}
}

func (v *ViewNode) IsText() bool {
	return v.Tag == ""
}

// Wrap оборачивает узел в цепочку тегов, первый тег внешний.
func Wrap(v *ViewNode, tags ...string) *ViewNode {
	for i := len(tags) - 1; i >= 0; i-- {
		v = Element(tags[i], nil, v)
	}
	return v
}

// String текстовое содержимое поддерева.
func (v *ViewNode) String() string {
	if v.IsText() {
		return v.Text
	}
	var res string
	for _, c := range v.Children {
		res += c.String()
	}
	return res
}
