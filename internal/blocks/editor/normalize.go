package editor

import (
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

// maxNormalizePasses защита от зацикливания правил.
const maxNormalizePasses = 10000

// normalize применяет правила структуры до тех пор, пока дерево меняется.
func (s *Session) normalize() {
	for range maxNormalizePasses {
		if !s.normalizeNode(s.root, edtypes.Path{}) {
			return
		}
	}
	s.logger.Error("Document normalization did not converge", "passes", maxNormalizePasses)
}

// normalizeNode исправляет первое найденное нарушение в поддереве. true, если дерево изменилось.
func (s *Session) normalizeNode(n *edtypes.Node, path edtypes.Path) bool {
	if n.IsText() {
		return false
	}

	switch {
	case n.IsRoot():
		if s.normalizeRoot(n) {
			return true
		}
	case len(n.Children) == 0:
		s.Apply(Operation{Type: OpInsertNode, Path: path.Child(0), Node: edtypes.EmptyText()})
		return true
	case n.IsVoid():
		return s.normalizeVoid(n, path)
	case n.Type == edtypes.TypeList:
		if s.normalizeList(n, path) {
			return true
		}
	case n.HasInlineChildren():
		if s.normalizeInline(n, path) {
			return true
		}
	}

	for i, c := range n.Children {
		if s.normalizeNode(c, path.Child(i)) {
			return true
		}
	}
	return false
}

func (s *Session) normalizeRoot(n *edtypes.Node) bool {
	if len(n.Children) == 0 {
		s.Apply(Operation{Type: OpInsertNode, Path: edtypes.Path{0}, Node: edtypes.EmptyParagraph()})
		return true
	}
	for i, c := range n.Children {
		p := edtypes.Path{i}
		switch {
		case c.IsText() || c.IsInline():
			s.wrapIn(&edtypes.Node{Type: edtypes.TypeParagraph}, p)
			return true
		case c.Type == edtypes.TypeListItem:
			s.Apply(Operation{
				Type:          OpSetNode,
				Path:          p,
				Properties:    edtypes.Props{"type": string(c.Type)},
				NewProperties: edtypes.Props{"type": string(edtypes.TypeParagraph)},
			})
			return true
		}
	}
	return false
}

// normalizeVoid вложение держит ровно один пустой текст.
func (s *Session) normalizeVoid(n *edtypes.Node, path edtypes.Path) bool {
	if len(n.Children) > 1 {
		last := len(n.Children) - 1
		s.Apply(Operation{Type: OpRemoveNode, Path: path.Child(last), Node: n.Children[last]})
		return true
	}
	c := n.Children[0]
	if !c.IsText() {
		s.Apply(Operation{Type: OpRemoveNode, Path: path.Child(0), Node: c})
		return true
	}
	if c.Text != "" {
		s.Apply(Operation{Type: OpRemoveText, Path: path.Child(0), Text: c.Text})
		return true
	}
	return false
}

// normalizeList в списке только элементы и вложенные списки.
func (s *Session) normalizeList(n *edtypes.Node, path edtypes.Path) bool {
	for i, c := range n.Children {
		if c.Type == edtypes.TypeList || c.Type == edtypes.TypeListItem {
			continue
		}
		p := path.Child(i)
		if c.IsText() || c.IsInline() {
			s.wrapIn(&edtypes.Node{Type: edtypes.TypeListItem}, p)
			return true
		}
		old := c.Props()
		old["type"] = string(c.Type)
		props := edtypes.Props{"type": string(edtypes.TypeListItem)}
		for k := range c.Attrs {
			props[k] = nil
		}
		s.Apply(Operation{Type: OpSetNode, Path: p, Properties: old, NewProperties: props})
		return true
	}
	return false
}

// normalizeInline блок с текстовым содержимым: блоки внутри разворачиваются,
// ссылки окружены текстом, соседние тексты с одинаковыми модификаторами склеиваются.
func (s *Session) normalizeInline(n *edtypes.Node, path edtypes.Path) bool {
	for i, c := range n.Children {
		if c.IsBlock() || (n.IsInline() && c.IsInline()) {
			s.unwrapIn(c, path.Child(i))
			return true
		}
	}

	for i, c := range n.Children {
		p := path.Child(i)
		if c.IsInline() {
			if i == 0 || !n.Children[i-1].IsText() {
				s.Apply(Operation{Type: OpInsertNode, Path: p, Node: edtypes.EmptyText()})
				return true
			}
			if i == len(n.Children)-1 {
				s.Apply(Operation{Type: OpInsertNode, Path: p.Next(), Node: edtypes.EmptyText()})
				return true
			}
			continue
		}
		if i == 0 {
			continue
		}
		prev := n.Children[i-1]
		if !c.IsText() || !prev.IsText() {
			continue
		}
		switch {
		case edtypes.SameMarks(prev, c):
			s.Apply(Operation{Type: OpMergeNode, Path: p, Position: edtypes.RuneLen(prev.Text), Properties: c.Props()})
			return true
		case prev.Text == "":
			s.Apply(Operation{Type: OpRemoveNode, Path: p.Previous(), Node: prev})
			return true
		case c.Text == "":
			s.Apply(Operation{Type: OpRemoveNode, Path: p, Node: c})
			return true
		}
	}
	return false
}

// wrapIn оборачивает узел по пути p в пустой wrapper.
func (s *Session) wrapIn(wrapper *edtypes.Node, p edtypes.Path) {
	s.Apply(Operation{Type: OpInsertNode, Path: p, Node: wrapper})
	s.Apply(Operation{Type: OpMoveNode, Path: p.Next(), NewPath: p.Child(0)})
}

// unwrapIn выносит детей узла на его место и удаляет сам узел.
func (s *Session) unwrapIn(n *edtypes.Node, p edtypes.Path) {
	for k := len(n.Children) - 1; k >= 0; k-- {
		s.Apply(Operation{Type: OpMoveNode, Path: p.Child(k), NewPath: p.Next()})
	}
	s.Apply(Operation{Type: OpRemoveNode, Path: p, Node: n})
}
