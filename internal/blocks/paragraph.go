package blocks

import (
	"github.com/aisa-it/blocks/internal/blocks/editor"
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
	"github.com/aisa-it/blocks/internal/blocks/render"
)

func paragraphBlock() *Block {
	return &Block{
		Key:   "paragraph",
		Type:  edtypes.TypeParagraph,
		Label: "Text",
		Render: func(_ *edtypes.Node, children []*render.ViewNode) *render.ViewNode {
			return render.Element("p", nil, children...)
		},
		HandleConvert: func(s *editor.Session) edtypes.Path {
			return baseHandleConvert(s, edtypes.Props{"type": string(edtypes.TypeParagraph)})
		},
		HandleEnterKey:     handleParagraphEnter,
		IsInBlocksSelector: true,
	}
}

// handleParagraphEnter разрезает блок в позиции курсора и пересоздает правую часть
// новым абзацем, чтобы атрибуты исходного блока (уровень заголовка) не переносились.
func handleParagraphEnter(s *editor.Session) {
	sel := s.Selection()
	if sel == nil {
		return
	}
	s.Do(func() {
		anchor := sel.Anchor
		top, ok := s.Block(anchor)
		if !ok {
			return
		}
		isNodeEnd := s.IsEnd(anchor, top.Path)

		s.SplitNodes(editor.SplitOptions{Always: true})

		cur := s.Selection()
		if cur == nil {
			return
		}
		fragment, ok := s.Block(cur.Anchor)
		if !ok {
			return
		}

		children := []*edtypes.Node{edtypes.EmptyText()}
		if !isNodeEnd {
			children = make([]*edtypes.Node, len(fragment.Node.Children))
			for i, c := range fragment.Node.Children {
				children[i] = c.Clone()
			}
		}
		path := fragment.Path
		s.RemoveNodes(editor.RemoveOptions{At: path})
		s.InsertNodes([]*edtypes.Node{edtypes.NewParagraph(children...)}, editor.InsertOptions{At: path})
		s.Select(s.Start(path))
	})
}
