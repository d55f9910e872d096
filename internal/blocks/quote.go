package blocks

import (
	"strings"

	"github.com/aisa-it/blocks/internal/blocks/editor"
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
	"github.com/aisa-it/blocks/internal/blocks/render"
)

func quoteBlock() *Block {
	return &Block{
		Key:   "quote",
		Type:  edtypes.TypeQuote,
		Label: "Quote",
		Render: func(_ *edtypes.Node, children []*render.ViewNode) *render.ViewNode {
			return render.Element("blockquote", nil, children...)
		},
		HandleConvert: func(s *editor.Session) edtypes.Path {
			return baseHandleConvert(s, edtypes.Props{"type": string(edtypes.TypeQuote)})
		},
		HandleEnterKey: func(s *editor.Session) {
			handleExitOnDoubleEnter(s, edtypes.TypeQuote, true)
		},
		Snippets:           []string{">"},
		IsInBlocksSelector: true,
	}
}

// handleExitOnDoubleEnter Enter внутри блока t вводит перевод строки. Повторный Enter
// в конце блока, текст которого уже заканчивается переводом строки, удаляет его
// и создает абзац после блока.
//
// Параметры:
//   - s: сессия редактирования
//   - t: тег блока (code или quote)
//   - dropMarks: в конце блока снять модификаторы для следующего ввода
func handleExitOnDoubleEnter(s *editor.Session, t edtypes.NodeType, dropMarks bool) {
	sel := s.Selection()
	if sel == nil {
		return
	}
	if sel.IsExpanded() {
		// выделенный текст удаляется отдельной командой, дальше правила для курсора
		s.Delete(editor.DeleteOptions{})
		if cur := s.Selection(); cur != nil && cur.IsCollapsed() {
			handleExitOnDoubleEnter(s, t, dropMarks)
		}
		return
	}
	entry, ok := s.Above(editor.AboveOptions{At: sel.Anchor, Match: editor.MatchType(t)})
	if !ok {
		return
	}
	isNodeEnd := s.IsEnd(sel.Anchor, entry.Path)
	last := entry.Node.Children[len(entry.Node.Children)-1]
	isEmptyLine := last.IsText() && strings.HasSuffix(last.Text, "\n")

	s.Do(func() {
		if isNodeEnd && isEmptyLine {
			s.DeleteBackward()
			s.InsertNodes([]*edtypes.Node{edtypes.EmptyParagraph()}, editor.InsertOptions{})
			return
		}
		s.InsertText("\n")
		if dropMarks && isNodeEnd {
			for _, m := range edtypes.AllMarks {
				s.RemoveMark(m)
			}
		}
	})
}
