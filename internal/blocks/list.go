package blocks

import (
	"strconv"

	"github.com/aisa-it/blocks/internal/blocks/editor"
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
	"github.com/aisa-it/blocks/internal/blocks/render"
)

var (
	orderedListStyles   = [...]string{"decimal", "lower-alpha", "upper-roman"}
	unorderedListStyles = [...]string{"disc", "circle", "square"}
)

// ListStyleType маркер списка: стиль циклически меняется с уровнем вложенности.
func ListStyleType(format edtypes.ListFormat, indentLevel int) string {
	if indentLevel < 0 {
		indentLevel = 0
	}
	if format == edtypes.ListOrdered {
		return orderedListStyles[indentLevel%len(orderedListStyles)]
	}
	return unorderedListStyles[indentLevel%len(unorderedListStyles)]
}

// ListKey ключ реестра для списка формата format.
func ListKey(format edtypes.ListFormat) string {
	return "list-" + string(format)
}

func listBlock(format edtypes.ListFormat) *Block {
	b := &Block{
		Key:  ListKey(format),
		Type: edtypes.TypeList,
		Render: func(n *edtypes.Node, children []*render.ViewNode) *render.ViewNode {
			tag := "ul"
			if n.Format() == edtypes.ListOrdered {
				tag = "ol"
			}
			return render.Element(tag, map[string]string{
				"style":             "list-style-type: " + ListStyleType(n.Format(), n.IndentLevel()),
				"data-indent-level": strconv.Itoa(n.IndentLevel()),
			}, children...)
		},
		MatchNode: func(n *edtypes.Node) bool {
			return n.Format() == format
		},
		HandleConvert:      handleConvertToList(format),
		HandleEnterKey:     handleListEnter,
		HandleBackspaceKey: handleListBackspace,
		HandleTab:          handleListTab,
		IsInBlocksSelector: true,
	}
	if format == edtypes.ListOrdered {
		b.Label = "Numbered list"
		b.Snippets = []string{"1."}
	} else {
		b.Label = "Bulleted list"
		b.Snippets = []string{"-", "*", "+"}
	}
	return b
}

func listItemBlock() *Block {
	return &Block{
		Key:   "list-item",
		Type:  edtypes.TypeListItem,
		Label: "List item",
		Render: func(_ *edtypes.Node, children []*render.ViewNode) *render.ViewNode {
			return render.Element("li", nil, children...)
		},
		IsDraggable: func(*edtypes.Node) bool { return false },
	}
}

// handleConvertToList превращает блок в элемент и оборачивает его в новый список.
func handleConvertToList(format edtypes.ListFormat) func(s *editor.Session) edtypes.Path {
	return func(s *editor.Session) edtypes.Path {
		var converted edtypes.Path
		// обе операции одной командой, иначе нормализация вернет элемент в абзац
		s.Do(func() {
			path := baseHandleConvert(s, edtypes.Props{"type": string(edtypes.TypeListItem)})
			if path == nil {
				return
			}
			s.WrapNodes(edtypes.NewList(format, 0), editor.WrapOptions{At: path})
			converted = path
		})
		return converted
	}
}

// listContext элемент под курсором, его список и список уровнем выше.
type listContext struct {
	item          editor.NodeEntry
	list          editor.NodeEntry
	parentList    editor.NodeEntry
	hasParentList bool
}

// currentList ищет элемент списка от якоря выделения: у выделения через несколько
// элементов общий предок уже сам список.
func currentList(s *editor.Session) (listContext, bool) {
	var c listContext
	sel := s.Selection()
	if sel == nil {
		return c, false
	}
	item, ok := s.Above(editor.AboveOptions{At: sel.Anchor, Match: editor.MatchType(edtypes.TypeListItem)})
	if !ok {
		return c, false
	}
	list, ok := s.Parent(item.Path)
	if !ok || list.Node.Type != edtypes.TypeList {
		return c, false
	}
	c.item, c.list = item, list
	c.parentList, c.hasParentList = s.Above(editor.AboveOptions{At: list.Path, Match: editor.MatchType(edtypes.TypeList)})
	return c, true
}

func (c listContext) isListEmpty() bool {
	return len(c.list.Node.Children) == 1 && c.item.Node.IsEmpty()
}

// replaceListWithEmptyBlock заменяет список пустым абзацем и ставит в него курсор.
func replaceListWithEmptyBlock(s *editor.Session, listPath edtypes.Path) {
	s.Do(func() {
		s.RemoveNodes(editor.RemoveOptions{At: listPath})
		s.InsertNodes([]*edtypes.Node{edtypes.EmptyParagraph()}, editor.InsertOptions{At: listPath})
		s.Select(s.Start(listPath))
	})
}

func handleListEnter(s *editor.Session) {
	sel := s.Selection()
	if sel == nil {
		return
	}
	if sel.IsExpanded() {
		// выделенный текст удаляется отдельной командой, дальше правила для курсора
		s.Delete(editor.DeleteOptions{})
		if cur := s.Selection(); cur != nil && cur.IsCollapsed() {
			handleListEnter(s)
		}
		return
	}
	c, ok := currentList(s)
	if !ok {
		return
	}
	anchor := sel.Anchor
	isItemEmpty := c.item.Node.IsEmpty()

	s.Do(func() {
		switch {
		case c.isListEmpty() && !c.hasParentList:
			replaceListWithEmptyBlock(s, c.list.Path)
		case isItemEmpty && c.hasParentList:
			// элемент переходит на уровень выше
			s.LiftNodes(c.item.Path, nil)
		case isItemEmpty:
			s.RemoveNodes(editor.RemoveOptions{At: c.item.Path})
			next := c.list.Path.Next()
			if _, exists := s.Node(c.list.Path); !exists {
				next = c.list.Path
			}
			s.InsertNodes([]*edtypes.Node{edtypes.EmptyParagraph()}, editor.InsertOptions{At: next})
			s.Select(s.Start(next))
		case sel.IsCollapsed() && s.IsEnd(anchor, c.item.Path):
			// новый элемент не наследует модификаторы конца строки
			s.InsertNodes([]*edtypes.Node{edtypes.NewListItem()}, editor.InsertOptions{})
		case sel.IsCollapsed() && s.IsStart(anchor, c.item.Path):
			s.InsertNodes([]*edtypes.Node{edtypes.NewListItem()}, editor.InsertOptions{At: c.item.Path})
		default:
			s.SplitNodes(editor.SplitOptions{Match: editor.MatchType(edtypes.TypeListItem)})
		}
	})
}

func handleListBackspace(s *editor.Session, e *KeyEvent) {
	sel := s.Selection()
	if sel == nil {
		return
	}
	c, ok := currentList(s)
	if !ok {
		return
	}

	if c.isListEmpty() && !c.hasParentList {
		e.PreventDefault()
		replaceListWithEmptyBlock(s, c.list.Path)
		return
	}

	focus := sel.Focus
	if sel.IsCollapsed() && focus.Offset == 0 && focus.Path.Last() == 0 &&
		!c.item.Node.IsEmpty() && len(focus.Path) == len(c.item.Path)+1 {
		e.PreventDefault()
		s.Do(func() {
			if c.hasParentList {
				s.LiftNodes(c.item.Path, nil)
				return
			}
			ref := s.PathRef(c.item.Path, editor.AffinityForward)
			s.LiftNodes(c.item.Path, nil)
			if p := s.UnrefPath(ref); p != nil {
				s.SetNodes(edtypes.Props{"type": string(edtypes.TypeParagraph)}, editor.SetOptions{At: p})
			}
		})
		return
	}

	if c.item.Node.IsEmpty() {
		prev, hasPrev := s.PreviousSibling(c.item.Path)
		next, hasNext := s.NextSibling(c.item.Path)
		if !hasPrev || !hasNext {
			return
		}
		e.PreventDefault()
		mergeLists := prev.Node.Type == edtypes.TypeList && next.Node.Type == edtypes.TypeList &&
			prev.Node.Format() == next.Node.Format() && prev.Node.IndentLevel() == next.Node.IndentLevel()
		target := s.End(prev.Path)
		s.Do(func() {
			s.RemoveNodes(editor.RemoveOptions{At: c.item.Path})
			if mergeLists {
				// после удаления следующий список стоит на месте элемента
				s.MergeNodes(c.item.Path)
			}
			s.Select(target)
		})
	}
}

func handleListTab(s *editor.Session) {
	if s.Selection() == nil {
		return
	}
	c, ok := currentList(s)
	if !ok || c.item.Path.Last() == 0 {
		return
	}
	prev, ok := s.PreviousSibling(c.item.Path)
	if !ok {
		return
	}
	switch prev.Node.Type {
	case edtypes.TypeList:
		s.MoveNodes(c.item.Path, prev.Path.Child(len(prev.Node.Children)))
	case edtypes.TypeListItem:
		s.WrapNodes(
			edtypes.NewList(c.list.Node.Format(), c.list.Node.IndentLevel()+1),
			editor.WrapOptions{At: c.item.Path},
		)
	}
}

// ToggleList переключает формат списка под курсором. Вне списка блок
// превращается в список, для того же формата список превращается в абзацы.
func ToggleList(s *editor.Session, r *Registry, format edtypes.ListFormat) {
	at, ok := conversionTarget(s)
	if !ok {
		return
	}
	var point edtypes.Location = at
	if rng, isRange := at.(edtypes.Range); isRange {
		point = rng.Anchor
	}
	list, found := s.Above(editor.AboveOptions{At: point, Match: editor.MatchType(edtypes.TypeList)})

	switch {
	case !found:
		if b, ok := r.Get(ListKey(format)); ok && b.HandleConvert != nil {
			b.HandleConvert(s)
		}
	case list.Node.Format() != format:
		s.SetNodes(edtypes.Props{edtypes.AttrFormat: string(format)}, editor.SetOptions{At: list.Path})
	default:
		if b, ok := r.Get("paragraph"); ok && b.HandleConvert != nil {
			b.HandleConvert(s)
		}
	}
}

// IsListActive курсор стоит в списке формата format.
func IsListActive(s *editor.Session, format edtypes.ListFormat) bool {
	sel := s.Selection()
	if sel == nil {
		return false
	}
	list, ok := s.Above(editor.AboveOptions{At: sel.Anchor, Match: editor.MatchType(edtypes.TypeList)})
	return ok && list.Node.Format() == format
}
