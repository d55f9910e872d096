package editor

import (
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

// InsertText вводит текст в позицию курсора. Выделенный диапазон сначала удаляется.
// Если для курсора заданы модификаторы, отличные от текущего листа, текст вставляется новым листом.
func (s *Session) InsertText(text string) {
	if text == "" {
		return
	}
	s.batch(func() {
		if s.selection == nil {
			return
		}
		// модификаторы курсора не должны сброситься удалением
		marks := s.marks

		sel := *s.selection
		at := sel.Anchor
		if sel.IsExpanded() {
			p := s.deleteRange(sel)
			if p == nil {
				return
			}
			s.selectLocation(*p)
			at = *p
		}

		if block, ok := s.Block(at); ok && block.Node.IsVoid() {
			return
		}
		n, ok := s.Node(at.Path)
		if !ok || !n.IsText() {
			return
		}

		if marks != nil && !sameMarkSet(n.Marks(), marks) {
			var list []edtypes.Mark
			for _, m := range edtypes.AllMarks {
				if marks[m] {
					list = append(list, m)
				}
			}
			s.InsertNodes([]*edtypes.Node{edtypes.NewText(text, list...)}, InsertOptions{At: at, Select: true})
			return
		}
		s.Apply(Operation{Type: OpInsertText, Path: at.Path.Copy(), Offset: at.Offset, Text: text})
	})
}

func sameMarkSet(a, b map[edtypes.Mark]bool) bool {
	for _, m := range edtypes.AllMarks {
		if a[m] != b[m] {
			return false
		}
	}
	return true
}

type DeleteOptions struct {
	// At nil означает выделение. Путь удаляет узел целиком.
	At edtypes.Location
	// Distance число символов для свернутой позиции, по умолчанию 1.
	Distance int
	// Reverse удаление назад от позиции.
	Reverse bool
}

// Delete удаляет диапазон или символы рядом с точкой.
func (s *Session) Delete(opts DeleteOptions) {
	s.batch(func() {
		at, ok := s.defaultLocation(opts.At)
		if !ok {
			return
		}
		distance := opts.Distance
		if distance <= 0 {
			distance = 1
		}

		var r edtypes.Range
		switch a := at.(type) {
		case edtypes.Path:
			s.RemoveNodes(RemoveOptions{At: a})
			return
		case edtypes.Point:
			var found bool
			r, found = s.rangeAround(a, distance, opts.Reverse)
			if !found {
				return
			}
		case edtypes.Range:
			if a.IsExpanded() {
				r = a
				break
			}
			var found bool
			r, found = s.rangeAround(a.Anchor, distance, opts.Reverse)
			if !found {
				return
			}
		}

		p := s.deleteRange(r)
		if p != nil && opts.At == nil {
			s.selectLocation(*p)
		}
	})
}

func (s *Session) rangeAround(p edtypes.Point, distance int, reverse bool) (edtypes.Range, bool) {
	if reverse {
		before, ok := s.Before(p, distance)
		if !ok {
			return edtypes.Range{}, false
		}
		return edtypes.Range{Anchor: before, Focus: p}, true
	}
	after, ok := s.After(p, distance)
	if !ok {
		return edtypes.Range{}, false
	}
	return edtypes.Range{Anchor: p, Focus: after}, true
}

// DeleteBackward удаляет символ перед курсором или выделенный диапазон.
func (s *Session) DeleteBackward() {
	s.Delete(DeleteOptions{Reverse: true})
}

// DeleteForward удаляет символ после курсора или выделенный диапазон.
func (s *Session) DeleteForward() {
	s.Delete(DeleteOptions{})
}

// DeleteFragment удаляет выделенный диапазон.
func (s *Session) DeleteFragment() {
	s.batch(func() {
		if s.selection == nil || s.selection.IsCollapsed() {
			return
		}
		s.Delete(DeleteOptions{})
	})
}

// deleteRange удаляет содержимое диапазона и склеивает блок конца с блоком начала.
// Возвращает позицию начала после удаления.
func (s *Session) deleteRange(r edtypes.Range) *edtypes.Point {
	start, end := r.Edges()
	if start.Equal(end) {
		p := start.Copy()
		return &p
	}

	if start.Path.Equal(end.Path) {
		n, ok := s.Node(start.Path)
		if ok && n.IsText() {
			s.Apply(Operation{
				Type:   OpRemoveText,
				Path:   start.Path.Copy(),
				Offset: start.Offset,
				Text:   edtypes.Substr(n.Text, start.Offset, end.Offset),
			})
		}
		p := start.Copy()
		return &p
	}

	startBlock, okStart := s.Block(start)
	endBlock, okEnd := s.Block(end)

	startRef := s.PointRef(start, AffinityBackward)
	defer s.UnrefPoint(startRef)
	var startBlockRef, endBlockRef *PathRef
	if okStart && okEnd {
		startBlockRef = s.PathRef(startBlock.Path, AffinityBackward)
		endBlockRef = s.PathRef(endBlock.Path, AffinityForward)
	}

	// узлы строго между краями, без спуска внутрь
	var between []edtypes.Path
	var walk func(n *edtypes.Node, p edtypes.Path)
	walk = func(n *edtypes.Node, p edtypes.Path) {
		for i, c := range n.Children {
			cp := p.Child(i)
			cs, ce := cp.Compare(start.Path), cp.Compare(end.Path)
			switch {
			case cs == 1 && ce == -1:
				between = append(between, cp)
			case cs == 0 || ce == 0:
				walk(c, cp)
			}
		}
	}
	walk(s.root, edtypes.Path{})

	if n, ok := s.Node(end.Path); ok && n.IsText() && end.Offset > 0 {
		s.Apply(Operation{Type: OpRemoveText, Path: end.Path.Copy(), Text: edtypes.Substr(n.Text, 0, end.Offset)})
	}
	if n, ok := s.Node(start.Path); ok && n.IsText() && start.Offset < edtypes.RuneLen(n.Text) {
		s.Apply(Operation{
			Type:   OpRemoveText,
			Path:   start.Path.Copy(),
			Offset: start.Offset,
			Text:   edtypes.Substr(n.Text, start.Offset, edtypes.RuneLen(n.Text)),
		})
	}
	for i := len(between) - 1; i >= 0; i-- {
		if n, ok := s.Node(between[i]); ok {
			s.Apply(Operation{Type: OpRemoveNode, Path: between[i], Node: n})
		}
	}

	if startBlockRef != nil {
		sb, eb := s.UnrefPath(startBlockRef), s.UnrefPath(endBlockRef)
		if sb != nil && eb != nil && !sb.Equal(eb) {
			s.joinBlocks(sb, eb)
		}
	}

	return startRef.Current()
}

// joinBlocks переносит содержимое блока eb в конец блока sb и удаляет eb вместе с опустевшими предками.
func (s *Session) joinBlocks(sb, eb edtypes.Path) {
	sNode, ok := s.Node(sb)
	if !ok {
		return
	}
	eNode, ok := s.Node(eb)
	if !ok {
		return
	}

	switch {
	case eNode.IsVoid():
	case sNode.IsVoid():
		// удаляется сам пустой блок-вложение
		if !eNode.IsEmpty() {
			s.Apply(Operation{Type: OpRemoveNode, Path: sb.Copy(), Node: sNode})
			s.removeEmptyAncestors(sb.Parent())
			return
		}
	default:
		for len(eNode.Children) > 0 {
			s.Apply(Operation{Type: OpMoveNode, Path: eb.Child(0), NewPath: sb.Child(len(sNode.Children))})
		}
	}

	s.Apply(Operation{Type: OpRemoveNode, Path: eb.Copy(), Node: eNode})
	s.removeEmptyAncestors(eb.Parent())
}

func (s *Session) removeEmptyAncestors(path edtypes.Path) {
	for len(path) > 0 {
		n, ok := s.Node(path)
		if !ok || len(n.Children) > 0 {
			return
		}
		s.Apply(Operation{Type: OpRemoveNode, Path: path.Copy(), Node: n})
		path = path.Parent()
	}
}

// AddMark включает модификатор на выделении, для курсора запоминает его для следующего ввода.
func (s *Session) AddMark(m edtypes.Mark) {
	s.batch(func() {
		if s.selection == nil {
			return
		}
		if s.selection.IsExpanded() {
			s.SetNodes(edtypes.Props{string(m): true}, SetOptions{Match: MatchText, Split: true})
			return
		}
		marks := s.Marks()
		marks[m] = true
		s.marks = marks
	})
}

// RemoveMark снимает модификатор.
func (s *Session) RemoveMark(m edtypes.Mark) {
	s.batch(func() {
		if s.selection == nil {
			return
		}
		if s.selection.IsExpanded() {
			s.SetNodes(edtypes.Props{string(m): nil}, SetOptions{Match: MatchText, Split: true})
			return
		}
		marks := s.Marks()
		delete(marks, m)
		s.marks = marks
	})
}
