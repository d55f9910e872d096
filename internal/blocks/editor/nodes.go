package editor

import (
	"slices"

	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

type InsertOptions struct {
	// At путь или точка вставки. nil означает текущее выделение.
	At edtypes.Location
	// Select переносит курсор в конец последнего вставленного узла.
	// При вставке в выделение курсор переносится всегда.
	Select bool
}

// InsertNodes вставляет узлы соседями начиная с At. Вставка в точку разрезает дерево:
// текст и ссылки режут текстовый лист, блоки режут ближайший блок.
func (s *Session) InsertNodes(nodes []*edtypes.Node, opts InsertOptions) {
	if len(nodes) == 0 {
		return
	}
	s.batch(func() {
		at := opts.At
		selectAfter := opts.Select
		if at == nil {
			if s.selection == nil {
				return
			}
			at = *s.selection
			selectAfter = true
		}

		if r, ok := at.(edtypes.Range); ok {
			if r.IsExpanded() {
				p := s.deleteRange(r)
				if p == nil {
					return
				}
				at = *p
			} else {
				at = r.Anchor
			}
		}

		var path edtypes.Path
		switch a := at.(type) {
		case edtypes.Path:
			path = a.Copy()
		case edtypes.Point:
			path = s.insertionPath(nodes[0], a)
			if path == nil {
				return
			}
		}

		for i, n := range nodes {
			p := path.Copy()
			p[len(p)-1] += i
			s.Apply(Operation{Type: OpInsertNode, Path: p, Node: n.Clone()})
		}

		if selectAfter {
			last := path.Copy()
			last[len(last)-1] += len(nodes) - 1
			s.selectLocation(s.end(last))
		}
	})
}

// insertionPath разрезает дерево в точке и возвращает путь для вставки node.
func (s *Session) insertionPath(node *edtypes.Node, at edtypes.Point) edtypes.Path {
	var target edtypes.Path
	if node.IsText() || node.IsInline() {
		if n, ok := s.Node(at.Path); ok && n.IsText() {
			target = at.Path.Copy()
		}
	}
	if target == nil {
		block, ok := s.Block(at)
		if !ok {
			return nil
		}
		target = block.Path
	}

	isAtEnd := s.IsEnd(at, target)
	ref := s.PathRef(target, AffinityForward)
	s.splitNodes(SplitOptions{At: &at, Match: MatchPath(target)})
	path := s.UnrefPath(ref)
	if path == nil {
		return nil
	}
	if isAtEnd {
		return path.Next()
	}
	return path
}

type RemoveOptions struct {
	At    edtypes.Location
	Match Match
}

// RemoveNodes удаляет узлы. Без Match для пути удаляется ровно этот узел,
// для выделения ближайшие блоки.
func (s *Session) RemoveNodes(opts RemoveOptions) {
	s.batch(func() {
		at, ok := s.defaultLocation(opts.At)
		if !ok {
			return
		}
		match := opts.Match
		if match == nil {
			if p, isPath := at.(edtypes.Path); isPath {
				match = MatchPath(p)
			} else {
				match = MatchBlock
			}
		}

		entries := s.Nodes(NodesOptions{At: at, Match: match, Mode: ModeLowest})
		refs := make([]*PathRef, len(entries))
		for i, e := range entries {
			refs[i] = s.PathRef(e.Path, AffinityForward)
		}
		for i := len(refs) - 1; i >= 0; i-- {
			path := s.UnrefPath(refs[i])
			if path == nil {
				continue
			}
			n, ok := s.Node(path)
			if !ok {
				continue
			}
			s.Apply(Operation{Type: OpRemoveNode, Path: path, Node: n})
		}
	})
}

type SetOptions struct {
	At    edtypes.Location
	Match Match
	// Split режет текстовые листья по границам диапазона.
	Split bool
}

// SetNodes меняет атрибуты узлов. nil значение удаляет атрибут, ключ "type" меняет тег.
func (s *Session) SetNodes(props edtypes.Props, opts SetOptions) {
	if len(props) == 0 {
		return
	}
	s.batch(func() {
		at, ok := s.defaultLocation(opts.At)
		if !ok {
			return
		}
		match := opts.Match
		if match == nil {
			if p, isPath := at.(edtypes.Path); isPath {
				match = MatchPath(p)
			} else {
				match = MatchBlock
			}
		}

		if r, isRange := at.(edtypes.Range); isRange && opts.Split && r.IsExpanded() {
			r = s.splitTexts(r, true)
			at = r
			if opts.At == nil {
				s.selectLocation(r)
			}
		}

		for _, e := range s.Nodes(NodesOptions{At: at, Match: match, Mode: ModeLowest}) {
			if e.Node.IsRoot() {
				continue
			}
			old := make(edtypes.Props, len(props))
			changed := false
			for k, v := range props {
				var cur any
				if k == "type" {
					cur = string(e.Node.Type)
					if t, ok := asNodeType(v); ok && t == e.Node.Type {
						continue
					}
				} else {
					cur, _ = e.Node.Attr(k)
				}
				old[k] = cur
				if k != "type" && cur == nil && v == nil {
					continue
				}
				changed = true
			}
			if !changed {
				continue
			}
			s.Apply(Operation{
				Type:          OpSetNode,
				Path:          e.Path,
				Properties:    old,
				NewProperties: copyProps(props),
			})
		}
	})
}

func copyProps(p edtypes.Props) edtypes.Props {
	res := make(edtypes.Props, len(p))
	for k, v := range p {
		res[k] = v
	}
	return res
}

// splitTexts режет текстовые листья на границах диапазона и возвращает диапазон,
// покрывающий ровно выделенные листья. always режет и на краю листа.
func (s *Session) splitTexts(r edtypes.Range, always bool) edtypes.Range {
	start, end := r.Edges()
	startRef := s.PointRef(start, AffinityForward)
	endRef := s.PointRef(end, AffinityBackward)

	if n, ok := s.Node(end.Path); ok && n.IsText() {
		length := edtypes.RuneLen(n.Text)
		if end.Offset < length && (always || end.Offset > 0) {
			s.Apply(Operation{Type: OpSplitNode, Path: end.Path.Copy(), Position: end.Offset, Properties: n.Props()})
		}
	}
	if cur := startRef.Current(); cur != nil {
		if n, ok := s.Node(cur.Path); ok && n.IsText() {
			length := edtypes.RuneLen(n.Text)
			if cur.Offset > 0 && (always || cur.Offset < length) {
				s.Apply(Operation{Type: OpSplitNode, Path: cur.Path, Position: cur.Offset, Properties: n.Props()})
			}
		}
	}

	sp := s.UnrefPoint(startRef)
	ep := s.UnrefPoint(endRef)
	if sp == nil || ep == nil {
		return r
	}
	return edtypes.Range{Anchor: *sp, Focus: *ep}
}

type SplitOptions struct {
	// At точка разреза, nil означает выделение.
	At *edtypes.Point
	// Match верхний узел, который будет разрезан. По умолчанию ближайший блок.
	Match Match
	// Always режет даже на границе узла.
	Always bool
}

// SplitNodes разрезает цепочку предков точки до узла Match включительно.
func (s *Session) SplitNodes(opts SplitOptions) {
	s.batch(func() {
		s.splitNodes(opts)
	})
}

func (s *Session) splitNodes(opts SplitOptions) {
	fromSelection := opts.At == nil
	var at edtypes.Point
	if fromSelection {
		if s.selection == nil {
			return
		}
		sel := *s.selection
		if sel.IsExpanded() {
			p := s.deleteRange(sel)
			if p == nil {
				return
			}
			s.selectLocation(*p)
			at = *p
		} else {
			at = sel.Anchor
		}
	} else {
		at = opts.At.Copy()
	}

	match := opts.Match
	if match == nil {
		match = MatchBlock
	}

	levels := s.levels(at.Path)
	highest := -1
	for i := len(levels) - 1; i >= 1; i-- {
		if match(levels[i].Node, levels[i].Path) {
			highest = i
			break
		}
	}
	if highest < 0 {
		return
	}
	for _, l := range levels {
		if l.Node.IsVoid() {
			return
		}
	}
	highestPath := levels[highest].Path

	afterRef := s.PointRef(at, AffinityForward)
	beforeRef := s.PointRef(at, AffinityBackward)
	defer s.UnrefPoint(beforeRef)

	position := at.Offset
	for i := len(levels) - 1; i >= 1; i-- {
		path := levels[i].Path
		if len(path) < len(highestPath) {
			break
		}
		node, ok := s.Node(path)
		if !ok {
			break
		}
		point := beforeRef.Current()
		if point == nil {
			break
		}
		isEnd := s.IsEnd(*point, path)
		split := false
		if opts.Always || !s.IsEdge(*point, path) {
			split = true
			s.Apply(Operation{Type: OpSplitNode, Path: path.Copy(), Position: position, Properties: node.Props()})
		}
		position = path.Last()
		if split || isEnd {
			position++
		}
	}

	p := s.UnrefPoint(afterRef)
	if fromSelection && p != nil {
		s.selectLocation(*p)
	}
}

// MergeNodes сливает узел с предыдущим соседом того же вида.
func (s *Session) MergeNodes(at edtypes.Path) {
	s.batch(func() {
		n, ok := s.Node(at)
		if !ok {
			return
		}
		prev, ok := s.PreviousSibling(at)
		if !ok {
			return
		}
		var position int
		switch {
		case n.IsText() && prev.Node.IsText():
			position = edtypes.RuneLen(prev.Node.Text)
		case !n.IsText() && !prev.Node.IsText():
			position = len(prev.Node.Children)
		default:
			return
		}
		s.Apply(Operation{Type: OpMergeNode, Path: at.Copy(), Position: position, Properties: n.Props()})
	})
}

// MoveNodes переносит поддерево. to задается в координатах до переноса.
func (s *Session) MoveNodes(at, to edtypes.Path) {
	s.batch(func() {
		if at.Equal(to) {
			return
		}
		s.Apply(Operation{Type: OpMoveNode, Path: at.Copy(), NewPath: to.Copy()})
	})
}

type WrapOptions struct {
	At    edtypes.Location
	Match Match
	// Split для строчной обертки режет текст по границам диапазона.
	Split bool
}

// WrapNodes оборачивает узлы в копию wrapper.
func (s *Session) WrapNodes(wrapper *edtypes.Node, opts WrapOptions) {
	s.batch(func() {
		at, ok := s.defaultLocation(opts.At)
		if !ok {
			return
		}
		if p, isPath := at.(edtypes.Path); isPath {
			s.wrapPath(wrapper, p)
			return
		}

		var r edtypes.Range
		switch a := at.(type) {
		case edtypes.Point:
			r = edtypes.Collapsed(a)
		case edtypes.Range:
			r = a
		}
		if wrapper.IsInline() {
			s.wrapInline(wrapper, r, opts.Split, opts.At == nil)
			return
		}
		s.wrapBlocks(wrapper, r, opts.Match)
	})
}

func emptyWrapper(wrapper *edtypes.Node) *edtypes.Node {
	w := wrapper.Clone()
	w.Children = nil
	w.Text = ""
	return w
}

func (s *Session) wrapPath(wrapper *edtypes.Node, p edtypes.Path) {
	if len(p) == 0 {
		return
	}
	if _, ok := s.Node(p); !ok {
		return
	}
	s.Apply(Operation{Type: OpInsertNode, Path: p.Copy(), Node: emptyWrapper(wrapper)})
	s.Apply(Operation{Type: OpMoveNode, Path: p.Next(), NewPath: p.Child(0)})
}

func (s *Session) wrapBlocks(wrapper *edtypes.Node, r edtypes.Range, match Match) {
	if match == nil {
		match = MatchBlock
	}
	entries := s.Nodes(NodesOptions{At: r, Match: match, Mode: ModeLowest})
	if len(entries) == 0 {
		return
	}
	first, last := entries[0].Path, entries[len(entries)-1].Path
	var common edtypes.Path
	if first.Equal(last) {
		common = first.Parent()
	} else {
		common = first.Common(last)
	}
	if len(first) <= len(common) || len(last) <= len(common) {
		return
	}
	depth := len(common) + 1
	firstIdx, lastIdx := first[depth-1], last[depth-1]

	s.Apply(Operation{Type: OpInsertNode, Path: common.Child(lastIdx + 1), Node: emptyWrapper(wrapper)})
	for k := 0; k <= lastIdx-firstIdx; k++ {
		s.Apply(Operation{
			Type:    OpMoveNode,
			Path:    common.Child(firstIdx),
			NewPath: common.Child(lastIdx+1-k, k),
		})
	}
}

func (s *Session) wrapInline(wrapper *edtypes.Node, r edtypes.Range, split, fromSelection bool) {
	if split && r.IsExpanded() {
		r = s.splitTexts(r, false)
	}
	inlineBlock := func(n *edtypes.Node, _ edtypes.Path) bool {
		return n.IsBlock() && n.HasInlineChildren() && !n.IsVoid()
	}
	rs, re := r.Edges()
	startRef := s.PointRef(rs, AffinityForward)
	endRef := s.PointRef(re, AffinityBackward)

	for _, b := range s.Nodes(NodesOptions{At: r, Match: inlineBlock, Mode: ModeLowest}) {
		in, ok := r.Intersection(s.Range(b.Path))
		if !ok {
			continue
		}
		start, end := in.Edges()
		depth := len(b.Path)
		if len(start.Path) <= depth || len(end.Path) <= depth {
			continue
		}
		si, ei := start.Path[depth], end.Path[depth]
		if in.IsExpanded() {
			// края, не задевающие ни одного символа, не оборачиваются
			if n, ok := s.Node(start.Path); ok && n.IsText() && len(start.Path) == depth+1 &&
				si < ei && start.Offset == edtypes.RuneLen(n.Text) {
				si++
			}
			if len(end.Path) == depth+1 && si < ei && end.Offset == 0 {
				ei--
			}
		}

		s.Apply(Operation{Type: OpInsertNode, Path: b.Path.Child(si), Node: emptyWrapper(wrapper)})
		for k := 0; k <= ei-si; k++ {
			s.Apply(Operation{Type: OpMoveNode, Path: b.Path.Child(si + 1), NewPath: b.Path.Child(si, k)})
		}
	}

	sp, ep := s.UnrefPoint(startRef), s.UnrefPoint(endRef)
	// выделение остается на обернутом тексте
	if fromSelection && s.selection != nil && sp != nil && ep != nil {
		s.selectLocation(edtypes.Range{Anchor: *sp, Focus: *ep})
	}
}

type UnwrapOptions struct {
	At    edtypes.Location
	Match Match
	// Split поднимает только детей, попавших в диапазон, разрезая обертку.
	Split bool
}

// UnwrapNodes поднимает детей подходящих узлов на уровень выше.
func (s *Session) UnwrapNodes(opts UnwrapOptions) {
	s.batch(func() {
		at, ok := s.defaultLocation(opts.At)
		if !ok {
			return
		}
		match := opts.Match
		if match == nil {
			if p, isPath := at.(edtypes.Path); isPath {
				match = MatchPath(p)
			} else {
				match = MatchBlock
			}
		}

		var startRef, endRef *PointRef
		if r, isRange := at.(edtypes.Range); isRange {
			start, end := r.Edges()
			startRef = s.PointRef(start, AffinityForward)
			endRef = s.PointRef(end, AffinityBackward)
			defer s.UnrefPoint(startRef)
			defer s.UnrefPoint(endRef)
		}

		entries := s.Nodes(NodesOptions{At: at, Match: match, Mode: ModeAll})
		refs := make([]*PathRef, len(entries))
		for i, e := range entries {
			refs[i] = s.PathRef(e.Path, AffinityForward)
		}

		for i := len(refs) - 1; i >= 0; i-- {
			path := s.UnrefPath(refs[i])
			if path == nil {
				continue
			}
			node, ok := s.Node(path)
			if !ok || node.IsText() {
				continue
			}
			r := s.Range(path)
			if opts.Split && startRef != nil {
				sp, ep := startRef.Current(), endRef.Current()
				if sp != nil && ep != nil {
					if in, ok := (edtypes.Range{Anchor: *sp, Focus: *ep}).Intersection(r); ok {
						r = in
					}
				}
			}
			children := slices.Clone(node.Children)
			s.liftNodes(r, func(n *edtypes.Node, _ edtypes.Path) bool {
				return slices.Contains(children, n)
			})
		}
	})
}

// LiftNodes переносит узлы из родителя на уровень выше, разрезая родителя при необходимости.
func (s *Session) LiftNodes(at edtypes.Location, match Match) {
	s.batch(func() {
		loc, ok := s.defaultLocation(at)
		if !ok {
			return
		}
		if match == nil {
			if p, isPath := loc.(edtypes.Path); isPath {
				match = MatchPath(p)
			} else {
				match = MatchBlock
			}
		}
		s.liftNodes(loc, match)
	})
}

func (s *Session) liftNodes(at edtypes.Location, match Match) {
	entries := s.Nodes(NodesOptions{At: at, Match: match, Mode: ModeLowest})
	refs := make([]*PathRef, len(entries))
	for i, e := range entries {
		refs[i] = s.PathRef(e.Path, AffinityForward)
	}

	for _, ref := range refs {
		path := s.UnrefPath(ref)
		if len(path) < 2 {
			if path != nil {
				s.logger.Warn("Cannot lift node without a parent block", "path", path.String())
			}
			continue
		}
		parentPath := path.Parent()
		parent, ok := s.Node(parentPath)
		if !ok {
			continue
		}
		index, length := path.Last(), len(parent.Children)

		switch {
		case length == 1:
			s.Apply(Operation{Type: OpMoveNode, Path: path, NewPath: parentPath.Next()})
			s.Apply(Operation{Type: OpRemoveNode, Path: parentPath, Node: parent})
		case index == 0:
			s.Apply(Operation{Type: OpMoveNode, Path: path, NewPath: parentPath})
		case index == length-1:
			s.Apply(Operation{Type: OpMoveNode, Path: path, NewPath: parentPath.Next()})
		default:
			s.Apply(Operation{Type: OpSplitNode, Path: parentPath, Position: index + 1, Properties: parent.Props()})
			s.Apply(Operation{Type: OpMoveNode, Path: path, NewPath: parentPath.Next()})
		}
	}
}

// Select устанавливает выделение: путь выделяет весь узел, точка ставит курсор.
func (s *Session) Select(target edtypes.Location) {
	s.batch(func() {
		s.selectLocation(target)
	})
}

func (s *Session) selectLocation(target edtypes.Location) {
	var r edtypes.Range
	switch t := target.(type) {
	case edtypes.Path:
		r = s.Range(t)
	case edtypes.Point:
		r = edtypes.Collapsed(t)
	case edtypes.Range:
		r = t.Copy()
	default:
		return
	}
	s.Apply(Operation{Type: OpSetSelection, Selection: s.Selection(), NewSelection: &r})
}

// Deselect снимает выделение.
func (s *Session) Deselect() {
	s.batch(func() {
		if s.selection == nil {
			return
		}
		s.Apply(Operation{Type: OpSetSelection, Selection: s.Selection()})
	})
}
