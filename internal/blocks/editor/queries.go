package editor

import (
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

// NodeEntry узел вместе с его путем.
type NodeEntry struct {
	Node *edtypes.Node
	Path edtypes.Path
}

type textEntry struct {
	node *edtypes.Node
	path edtypes.Path
}

// Match предикат выбора узлов.
type Match func(n *edtypes.Node, p edtypes.Path) bool

type Mode int

const (
	ModeAll Mode = iota
	ModeLowest
	ModeHighest
)

// MatchType узлы заданного тега.
func MatchType(t edtypes.NodeType) Match {
	return func(n *edtypes.Node, _ edtypes.Path) bool {
		return n.Type == t
	}
}

// MatchBlock блочные элементы.
func MatchBlock(n *edtypes.Node, _ edtypes.Path) bool {
	return n.IsBlock()
}

// MatchText текстовые листья.
func MatchText(n *edtypes.Node, _ edtypes.Path) bool {
	return n.IsText()
}

// MatchPath ровно узел по пути.
func MatchPath(path edtypes.Path) Match {
	return func(_ *edtypes.Node, p edtypes.Path) bool {
		return p.Equal(path)
	}
}

// Node узел по пути.
func (s *Session) Node(path edtypes.Path) (*edtypes.Node, bool) {
	return edtypes.Get(s.root, path)
}

// Parent родитель узла по пути.
func (s *Session) Parent(path edtypes.Path) (NodeEntry, bool) {
	if len(path) == 0 {
		return NodeEntry{}, false
	}
	parentPath := path.Parent()
	n, ok := s.Node(parentPath)
	if !ok {
		return NodeEntry{}, false
	}
	return NodeEntry{Node: n, Path: parentPath}, true
}

// PreviousSibling предыдущий узел с тем же родителем.
func (s *Session) PreviousSibling(path edtypes.Path) (NodeEntry, bool) {
	prev := path.Previous()
	if prev == nil {
		return NodeEntry{}, false
	}
	n, ok := s.Node(prev)
	if !ok {
		return NodeEntry{}, false
	}
	return NodeEntry{Node: n, Path: prev}, true
}

// NextSibling следующий узел с тем же родителем.
func (s *Session) NextSibling(path edtypes.Path) (NodeEntry, bool) {
	next := path.Next()
	if next == nil {
		return NodeEntry{}, false
	}
	n, ok := s.Node(next)
	if !ok {
		return NodeEntry{}, false
	}
	return NodeEntry{Node: n, Path: next}, true
}

// levels узлы от корня до path включительно.
func (s *Session) levels(path edtypes.Path) []NodeEntry {
	res := []NodeEntry{{Node: s.root, Path: edtypes.Path{}}}
	n := s.root
	for i, idx := range path {
		if idx < 0 || idx >= len(n.Children) {
			break
		}
		n = n.Children[idx]
		res = append(res, NodeEntry{Node: n, Path: path[:i+1].Copy()})
	}
	return res
}

func (s *Session) locationPath(at edtypes.Location) edtypes.Path {
	switch a := at.(type) {
	case edtypes.Path:
		return a
	case edtypes.Point:
		return a.Path
	case edtypes.Range:
		return a.Anchor.Path.Common(a.Focus.Path)
	}
	return nil
}

func (s *Session) defaultLocation(at edtypes.Location) (edtypes.Location, bool) {
	if at != nil {
		return at, true
	}
	if s.selection == nil {
		return nil, false
	}
	return *s.selection, true
}

type AboveOptions struct {
	At    edtypes.Location
	Match Match
	Mode  Mode
}

// Above ближайший (или самый верхний для ModeHighest) предок location, подходящий под Match.
// Текстовые листья и корень не возвращаются, сам узел по пути тоже.
func (s *Session) Above(opts AboveOptions) (NodeEntry, bool) {
	at, ok := s.defaultLocation(opts.At)
	if !ok {
		return NodeEntry{}, false
	}
	path := s.locationPath(at)
	levels := s.levels(path)

	var found NodeEntry
	var has bool
	for i := len(levels) - 1; i >= 0; i-- {
		e := levels[i]
		if e.Node.IsText() || e.Node.IsRoot() {
			continue
		}
		if r, isRange := at.(edtypes.Range); isRange {
			if !e.Path.IsAncestor(r.Anchor.Path) || !e.Path.IsAncestor(r.Focus.Path) {
				continue
			}
		} else if e.Path.Equal(path) {
			continue
		}
		if opts.Match != nil && !opts.Match(e.Node, e.Path) {
			continue
		}
		if opts.Mode != ModeHighest {
			return e, true
		}
		found, has = e, true
	}
	return found, has
}

// Block ближайший блок над location.
func (s *Session) Block(at edtypes.Location) (NodeEntry, bool) {
	return s.Above(AboveOptions{At: at, Match: MatchBlock})
}

// Last последний текстовый лист внутри path.
func (s *Session) Last(path edtypes.Path) (NodeEntry, bool) {
	n, ok := s.Node(path)
	if !ok {
		return NodeEntry{}, false
	}
	p := path.Copy()
	for !n.IsText() && len(n.Children) > 0 {
		i := len(n.Children) - 1
		n = n.Children[i]
		p = p.Child(i)
	}
	return NodeEntry{Node: n, Path: p}, true
}

// First первый текстовый лист внутри path.
func (s *Session) First(path edtypes.Path) (NodeEntry, bool) {
	n, ok := s.Node(path)
	if !ok {
		return NodeEntry{}, false
	}
	p := path.Copy()
	for !n.IsText() && len(n.Children) > 0 {
		n = n.Children[0]
		p = p.Child(0)
	}
	return NodeEntry{Node: n, Path: p}, true
}

func (s *Session) start(path edtypes.Path) edtypes.Point {
	e, ok := s.First(path)
	if !ok {
		return edtypes.Point{Path: path.Copy()}
	}
	return edtypes.Point{Path: e.Path}
}

func (s *Session) end(path edtypes.Path) edtypes.Point {
	e, ok := s.Last(path)
	if !ok {
		return edtypes.Point{Path: path.Copy()}
	}
	return edtypes.Point{Path: e.Path, Offset: edtypes.RuneLen(e.Node.Text)}
}

// Start начало узла.
func (s *Session) Start(path edtypes.Path) edtypes.Point {
	return s.start(path)
}

// End конец узла.
func (s *Session) End(path edtypes.Path) edtypes.Point {
	return s.end(path)
}

// Range диапазон, покрывающий весь узел.
func (s *Session) Range(path edtypes.Path) edtypes.Range {
	return edtypes.Range{Anchor: s.start(path), Focus: s.end(path)}
}

func (s *Session) IsStart(p edtypes.Point, path edtypes.Path) bool {
	return p.Equal(s.start(path))
}

func (s *Session) IsEnd(p edtypes.Point, path edtypes.Path) bool {
	return p.Equal(s.end(path))
}

func (s *Session) IsEdge(p edtypes.Point, path edtypes.Path) bool {
	return s.IsStart(p, path) || s.IsEnd(p, path)
}

// String текст узла.
func (s *Session) String(path edtypes.Path) string {
	n, ok := s.Node(path)
	if !ok {
		return ""
	}
	return n.String()
}

func (s *Session) texts() []textEntry {
	var res []textEntry
	var walk func(n *edtypes.Node, p edtypes.Path)
	walk = func(n *edtypes.Node, p edtypes.Path) {
		if n.IsText() {
			res = append(res, textEntry{node: n, path: p})
			return
		}
		for i, c := range n.Children {
			walk(c, p.Child(i))
		}
	}
	walk(s.root, edtypes.Path{})
	return res
}

// Texts все текстовые листья в порядке документа.
func (s *Session) Texts() []NodeEntry {
	texts := s.texts()
	res := make([]NodeEntry, len(texts))
	for i, t := range texts {
		res[i] = NodeEntry{Node: t.node, Path: t.path}
	}
	return res
}

func (s *Session) previousText(path edtypes.Path) (NodeEntry, bool) {
	var prev NodeEntry
	var has bool
	for _, t := range s.texts() {
		if t.path.Compare(path) != -1 {
			break
		}
		prev, has = NodeEntry{Node: t.node, Path: t.path}, true
	}
	return prev, has
}

func (s *Session) nextText(path edtypes.Path) (NodeEntry, bool) {
	for _, t := range s.texts() {
		if t.path.Compare(path) == 1 {
			return NodeEntry{Node: t.node, Path: t.path}, true
		}
	}
	return NodeEntry{}, false
}

func (s *Session) sameBlock(a, b edtypes.Path) bool {
	ba, okA := s.Block(a)
	bb, okB := s.Block(b)
	return okA && okB && ba.Path.Equal(bb.Path)
}

// Before точка на distance символов раньше. Граница блоков считается одним символом.
func (s *Session) Before(p edtypes.Point, distance int) (edtypes.Point, bool) {
	cur := p.Copy()
	for i := 0; i < distance; i++ {
		crossed := false
		for cur.Offset == 0 {
			prev, ok := s.previousText(cur.Path)
			if !ok {
				return edtypes.Point{}, false
			}
			same := s.sameBlock(prev.Path, cur.Path)
			cur = edtypes.Point{Path: prev.Path, Offset: edtypes.RuneLen(prev.Node.Text)}
			if !same {
				crossed = true
				break
			}
		}
		if !crossed {
			cur.Offset--
		}
	}
	return cur, true
}

// After точка на distance символов позже.
func (s *Session) After(p edtypes.Point, distance int) (edtypes.Point, bool) {
	cur := p.Copy()
	for i := 0; i < distance; i++ {
		crossed := false
		for {
			n, ok := s.Node(cur.Path)
			if !ok {
				return edtypes.Point{}, false
			}
			if cur.Offset < edtypes.RuneLen(n.Text) {
				break
			}
			next, ok := s.nextText(cur.Path)
			if !ok {
				return edtypes.Point{}, false
			}
			same := s.sameBlock(next.Path, cur.Path)
			cur = edtypes.Point{Path: next.Path}
			if !same {
				crossed = true
				break
			}
		}
		if !crossed {
			cur.Offset++
		}
	}
	return cur, true
}

func (s *Session) span(at edtypes.Location) (edtypes.Path, edtypes.Path) {
	switch a := at.(type) {
	case edtypes.Path:
		return a, a
	case edtypes.Point:
		return a.Path, a.Path
	case edtypes.Range:
		start, end := a.Edges()
		return start.Path, end.Path
	}
	return nil, nil
}

type NodesOptions struct {
	At    edtypes.Location
	Match Match
	Mode  Mode
}

// Nodes узлы, пересекающиеся с location, в порядке документа. Предки location тоже входят.
// По умолчанию возвращаются все подходящие узлы.
func (s *Session) Nodes(opts NodesOptions) []NodeEntry {
	at, ok := s.defaultLocation(opts.At)
	if !ok {
		return nil
	}
	from, to := s.span(at)

	var all []NodeEntry
	var walk func(n *edtypes.Node, p edtypes.Path)
	walk = func(n *edtypes.Node, p edtypes.Path) {
		if len(p) > 0 {
			if p.Compare(from) < 0 || p.Compare(to) > 0 {
				return
			}
			if opts.Match == nil || opts.Match(n, p) {
				all = append(all, NodeEntry{Node: n, Path: p})
			}
		}
		for i, c := range n.Children {
			walk(c, p.Child(i))
		}
	}
	walk(s.root, edtypes.Path{})

	switch opts.Mode {
	case ModeLowest:
		return filterEntries(all, func(e, other NodeEntry) bool { return e.Path.IsAncestor(other.Path) })
	case ModeHighest:
		return filterEntries(all, func(e, other NodeEntry) bool { return other.Path.IsAncestor(e.Path) })
	}
	return all
}

// filterEntries оставляет записи, для которых drop не сработал ни с одной другой.
func filterEntries(all []NodeEntry, drop func(e, other NodeEntry) bool) []NodeEntry {
	res := make([]NodeEntry, 0, len(all))
	for _, e := range all {
		keep := true
		for _, other := range all {
			if drop(e, other) {
				keep = false
				break
			}
		}
		if keep {
			res = append(res, e)
		}
	}
	return res
}

// Marks модификаторы, которые получит вводимый текст.
func (s *Session) Marks() map[edtypes.Mark]bool {
	if s.selection == nil {
		return nil
	}
	if s.marks != nil {
		res := make(map[edtypes.Mark]bool, len(s.marks))
		for k, v := range s.marks {
			if v {
				res[k] = true
			}
		}
		return res
	}

	sel := *s.selection
	if sel.IsExpanded() {
		texts := s.Nodes(NodesOptions{At: sel, Match: MatchText, Mode: ModeAll})
		if len(texts) == 0 {
			return map[edtypes.Mark]bool{}
		}
		return texts[0].Node.Marks()
	}

	n, ok := s.Node(sel.Anchor.Path)
	if !ok || !n.IsText() {
		return map[edtypes.Mark]bool{}
	}
	if sel.Anchor.Offset == 0 {
		if prev, ok := s.previousText(sel.Anchor.Path); ok && s.sameBlock(prev.Path, sel.Anchor.Path) {
			return prev.Node.Marks()
		}
	}
	return n.Marks()
}
