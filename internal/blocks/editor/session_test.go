package editor

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

// dump компактная запись дерева для сравнения в тестах.
func dump(nodes []*edtypes.Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = dumpNode(n)
	}
	return strings.Join(parts, ", ")
}

func dumpNode(n *edtypes.Node) string {
	if n.IsText() {
		res := fmt.Sprintf("%q", n.Text)
		for _, m := range edtypes.AllMarks {
			if n.HasMark(m) {
				res += "+" + string(m)
			}
		}
		return res
	}
	return string(n.Type) + "(" + dump(n.Children) + ")"
}

func text(s string, marks ...edtypes.Mark) *edtypes.Node {
	return edtypes.NewText(s, marks...)
}

func para(s string) *edtypes.Node {
	return edtypes.NewParagraph(text(s))
}

func point(offset int, path ...int) edtypes.Point {
	return edtypes.Point{Path: edtypes.Path(path), Offset: offset}
}

func newTestSession(t *testing.T, children ...*edtypes.Node) *Session {
	t.Helper()
	return NewSession(&edtypes.Document{Children: children}, WithStrict(true))
}

func TestNewSession_Normalize(t *testing.T) {
	quote := &edtypes.Node{Type: edtypes.TypeQuote}
	image := edtypes.NewImage(&edtypes.Media{Name: "a.png"})
	image.Children[0].Text = "мусор"

	tests := []struct {
		name     string
		children []*edtypes.Node
		want     string
	}{
		{"empty document", nil, `paragraph("")`},
		{"merge equal texts", []*edtypes.Node{edtypes.NewParagraph(text("a"), text("b"))}, `paragraph("ab")`},
		{"drop empty text", []*edtypes.Node{edtypes.NewParagraph(text("a"), text("", edtypes.MarkBold))}, `paragraph("a")`},
		{"keep different marks", []*edtypes.Node{edtypes.NewParagraph(text("a"), text("b", edtypes.MarkBold))}, `paragraph("a", "b"+bold)`},
		{"surround link", []*edtypes.Node{edtypes.NewParagraph(edtypes.NewLink("https://a.ru", text("x")))}, `paragraph("", link("x"), "")`},
		{"element without children", []*edtypes.Node{quote}, `quote("")`},
		{"void text", []*edtypes.Node{image}, `image("")`},
		{"text at root", []*edtypes.Node{text("x")}, `paragraph("x")`},
		{"text in list", []*edtypes.Node{edtypes.NewList(edtypes.ListUnordered, 0, text("x"))}, `list(list-item("x"))`},
		{"paragraph in list", []*edtypes.Node{edtypes.NewList(edtypes.ListOrdered, 0, para("x"))}, `list(list-item("x"))`},
		{"block in paragraph", []*edtypes.Node{edtypes.NewParagraph(text("a"), para("b"))}, `paragraph("ab")`},
		{"list item at root", []*edtypes.Node{edtypes.NewListItem(text("x"))}, `paragraph("x")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, tt.children...)
			assert.Equal(t, tt.want, dump(s.Children()))
		})
	}
}

func TestSession_InsertText(t *testing.T) {
	s := newTestSession(t, para("Hello"))
	s.Select(point(5, 0, 0))

	s.InsertText(" мир")
	assert.Equal(t, `paragraph("Hello мир")`, dump(s.Children()))
	assert.Equal(t, point(9, 0, 0), s.Selection().Anchor)
}

func TestSession_InsertTextWithPendingMark(t *testing.T) {
	s := newTestSession(t, para("Hello"))
	s.Select(point(5, 0, 0))

	s.AddMark(edtypes.MarkBold)
	assert.True(t, s.Marks()[edtypes.MarkBold])

	s.InsertText("!")
	assert.Equal(t, `paragraph("Hello", "!"+bold)`, dump(s.Children()))
	assert.Equal(t, point(1, 0, 1), s.Selection().Anchor)
	assert.True(t, s.Marks()[edtypes.MarkBold])
}

func TestSession_AddMarkExpanded(t *testing.T) {
	s := newTestSession(t, para("abcd"))
	s.Select(edtypes.Range{Anchor: point(1, 0, 0), Focus: point(3, 0, 0)})

	s.AddMark(edtypes.MarkItalic)
	assert.Equal(t, `paragraph("a", "bc"+italic, "d")`, dump(s.Children()))
	assert.Equal(t, edtypes.Range{Anchor: point(0, 0, 1), Focus: point(2, 0, 1)}, *s.Selection())

	s.RemoveMark(edtypes.MarkItalic)
	assert.Equal(t, `paragraph("abcd")`, dump(s.Children()))
}

func TestSession_SplitNodes(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		want   string
	}{
		{"middle", 2, `paragraph("ab"), paragraph("cd")`},
		{"end", 4, `paragraph("abcd"), paragraph("")`},
		{"start", 0, `paragraph(""), paragraph("abcd")`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, para("abcd"))
			s.Select(point(tt.offset, 0, 0))

			s.SplitNodes(SplitOptions{Always: true})
			assert.Equal(t, tt.want, dump(s.Children()))
			assert.Equal(t, point(0, 1, 0), s.Selection().Anchor)
		})
	}
}

func TestSession_DeleteBackward(t *testing.T) {
	t.Run("character", func(t *testing.T) {
		s := newTestSession(t, para("абв"))
		s.Select(point(2, 0, 0))
		s.DeleteBackward()
		assert.Equal(t, `paragraph("ав")`, dump(s.Children()))
		assert.Equal(t, point(1, 0, 0), s.Selection().Anchor)
	})

	t.Run("merge blocks", func(t *testing.T) {
		s := newTestSession(t, para("ab"), para("cd"))
		s.Select(point(0, 1, 0))
		s.DeleteBackward()
		assert.Equal(t, `paragraph("abcd")`, dump(s.Children()))
		assert.Equal(t, point(2, 0, 0), s.Selection().Anchor)
	})

	t.Run("document start", func(t *testing.T) {
		s := newTestSession(t, para("ab"))
		s.Select(point(0, 0, 0))
		s.DeleteBackward()
		assert.Equal(t, `paragraph("ab")`, dump(s.Children()))
	})
}

func TestSession_DeleteFragment(t *testing.T) {
	s := newTestSession(t, para("abc"), para("mid"), para("def"))
	s.Select(edtypes.Range{Anchor: point(2, 2, 0), Focus: point(1, 0, 0)})

	s.DeleteFragment()
	assert.Equal(t, `paragraph("af")`, dump(s.Children()))
	assert.True(t, s.Selection().IsCollapsed())
	assert.Equal(t, point(1, 0, 0), s.Selection().Anchor)
}

func TestSession_InsertNodesAtPoint(t *testing.T) {
	s := newTestSession(t, para("abcd"))
	s.Select(point(2, 0, 0))

	s.InsertNodes([]*edtypes.Node{edtypes.NewImage(&edtypes.Media{Name: "a.png"})}, InsertOptions{})
	assert.Equal(t, `paragraph("ab"), image(""), paragraph("cd")`, dump(s.Children()))
	assert.Equal(t, point(0, 1, 0), s.Selection().Anchor)
}

func TestSession_WrapUnwrap(t *testing.T) {
	s := newTestSession(t, para("a"), para("b"))
	s.Select(edtypes.Range{Anchor: point(0, 0, 0), Focus: point(1, 1, 0)})

	s.Do(func() {
		s.SetNodes(edtypes.Props{"type": string(edtypes.TypeListItem)}, SetOptions{})
		s.WrapNodes(edtypes.NewList(edtypes.ListUnordered, 0), WrapOptions{Match: MatchType(edtypes.TypeListItem)})
	})
	assert.Equal(t, `list(list-item("a"), list-item("b"))`, dump(s.Children()))

	s.Select(point(0, 0, 1, 0))
	s.UnwrapNodes(UnwrapOptions{Match: MatchType(edtypes.TypeList), Split: true})
	assert.Equal(t, `list(list-item("a")), paragraph("b")`, dump(s.Children()))
	assert.Equal(t, point(0, 1, 0), s.Selection().Anchor)
}

func TestSession_LiftNodes(t *testing.T) {
	list := edtypes.NewList(edtypes.ListOrdered, 0,
		edtypes.NewListItem(text("a")),
		edtypes.NewListItem(text("b")),
		edtypes.NewListItem(text("c")),
	)
	s := newTestSession(t, list)

	s.LiftNodes(edtypes.Path{0, 1}, nil)
	assert.Equal(t, `list(list-item("a")), paragraph("b"), list(list-item("c"))`, dump(s.Children()))
	assert.Equal(t, edtypes.ListOrdered, s.Children()[2].Format())
}

func TestSession_WrapInline(t *testing.T) {
	s := newTestSession(t, para("один два"))
	s.Select(edtypes.Range{Anchor: point(5, 0, 0), Focus: point(8, 0, 0)})

	s.WrapNodes(edtypes.NewLink("https://example.com"), WrapOptions{Split: true})
	assert.Equal(t, `paragraph("один ", link("два"), "")`, dump(s.Children()))
	assert.Equal(t, edtypes.Range{Anchor: point(0, 0, 1, 0), Focus: point(3, 0, 1, 0)}, *s.Selection())
}

func TestSession_RemoveNodesMovesSelection(t *testing.T) {
	s := newTestSession(t, para("ab"), para("cd"))
	s.Select(point(1, 1, 0))

	s.RemoveNodes(RemoveOptions{At: edtypes.Path{1}})
	assert.Equal(t, `paragraph("ab")`, dump(s.Children()))
	assert.Equal(t, point(2, 0, 0), s.Selection().Anchor)
}

func TestSession_BeforeAfter(t *testing.T) {
	s := newTestSession(t, para("ab"), para("cd"))

	p, ok := s.Before(point(0, 1, 0), 1)
	require.True(t, ok)
	assert.Equal(t, point(2, 0, 0), p)

	p, ok = s.After(point(2, 0, 0), 2)
	require.True(t, ok)
	assert.Equal(t, point(1, 1, 0), p)

	_, ok = s.Before(point(0, 0, 0), 1)
	assert.False(t, ok)
}

func TestSession_InvalidOperation(t *testing.T) {
	op := Operation{Type: OpRemoveNode, Path: edtypes.Path{5}}

	strict := newTestSession(t, para("a"))
	assert.Panics(t, func() { strict.Apply(op) })

	lenient := NewSession(&edtypes.Document{Children: []*edtypes.Node{para("a")}})
	assert.NotPanics(t, func() { lenient.Apply(op) })
	assert.Equal(t, `paragraph("a")`, dump(lenient.Children()))
}

func TestSession_OnChange(t *testing.T) {
	s := newTestSession(t, para("a"))
	var docs []*edtypes.Document
	s.OnChange(func(doc *edtypes.Document) { docs = append(docs, doc) })

	s.Select(point(1, 0, 0))
	assert.Empty(t, docs, "selection changes do not notify")

	s.InsertText("b")
	require.Len(t, docs, 1)
	assert.Equal(t, "ab", docs[0].Children[0].String())
}

func TestSession_Refs(t *testing.T) {
	s := newTestSession(t, para("a"), para("b"))
	ref := s.PathRef(edtypes.Path{1}, AffinityForward)

	s.InsertNodes([]*edtypes.Node{para("x")}, InsertOptions{At: edtypes.Path{0}})
	assert.Equal(t, edtypes.Path{2}, ref.Current())

	s.RemoveNodes(RemoveOptions{At: edtypes.Path{2}})
	assert.Nil(t, s.UnrefPath(ref))
}

// Случайные команды не должны нарушать структуру дерева и выделения.
func TestSession_RandomCommandsKeepInvariants(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	s := newTestSession(t, para("первый абзац"), para("second"), para("третий"))

	randomPoint := func() edtypes.Point {
		texts := s.Texts()
		e := texts[rnd.Intn(len(texts))]
		return edtypes.Point{Path: e.Path, Offset: rnd.Intn(edtypes.RuneLen(e.Node.Text) + 1)}
	}

	for i := 0; i < 300; i++ {
		switch rnd.Intn(7) {
		case 0:
			s.Select(randomPoint())
		case 1:
			s.Select(edtypes.Range{Anchor: randomPoint(), Focus: randomPoint()})
		case 2:
			s.InsertText("xy")
		case 3:
			s.DeleteBackward()
		case 4:
			s.DeleteForward()
		case 5:
			s.SplitNodes(SplitOptions{Always: true})
		case 6:
			s.AddMark(edtypes.AllMarks[rnd.Intn(len(edtypes.AllMarks))])
		}
		checkInvariants(t, s)
	}
}

func checkInvariants(t *testing.T, s *Session) {
	t.Helper()

	var walk func(n *edtypes.Node, p edtypes.Path)
	walk = func(n *edtypes.Node, p edtypes.Path) {
		if n.IsText() {
			return
		}
		require.NotEmpty(t, n.Children, "element at %v has no children", p)
		for i, c := range n.Children {
			if i > 0 && c.IsText() && n.Children[i-1].IsText() {
				require.False(t, edtypes.SameMarks(c, n.Children[i-1]), "unmerged texts at %v", p.Child(i))
			}
			walk(c, p.Child(i))
		}
	}
	walk(s.Root(), edtypes.Path{})

	sel := s.Selection()
	if sel == nil {
		return
	}
	for _, pt := range []edtypes.Point{sel.Anchor, sel.Focus} {
		n, ok := s.Node(pt.Path)
		require.True(t, ok, "selection point %v", pt)
		require.True(t, n.IsText(), "selection point %v is not in text", pt)
		require.LessOrEqual(t, pt.Offset, edtypes.RuneLen(n.Text))
	}
}
