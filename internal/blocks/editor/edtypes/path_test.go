package edtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPath_Compare(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Path
		want  int
		ances bool
	}{
		{"equal", Path{0, 1}, Path{0, 1}, 0, false},
		{"before", Path{0, 1}, Path{0, 2}, -1, false},
		{"after", Path{1}, Path{0, 5}, 1, false},
		{"ancestor", Path{0}, Path{0, 3}, 0, true},
		{"root is ancestor", Path{}, Path{2}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Compare(tt.b))
			assert.Equal(t, tt.ances, tt.a.IsAncestor(tt.b))
		})
	}
}

func TestPath_EndsBefore(t *testing.T) {
	assert.True(t, Path{0, 1}.EndsBefore(Path{0, 2, 5}))
	assert.False(t, Path{0, 2}.EndsBefore(Path{0, 1, 5}))
	assert.False(t, Path{0, 1, 2}.EndsBefore(Path{0, 2}))
	assert.False(t, Path{0}.EndsBefore(Path{}))
}

func TestPath_Navigation(t *testing.T) {
	p := Path{1, 2}
	assert.Equal(t, Path{1, 3}, p.Next())
	assert.Equal(t, Path{1, 1}, p.Previous())
	assert.Equal(t, Path{1}, p.Parent())
	assert.Equal(t, Path{1, 2, 0}, p.Child(0))
	assert.Equal(t, []Path{{}, {1}}, p.Ancestors())
	assert.Equal(t, Path{1}, p.Common(Path{1, 5, 0}))
	assert.True(t, p.IsSibling(Path{1, 0}))
	assert.False(t, Path{0}.HasPrevious())
	assert.Nil(t, Path{0}.Previous())

	// Next не должен портить исходный путь
	assert.Equal(t, Path{1, 2}, p)
}

func TestRange_Edges(t *testing.T) {
	a := Point{Path: Path{0, 0}, Offset: 3}
	b := Point{Path: Path{1, 0}, Offset: 1}

	r := Range{Anchor: b, Focus: a}
	assert.True(t, r.IsBackward())
	assert.Equal(t, a, r.Start())
	assert.Equal(t, b, r.End())
	assert.True(t, r.IsExpanded())
	assert.True(t, Collapsed(a).IsCollapsed())

	other := Range{Anchor: Point{Path: Path{0, 0}, Offset: 5}, Focus: Point{Path: Path{2, 0}}}
	in, ok := r.Intersection(other)
	assert.True(t, ok)
	assert.Equal(t, Point{Path: Path{0, 0}, Offset: 5}, in.Anchor)
	assert.Equal(t, b, in.Focus)

	_, ok = Collapsed(Point{Path: Path{3, 0}}).Intersection(r)
	assert.False(t, ok)
}

func TestText_Runes(t *testing.T) {
	assert.Equal(t, 6, RuneLen("Привет"))
	before, after := SplitAt("Привет", 3)
	assert.Equal(t, "При", before)
	assert.Equal(t, "вет", after)
	assert.Equal(t, "Прxивет", InsertAt("Привет", 2, "x"))
	assert.Equal(t, "ив", Substr("Привет", 2, 4))
	assert.Equal(t, "", Substr("abc", 5, 9))
}
