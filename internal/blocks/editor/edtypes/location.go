package edtypes

import "fmt"

// Location путь, точка или диапазон.
type Location interface {
	location()
}

func (Path) location()  {}
func (Point) location() {}
func (Range) location() {}

// Point позиция в текстовом листе. Offset считается в рунах.
type Point struct {
	Path   Path `json:"path"`
	Offset int  `json:"offset"`
}

func (p Point) String() string {
	return fmt.Sprintf("%v:%d", p.Path, p.Offset)
}

func (p Point) Equal(other Point) bool {
	return p.Offset == other.Offset && p.Path.Equal(other.Path)
}

func (p Point) Compare(other Point) int {
	if c := p.Path.Compare(other.Path); c != 0 {
		return c
	}
	switch {
	case p.Offset < other.Offset:
		return -1
	case p.Offset > other.Offset:
		return 1
	}
	return 0
}

func (p Point) IsBefore(other Point) bool {
	return p.Compare(other) == -1
}

func (p Point) IsAfter(other Point) bool {
	return p.Compare(other) == 1
}

func (p Point) Copy() Point {
	return Point{Path: p.Path.Copy(), Offset: p.Offset}
}

// Range выделение: anchor и focus. Совпадающие точки означают курсор.
type Range struct {
	Anchor Point `json:"anchor"`
	Focus  Point `json:"focus"`
}

func Collapsed(p Point) Range {
	return Range{Anchor: p.Copy(), Focus: p.Copy()}
}

func (r Range) IsCollapsed() bool {
	return r.Anchor.Equal(r.Focus)
}

func (r Range) IsExpanded() bool {
	return !r.IsCollapsed()
}

func (r Range) IsBackward() bool {
	return r.Anchor.IsAfter(r.Focus)
}

// Edges точки диапазона в порядке документа.
func (r Range) Edges() (Point, Point) {
	if r.IsBackward() {
		return r.Focus, r.Anchor
	}
	return r.Anchor, r.Focus
}

func (r Range) Start() Point {
	s, _ := r.Edges()
	return s
}

func (r Range) End() Point {
	_, e := r.Edges()
	return e
}

func (r Range) Copy() Range {
	return Range{Anchor: r.Anchor.Copy(), Focus: r.Focus.Copy()}
}

func (r Range) Equal(other Range) bool {
	return r.Anchor.Equal(other.Anchor) && r.Focus.Equal(other.Focus)
}

// Includes точка лежит внутри диапазона включая границы.
func (r Range) Includes(p Point) bool {
	start, end := r.Edges()
	return p.Compare(start) >= 0 && p.Compare(end) <= 0
}

// Intersection пересечение двух диапазонов.
func (r Range) Intersection(other Range) (Range, bool) {
	s1, e1 := r.Edges()
	s2, e2 := other.Edges()
	start := s1
	if s2.IsAfter(s1) {
		start = s2
	}
	end := e1
	if e2.IsBefore(e1) {
		end = e2
	}
	if end.IsBefore(start) {
		return Range{}, false
	}
	return Range{Anchor: start.Copy(), Focus: end.Copy()}, true
}
