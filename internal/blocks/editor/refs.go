package editor

import (
	"slices"

	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

// PointRef точка, которая пересчитывается при каждой операции до вызова Unref.
type PointRef struct {
	current  *edtypes.Point
	affinity Affinity
}

// Current nil, если точка была удалена.
func (r *PointRef) Current() *edtypes.Point {
	if r.current == nil {
		return nil
	}
	p := r.current.Copy()
	return &p
}

// PathRef путь, который пересчитывается при каждой операции до вызова Unref.
type PathRef struct {
	current  edtypes.Path
	affinity Affinity
}

func (r *PathRef) Current() edtypes.Path {
	return r.current.Copy()
}

func (s *Session) PointRef(p edtypes.Point, affinity Affinity) *PointRef {
	c := p.Copy()
	ref := &PointRef{current: &c, affinity: affinity}
	s.pointRefs = append(s.pointRefs, ref)
	return ref
}

func (s *Session) PathRef(p edtypes.Path, affinity Affinity) *PathRef {
	ref := &PathRef{current: p.Copy(), affinity: affinity}
	s.pathRefs = append(s.pathRefs, ref)
	return ref
}

// UnrefPoint прекращает отслеживание и возвращает последнее значение.
func (s *Session) UnrefPoint(r *PointRef) *edtypes.Point {
	s.pointRefs = slices.DeleteFunc(s.pointRefs, func(x *PointRef) bool { return x == r })
	return r.Current()
}

func (s *Session) UnrefPath(r *PathRef) edtypes.Path {
	s.pathRefs = slices.DeleteFunc(s.pathRefs, func(x *PathRef) bool { return x == r })
	return r.Current()
}

func (s *Session) transformRefs(op Operation) {
	if op.Type == OpSetSelection {
		return
	}
	for _, r := range s.pointRefs {
		if r.current == nil {
			continue
		}
		p, ok := TransformPoint(*r.current, op, r.affinity)
		if !ok {
			r.current = nil
			continue
		}
		r.current = &p
	}
	for _, r := range s.pathRefs {
		if r.current == nil {
			continue
		}
		p, ok := TransformPath(r.current, op, r.affinity)
		if !ok {
			r.current = nil
			continue
		}
		r.current = p
	}
}
