package editor

import "github.com/aisa-it/blocks/internal/blocks/editor/edtypes"

// Affinity определяет, куда смещается путь или точка, стоящие ровно на месте разреза или вставки.
type Affinity int

const (
	AffinityForward Affinity = iota
	AffinityBackward
	// AffinityNone путь в месте разреза считается удаленным.
	AffinityNone
)

// TransformPath пересчитывает путь после применения операции к дереву.
// Возвращает false, если узел по пути был удален.
func TransformPath(path edtypes.Path, op Operation, affinity Affinity) (edtypes.Path, bool) {
	if len(path) == 0 {
		return path, true
	}
	p := path.Copy()
	opp := op.Path

	switch op.Type {
	case OpInsertNode:
		if opp.Equal(p) || opp.EndsBefore(p) || opp.IsAncestor(p) {
			p[len(opp)-1]++
		}

	case OpRemoveNode:
		if opp.Equal(p) || opp.IsAncestor(p) {
			return nil, false
		}
		if opp.EndsBefore(p) {
			p[len(opp)-1]--
		}

	case OpMergeNode:
		if opp.Equal(p) || opp.EndsBefore(p) {
			p[len(opp)-1]--
		} else if opp.IsAncestor(p) {
			p[len(opp)-1]--
			p[len(opp)] += op.Position
		}

	case OpSplitNode:
		if opp.Equal(p) {
			switch affinity {
			case AffinityForward:
				p[len(p)-1]++
			case AffinityNone:
				return nil, false
			}
		} else if opp.EndsBefore(p) {
			p[len(opp)-1]++
		} else if opp.IsAncestor(p) && path[len(opp)] >= op.Position {
			p[len(opp)-1]++
			p[len(opp)] -= op.Position
		}

	case OpMoveNode:
		onp := op.NewPath
		if opp.Equal(onp) {
			return p, true
		}
		switch {
		case opp.IsAncestor(p) || opp.Equal(p):
			res := onp.Copy()
			if opp.EndsBefore(onp) && len(opp) < len(onp) {
				res[len(opp)-1]--
			}
			return append(res, p[len(opp):]...), true

		case opp.IsSibling(onp) && (onp.IsAncestor(p) || onp.Equal(p)):
			if opp.EndsBefore(p) {
				p[len(opp)-1]--
			} else {
				p[len(opp)-1]++
			}

		case onp.EndsBefore(p) || onp.Equal(p) || onp.IsAncestor(p):
			if opp.EndsBefore(p) {
				p[len(opp)-1]--
			}
			p[len(onp)-1]++

		case opp.EndsBefore(p):
			if onp.Equal(p) {
				p[len(onp)-1]++
			}
			p[len(opp)-1]--
		}
	}

	return p, true
}

// TransformPoint пересчитывает точку после операции. false означает, что точка
// находилась внутри удаленного узла.
func TransformPoint(point edtypes.Point, op Operation, affinity Affinity) (edtypes.Point, bool) {
	res := point.Copy()
	var ok bool

	switch op.Type {
	case OpInsertText:
		if op.Path.Equal(res.Path) && (op.Offset < res.Offset || (op.Offset == res.Offset && affinity == AffinityForward)) {
			res.Offset += edtypes.RuneLen(op.Text)
		}
		return res, true

	case OpRemoveText:
		if op.Path.Equal(res.Path) && op.Offset <= res.Offset {
			res.Offset -= min(res.Offset-op.Offset, edtypes.RuneLen(op.Text))
		}
		return res, true

	case OpMergeNode:
		if op.Path.Equal(res.Path) {
			res.Offset += op.Position
		}

	case OpRemoveNode:
		if op.Path.Equal(res.Path) || op.Path.IsAncestor(res.Path) {
			return edtypes.Point{}, false
		}

	case OpSplitNode:
		if op.Path.Equal(res.Path) {
			if op.Position == res.Offset && affinity == AffinityNone {
				return edtypes.Point{}, false
			}
			if op.Position < res.Offset || (op.Position == res.Offset && affinity == AffinityForward) {
				res.Offset -= op.Position
				res.Path, ok = TransformPath(res.Path, op, AffinityForward)
				return res, ok
			}
			res.Path, ok = TransformPath(res.Path, op, AffinityBackward)
			return res, ok
		}
	}

	res.Path, ok = TransformPath(res.Path, op, affinity)
	return res, ok
}

// TransformRange пересчитывает диапазон, сжимая его внутрь: начало тянется вперед, конец назад.
func TransformRange(r edtypes.Range, op Operation) (edtypes.Range, bool) {
	anchorAffinity, focusAffinity := AffinityForward, AffinityBackward
	if r.IsCollapsed() {
		focusAffinity = AffinityForward
	} else if r.IsBackward() {
		anchorAffinity, focusAffinity = AffinityBackward, AffinityForward
	}

	anchor, ok := TransformPoint(r.Anchor, op, anchorAffinity)
	if !ok {
		return edtypes.Range{}, false
	}
	focus, ok := TransformPoint(r.Focus, op, focusAffinity)
	if !ok {
		return edtypes.Range{}, false
	}
	return edtypes.Range{Anchor: anchor, Focus: focus}, true
}
