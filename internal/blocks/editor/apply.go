package editor

import (
	"fmt"
	"slices"

	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

// applyToTree выполняет структурную часть операции над деревом root.
func applyToTree(root *edtypes.Node, op Operation) error {
	switch op.Type {
	case OpInsertNode:
		if op.Node == nil || len(op.Path) == 0 {
			return fmt.Errorf("%w: %s", ErrInvalidOperation, op)
		}
		parent, index, err := parentOf(root, op.Path)
		if err != nil {
			return err
		}
		if index > len(parent.Children) || parent.IsText() {
			return fmt.Errorf("%w: cannot insert at %v", ErrInvalidPath, op.Path)
		}
		parent.Children = slices.Insert(parent.Children, index, op.Node)

	case OpRemoveNode:
		parent, index, err := childOf(root, op.Path)
		if err != nil {
			return err
		}
		parent.Children = slices.Delete(parent.Children, index, index+1)

	case OpInsertText:
		n, err := textAt(root, op.Path)
		if err != nil {
			return err
		}
		if op.Offset < 0 || op.Offset > edtypes.RuneLen(n.Text) {
			return fmt.Errorf("%w: offset %d out of text at %v", ErrInvalidOperation, op.Offset, op.Path)
		}
		n.Text = edtypes.InsertAt(n.Text, op.Offset, op.Text)

	case OpRemoveText:
		n, err := textAt(root, op.Path)
		if err != nil {
			return err
		}
		length := edtypes.RuneLen(op.Text)
		if op.Offset < 0 || op.Offset+length > edtypes.RuneLen(n.Text) {
			return fmt.Errorf("%w: remove %q at %d out of text at %v", ErrInvalidOperation, op.Text, op.Offset, op.Path)
		}
		before, rest := edtypes.SplitAt(n.Text, op.Offset)
		_, after := edtypes.SplitAt(rest, length)
		n.Text = before + after

	case OpSetNode:
		n, err := nodeAt(root, op.Path)
		if err != nil {
			return err
		}
		if len(op.Path) == 0 {
			return fmt.Errorf("%w: cannot set properties on the root", ErrInvalidOperation)
		}
		for k, v := range op.NewProperties {
			switch k {
			case "children", "text":
				return fmt.Errorf("%w: cannot set %q", ErrInvalidOperation, k)
			case "type":
				if t, ok := asNodeType(v); ok {
					n.Type = t
				}
			default:
				n.SetAttr(k, v)
			}
		}

	case OpSplitNode:
		parent, index, err := childOf(root, op.Path)
		if err != nil {
			return err
		}
		n := parent.Children[index]
		next := &edtypes.Node{Type: n.Type}
		for k, v := range op.Properties {
			if k == "type" {
				continue
			}
			next.SetAttr(k, v)
		}
		if n.IsText() {
			if op.Position < 0 || op.Position > edtypes.RuneLen(n.Text) {
				return fmt.Errorf("%w: split %v at %d", ErrInvalidOperation, op.Path, op.Position)
			}
			n.Text, next.Text = edtypes.SplitAt(n.Text, op.Position)
		} else {
			if op.Position < 0 || op.Position > len(n.Children) {
				return fmt.Errorf("%w: split %v at %d", ErrInvalidOperation, op.Path, op.Position)
			}
			next.Children = slices.Clone(n.Children[op.Position:])
			n.Children = slices.Clone(n.Children[:op.Position])
		}
		parent.Children = slices.Insert(parent.Children, index+1, next)

	case OpMergeNode:
		parent, index, err := childOf(root, op.Path)
		if err != nil {
			return err
		}
		if index == 0 {
			return fmt.Errorf("%w: no previous sibling to merge %v into", ErrInvalidOperation, op.Path)
		}
		n, prev := parent.Children[index], parent.Children[index-1]
		switch {
		case n.IsText() && prev.IsText():
			prev.Text += n.Text
		case !n.IsText() && !prev.IsText():
			prev.Children = append(prev.Children, n.Children...)
		default:
			return fmt.Errorf("%w: cannot merge %s into %s", ErrInvalidOperation, n.Type, prev.Type)
		}
		parent.Children = slices.Delete(parent.Children, index, index+1)

	case OpMoveNode:
		if op.Path.IsAncestor(op.NewPath) {
			return fmt.Errorf("%w: cannot move %v inside itself to %v", ErrInvalidOperation, op.Path, op.NewPath)
		}
		parent, index, err := childOf(root, op.Path)
		if err != nil {
			return err
		}
		n := parent.Children[index]
		truePath, _ := TransformPath(op.Path, op, AffinityForward)
		newParentPath := truePath.Parent()
		newIndex := truePath.Last()

		// newPath задан до удаления, поэтому родитель ищется по пересчитанному пути
		parent.Children = slices.Delete(parent.Children, index, index+1)
		newParent, ok := edtypes.Get(root, newParentPath)
		if !ok || newParent.IsText() || newIndex > len(newParent.Children) {
			// откат, дерево не должно меняться при ошибке
			parent.Children = slices.Insert(parent.Children, index, n)
			return fmt.Errorf("%w: cannot move %v to %v", ErrInvalidPath, op.Path, op.NewPath)
		}
		newParent.Children = slices.Insert(newParent.Children, newIndex, n)

	case OpSetSelection:

	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidOperation, op.Type)
	}
	return nil
}

func asNodeType(v any) (edtypes.NodeType, bool) {
	switch t := v.(type) {
	case edtypes.NodeType:
		return t, true
	case string:
		return edtypes.NodeType(t), true
	}
	return "", false
}

func nodeAt(root *edtypes.Node, path edtypes.Path) (*edtypes.Node, error) {
	n, ok := edtypes.Get(root, path)
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPath, path)
	}
	return n, nil
}

func textAt(root *edtypes.Node, path edtypes.Path) (*edtypes.Node, error) {
	n, err := nodeAt(root, path)
	if err != nil {
		return nil, err
	}
	if !n.IsText() {
		return nil, fmt.Errorf("%w: %v is a %s node, not text", ErrInvalidPath, path, n.Type)
	}
	return n, nil
}

// parentOf родитель пути и индекс в нем, сам узел может не существовать.
func parentOf(root *edtypes.Node, path edtypes.Path) (*edtypes.Node, int, error) {
	if len(path) == 0 {
		return nil, 0, fmt.Errorf("%w: root has no parent", ErrInvalidPath)
	}
	parent, err := nodeAt(root, path.Parent())
	if err != nil {
		return nil, 0, err
	}
	return parent, path.Last(), nil
}

// childOf родитель существующего узла и его индекс.
func childOf(root *edtypes.Node, path edtypes.Path) (*edtypes.Node, int, error) {
	parent, index, err := parentOf(root, path)
	if err != nil {
		return nil, 0, err
	}
	if index < 0 || index >= len(parent.Children) {
		return nil, 0, fmt.Errorf("%w: %v", ErrInvalidPath, path)
	}
	return parent, index, nil
}
