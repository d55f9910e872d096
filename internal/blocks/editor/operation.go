package editor

import (
	"errors"
	"fmt"

	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

var (
	ErrInvalidPath      = errors.New("path does not address a node")
	ErrInvalidOperation = errors.New("invalid operation")
)

type OpType string

const (
	OpInsertNode   OpType = "insert_node"
	OpRemoveNode   OpType = "remove_node"
	OpInsertText   OpType = "insert_text"
	OpRemoveText   OpType = "remove_text"
	OpSetNode      OpType = "set_node"
	OpSplitNode    OpType = "split_node"
	OpMergeNode    OpType = "merge_node"
	OpMoveNode     OpType = "move_node"
	OpSetSelection OpType = "set_selection"
)

// Operation низкоуровневое изменение дерева или выделения.
//
// Поля используются в зависимости от типа:
//   - insert_node, remove_node: Path, Node
//   - insert_text, remove_text: Path, Offset, Text
//   - set_node: Path, Properties (старые значения), NewProperties
//   - split_node, merge_node: Path, Position, Properties
//   - move_node: Path, NewPath
//   - set_selection: Selection, NewSelection
type Operation struct {
	Type          OpType
	Path          edtypes.Path
	NewPath       edtypes.Path
	Offset        int
	Text          string
	Position      int
	Node          *edtypes.Node
	Properties    edtypes.Props
	NewProperties edtypes.Props
	Selection     *edtypes.Range
	NewSelection  *edtypes.Range
}

func (op Operation) String() string {
	switch op.Type {
	case OpInsertText, OpRemoveText:
		return fmt.Sprintf("%s %v@%d %q", op.Type, op.Path, op.Offset, op.Text)
	case OpSplitNode, OpMergeNode:
		return fmt.Sprintf("%s %v@%d", op.Type, op.Path, op.Position)
	case OpMoveNode:
		return fmt.Sprintf("%s %v -> %v", op.Type, op.Path, op.NewPath)
	case OpSetSelection:
		return fmt.Sprintf("%s %v", op.Type, op.NewSelection)
	}
	return fmt.Sprintf("%s %v", op.Type, op.Path)
}

// IsSelection операции, не меняющие дерево.
func (op Operation) IsSelection() bool {
	return op.Type == OpSetSelection
}
