package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

func TestTransformPath(t *testing.T) {
	tests := []struct {
		name     string
		path     edtypes.Path
		op       Operation
		affinity Affinity
		want     edtypes.Path
		removed  bool
	}{
		{"insert before", edtypes.Path{0, 1}, Operation{Type: OpInsertNode, Path: edtypes.Path{0, 1}}, AffinityForward, edtypes.Path{0, 2}, false},
		{"insert in other block", edtypes.Path{0, 3}, Operation{Type: OpInsertNode, Path: edtypes.Path{1}}, AffinityForward, edtypes.Path{0, 3}, false},
		{"insert ancestor sibling", edtypes.Path{1, 0}, Operation{Type: OpInsertNode, Path: edtypes.Path{0}}, AffinityForward, edtypes.Path{2, 0}, false},
		{"remove ancestor", edtypes.Path{0, 1}, Operation{Type: OpRemoveNode, Path: edtypes.Path{0}}, AffinityForward, nil, true},
		{"remove previous", edtypes.Path{1, 2}, Operation{Type: OpRemoveNode, Path: edtypes.Path{0}}, AffinityForward, edtypes.Path{0, 2}, false},
		{"merge into previous", edtypes.Path{1, 0}, Operation{Type: OpMergeNode, Path: edtypes.Path{1}, Position: 2}, AffinityForward, edtypes.Path{0, 2}, false},
		{"split moves tail", edtypes.Path{0, 3}, Operation{Type: OpSplitNode, Path: edtypes.Path{0}, Position: 1}, AffinityForward, edtypes.Path{1, 2}, false},
		{"split keeps head", edtypes.Path{0, 0}, Operation{Type: OpSplitNode, Path: edtypes.Path{0}, Position: 1}, AffinityForward, edtypes.Path{0, 0}, false},
		{"split same backward", edtypes.Path{0}, Operation{Type: OpSplitNode, Path: edtypes.Path{0}, Position: 1}, AffinityBackward, edtypes.Path{0}, false},
		{"split same forward", edtypes.Path{0}, Operation{Type: OpSplitNode, Path: edtypes.Path{0}, Position: 1}, AffinityForward, edtypes.Path{1}, false},
		{"split same none", edtypes.Path{0}, Operation{Type: OpSplitNode, Path: edtypes.Path{0}, Position: 1}, AffinityNone, nil, true},
		{"move moved node", edtypes.Path{0, 1}, Operation{Type: OpMoveNode, Path: edtypes.Path{0}, NewPath: edtypes.Path{2}}, AffinityForward, edtypes.Path{2, 1}, false},
		{"move over sibling", edtypes.Path{1}, Operation{Type: OpMoveNode, Path: edtypes.Path{0}, NewPath: edtypes.Path{2}}, AffinityForward, edtypes.Path{0}, false},
		{"move onto sibling", edtypes.Path{2}, Operation{Type: OpMoveNode, Path: edtypes.Path{0}, NewPath: edtypes.Path{2}}, AffinityForward, edtypes.Path{1}, false},
		{"move into later sibling", edtypes.Path{0}, Operation{Type: OpMoveNode, Path: edtypes.Path{0}, NewPath: edtypes.Path{1, 0}}, AffinityForward, edtypes.Path{0, 0}, false},
		{"selection op", edtypes.Path{3}, Operation{Type: OpSetSelection}, AffinityForward, edtypes.Path{3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TransformPath(tt.path, tt.op, tt.affinity)
			if tt.removed {
				assert.False(t, ok)
				return
			}
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransformPoint(t *testing.T) {
	p := edtypes.Point{Path: edtypes.Path{0, 0}, Offset: 3}

	t.Run("insert text at point", func(t *testing.T) {
		op := Operation{Type: OpInsertText, Path: edtypes.Path{0, 0}, Offset: 3, Text: "ab"}
		fwd, _ := TransformPoint(p, op, AffinityForward)
		back, _ := TransformPoint(p, op, AffinityBackward)
		assert.Equal(t, 5, fwd.Offset)
		assert.Equal(t, 3, back.Offset)
	})

	t.Run("remove text over point", func(t *testing.T) {
		op := Operation{Type: OpRemoveText, Path: edtypes.Path{0, 0}, Offset: 1, Text: "абвгд"}
		got, ok := TransformPoint(p, op, AffinityForward)
		assert.True(t, ok)
		assert.Equal(t, 1, got.Offset)
	})

	t.Run("split text", func(t *testing.T) {
		op := Operation{Type: OpSplitNode, Path: edtypes.Path{0, 0}, Position: 2}
		got, _ := TransformPoint(p, op, AffinityForward)
		assert.Equal(t, edtypes.Point{Path: edtypes.Path{0, 1}, Offset: 1}, got)

		op.Position = 3
		back, _ := TransformPoint(p, op, AffinityBackward)
		assert.Equal(t, p, back)
	})

	t.Run("merge text", func(t *testing.T) {
		q := edtypes.Point{Path: edtypes.Path{0, 1}, Offset: 1}
		op := Operation{Type: OpMergeNode, Path: edtypes.Path{0, 1}, Position: 4}
		got, _ := TransformPoint(q, op, AffinityForward)
		assert.Equal(t, edtypes.Point{Path: edtypes.Path{0, 0}, Offset: 5}, got)
	})

	t.Run("removed node", func(t *testing.T) {
		_, ok := TransformPoint(p, Operation{Type: OpRemoveNode, Path: edtypes.Path{0}}, AffinityForward)
		assert.False(t, ok)
	})
}
