package script

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aisa-it/blocks/internal/blocks"
	"github.com/aisa-it/blocks/internal/blocks/render"
)

const headingAndList = `[
	{"action": "select", "anchor": {"path": [0, 0], "offset": 0}},
	{"action": "type", "text": "## Тема\n- один"},
	{"action": "key", "key": "Enter"},
	{"action": "type", "text": "два"}
]`

func run(t *testing.T, src string) (*blocks.Editor, error) {
	t.Helper()
	actions, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	e := blocks.New(nil, blocks.WithStrict(true))
	return e, NewRunner().Run(context.Background(), e, actions)
}

func TestRunner_Run(t *testing.T) {
	e, err := run(t, headingAndList)
	require.NoError(t, err)

	raw, err := render.RawHTML(e.Render())
	require.NoError(t, err)
	assert.Equal(t, `<h2>Тема</h2><ul data-indent-level="0" style="list-style-type: disc"><li>один</li><li>два</li></ul>`, raw)
}

func TestRunner_Actions(t *testing.T) {
	e, err := run(t, `[
		{"action": "select", "anchor": {"path": [0, 0], "offset": 0}},
		{"action": "type", "text": "жирный"},
		{"action": "select", "anchor": {"path": [0, 0], "offset": 0}, "focus": {"path": [0, 0], "offset": 6}},
		{"action": "modifier", "mark": "bold"},
		{"action": "list", "format": "ordered"}
	]`)
	require.NoError(t, err)

	raw, err := render.RawHTML(e.Render())
	require.NoError(t, err)
	assert.Equal(t, `<ol data-indent-level="0" style="list-style-type: decimal"><li><strong>жирный</strong></li></ol>`, raw)
}

func TestRunner_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"select without anchor", `[{"action": "select"}]`, ErrMissingPoint},
		{"modifier without mark", `[{"action": "modifier"}]`, ErrMissingField},
		{"unknown block", `[{"action": "select", "anchor": {"path": [0, 0]}}, {"action": "convert", "block": "table"}]`, blocks.ErrUnknownBlock},
		{"move the only block", `[{"action": "select", "anchor": {"path": [0, 0]}}, {"action": "move", "dir": 1}]`, ErrMoveEdge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.src)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("validation", func(t *testing.T) {
		_, err := run(t, `[{"action": "dance"}]`)
		assert.ErrorContains(t, err, "action 0")
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := Parse(strings.NewReader(`[{"action": "type", "txt": "a"}]`))
		assert.Error(t, err)
	})
}
