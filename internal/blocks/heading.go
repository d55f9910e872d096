package blocks

import (
	"fmt"
	"strings"

	"github.com/aisa-it/blocks/internal/blocks/editor"
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
	"github.com/aisa-it/blocks/internal/blocks/render"
)

var headingKeys = [...]string{"heading-one", "heading-two", "heading-three", "heading-four", "heading-five", "heading-six"}

// HeadingKey ключ реестра для заголовка уровня level (1..6).
func HeadingKey(level int) string {
	if level < 1 || level > len(headingKeys) {
		return ""
	}
	return headingKeys[level-1]
}

// headingBlock заголовок одного уровня. Enter обрабатывается как в абзаце,
// новая строка после заголовка всегда становится абзацем.
func headingBlock(level int) *Block {
	return &Block{
		Key:   HeadingKey(level),
		Type:  edtypes.TypeHeading,
		Label: fmt.Sprintf("Heading %d", level),
		Render: func(_ *edtypes.Node, children []*render.ViewNode) *render.ViewNode {
			return render.Element(fmt.Sprintf("h%d", level), nil, children...)
		},
		MatchNode: func(n *edtypes.Node) bool {
			return n.Level() == level
		},
		HandleConvert: func(s *editor.Session) edtypes.Path {
			return baseHandleConvert(s, edtypes.Props{"type": string(edtypes.TypeHeading), edtypes.AttrLevel: level})
		},
		Snippets:           []string{strings.Repeat("#", level)},
		IsInBlocksSelector: true,
	}
}
