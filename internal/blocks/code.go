package blocks

import (
	"github.com/aisa-it/blocks/internal/blocks/editor"
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
	"github.com/aisa-it/blocks/internal/blocks/render"
)

// CodeLanguages языки, которые предлагает выбор языка блока кода.
var CodeLanguages = []string{
	edtypes.DefaultCodeLanguage, "bash", "c", "cpp", "csharp", "css", "go", "graphql", "html",
	"java", "javascript", "json", "kotlin", "markdown", "php", "python", "ruby", "rust",
	"sql", "swift", "typescript", "yaml",
}

func codeBlock(language string) *Block {
	return &Block{
		Key:   "code",
		Type:  edtypes.TypeCode,
		Label: "Code block",
		Render: func(n *edtypes.Node, children []*render.ViewNode) *render.ViewNode {
			attrs := map[string]string{"data-language": n.Language()}
			return render.Element("pre", attrs, render.Element("code", attrs, children...))
		},
		HandleConvert: func(s *editor.Session) edtypes.Path {
			return baseHandleConvert(s, edtypes.Props{"type": string(edtypes.TypeCode), edtypes.AttrLanguage: language})
		},
		HandleEnterKey: func(s *editor.Session) {
			handleExitOnDoubleEnter(s, edtypes.TypeCode, false)
		},
		Snippets:           []string{"```"},
		IsInBlocksSelector: true,
	}
}

// SetCodeLanguage меняет язык блока кода, в котором стоит курсор.
func SetCodeLanguage(s *editor.Session, language string) {
	entry, ok := s.Above(editor.AboveOptions{Match: editor.MatchType(edtypes.TypeCode)})
	if !ok {
		return
	}
	if language == "" {
		language = edtypes.DefaultCodeLanguage
	}
	s.SetNodes(edtypes.Props{edtypes.AttrLanguage: language}, editor.SetOptions{At: entry.Path})
}
