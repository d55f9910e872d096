package blocks

import (
	"github.com/aisa-it/blocks/internal/blocks/editor"
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
	"github.com/aisa-it/blocks/internal/blocks/render"
)

// Modifier модификатор текста с горячей клавишей и тегом отрисовки.
type Modifier struct {
	Mark  edtypes.Mark
	Label string
	// Key клавиша вместе с Ctrl/Cmd, Shift входит в Key заглавной буквой.
	Key string
	Tag string
}

var Modifiers = []Modifier{
	{Mark: edtypes.MarkBold, Label: "Bold", Key: "b", Tag: "strong"},
	{Mark: edtypes.MarkItalic, Label: "Italic", Key: "i", Tag: "em"},
	{Mark: edtypes.MarkUnderline, Label: "Underline", Key: "u", Tag: "u"},
	{Mark: edtypes.MarkStrikethrough, Label: "Strikethrough", Key: "S", Tag: "s"},
	{Mark: edtypes.MarkCode, Label: "Inline code", Key: "e", Tag: "code"},
}

func modifierByKey(e *KeyEvent) (Modifier, bool) {
	if !e.IsCtrlOrCmd() {
		return Modifier{}, false
	}
	for _, m := range Modifiers {
		if m.Key != e.Key {
			continue
		}
		// Shift обязателен только для заглавной клавиши
		if m.Key == "S" && !e.Shift {
			continue
		}
		return m, true
	}
	return Modifier{}, false
}

// IsModifierActive модификатор включен для текста под курсором.
func IsModifierActive(s *editor.Session, m edtypes.Mark) bool {
	return s.Marks()[m]
}

// ToggleModifier включает или выключает модификатор на выделении.
func ToggleModifier(s *editor.Session, m edtypes.Mark) {
	if IsModifierActive(s, m) {
		s.RemoveMark(m)
		return
	}
	s.AddMark(m)
}

// renderLeaf текстовый лист, обернутый в теги включенных модификаторов.
func renderLeaf(n *edtypes.Node) *render.ViewNode {
	v := render.Text(n.Text)
	var tags []string
	for _, m := range Modifiers {
		if n.HasMark(m.Mark) {
			tags = append(tags, m.Tag)
		}
	}
	return render.Wrap(v, tags...)
}
