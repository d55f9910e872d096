package blocks

import (
	"github.com/aisa-it/blocks/internal/blocks/editor"
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

// notInline ближайший блок, пропуская тексты и ссылки.
func notInline(n *edtypes.Node, _ edtypes.Path) bool {
	return n.Type != edtypes.TypeText && n.Type != edtypes.TypeLink
}

// conversionTarget выделение или последний текст документа, если выделения нет.
func conversionTarget(s *editor.Session) (edtypes.Location, bool) {
	if sel := s.Selection(); sel != nil {
		return *sel, true
	}
	last, ok := s.Last(edtypes.Path{})
	if !ok {
		return nil, false
	}
	return last.Path, true
}

// attributesToClear обнуляет все атрибуты узла кроме тега и детей.
func attributesToClear(n *edtypes.Node) edtypes.Props {
	res := make(edtypes.Props, len(n.Attrs))
	for k := range n.Attrs {
		res[k] = nil
	}
	return res
}

// baseHandleConvert переводит ближайший блок выделения в тип из props.
//
// Если блок находится в списке, список разрезается так, чтобы блок оказался снаружи.
// Старые атрибуты блока сбрасываются. Возвращает путь измененного блока или nil,
// если подходящего блока нет.
func baseHandleConvert(s *editor.Session, props edtypes.Props) edtypes.Path {
	var converted edtypes.Path
	s.Do(func() {
		at, ok := conversionTarget(s)
		if !ok {
			return
		}
		s.UnwrapNodes(editor.UnwrapOptions{
			At:    at,
			Match: editor.MatchType(edtypes.TypeList),
			Split: true,
		})

		at, ok = conversionTarget(s)
		if !ok {
			return
		}
		entry, ok := s.Above(editor.AboveOptions{At: at, Match: notInline})
		if !ok || entry.Node.IsRoot() {
			return
		}

		set := attributesToClear(entry.Node)
		for k, v := range props {
			set[k] = v
		}
		s.SetNodes(set, editor.SetOptions{At: entry.Path})
		converted = entry.Path
	})
	return converted
}
