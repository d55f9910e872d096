package blocks

import (
	"context"
	"strconv"
	"strings"

	"github.com/aisa-it/blocks/internal/blocks/editor"
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
	"github.com/aisa-it/blocks/internal/blocks/render"
)

// MediaLibrary выбор файлов из медиатеки. kinds ограничивает типы файлов ("images", "files").
type MediaLibrary interface {
	Select(ctx context.Context, kinds []string) ([]*edtypes.Media, error)
}

// MediaLibraryFunc адаптер функции к MediaLibrary.
type MediaLibraryFunc func(ctx context.Context, kinds []string) ([]*edtypes.Media, error)

func (f MediaLibraryFunc) Select(ctx context.Context, kinds []string) ([]*edtypes.Media, error) {
	return f(ctx, kinds)
}

// PrefixFileURL дополняет относительный адрес файла адресом бэкенда.
func PrefixFileURL(backendURL, fileURL string) string {
	if !strings.HasPrefix(fileURL, "/") || backendURL == "" {
		return fileURL
	}
	return strings.TrimSuffix(backendURL, "/") + fileURL
}

func imageBlock() *Block {
	return &Block{
		Key:   "image",
		Type:  edtypes.TypeImage,
		Label: "Image",
		Render: func(n *edtypes.Node, _ []*render.ViewNode) *render.ViewNode {
			img := n.Image()
			if img == nil {
				return render.Element("img", nil)
			}
			attrs := map[string]string{
				"src": img.URL,
				"alt": img.AlternativeText,
			}
			if img.Width > 0 && img.Height > 0 {
				attrs["width"] = strconv.Itoa(img.Width)
				attrs["height"] = strconv.Itoa(img.Height)
			}
			return render.Element("img", attrs)
		},
		HandleEnterKey:     handleInsertParagraphAfter,
		HandleBackspaceKey: handleMediaBackspace,
		AssetKinds:         []string{"images"},
		IsInBlocksSelector: true,
	}
}

func fileBlock() *Block {
	return &Block{
		Key:   "file",
		Type:  edtypes.TypeFile,
		Label: "File",
		Render: func(n *edtypes.Node, _ []*render.ViewNode) *render.ViewNode {
			f := n.File()
			if f == nil {
				return render.Element("a", nil)
			}
			name := f.Name
			if name == "" {
				name = f.URL
			}
			return render.Element("a", map[string]string{
				"href":     f.URL,
				"download": name,
			}, render.Text(name))
		},
		HandleEnterKey:     handleInsertParagraphAfter,
		HandleBackspaceKey: handleMediaBackspace,
		AssetKinds:         []string{"files"},
		IsInBlocksSelector: true,
	}
}

// handleInsertParagraphAfter Enter на вложении создает абзац после него.
func handleInsertParagraphAfter(s *editor.Session) {
	s.InsertNodes([]*edtypes.Node{edtypes.EmptyParagraph()}, editor.InsertOptions{})
}

// handleMediaBackspace удаляет вложение целиком. Единственный блок документа
// превращается в пустой абзац.
func handleMediaBackspace(s *editor.Session, e *KeyEvent) {
	sel := s.Selection()
	if sel == nil {
		return
	}
	block, ok := s.Above(editor.AboveOptions{At: sel.Anchor, Match: func(n *edtypes.Node, _ edtypes.Path) bool { return n.IsVoid() }})
	if !ok {
		return
	}
	e.PreventDefault()
	if len(s.Children()) == 1 {
		s.SetNodes(edtypes.Props{
			"type":            string(edtypes.TypeParagraph),
			edtypes.AttrImage: nil,
			edtypes.AttrFile:  nil,
		}, editor.SetOptions{At: block.Path})
		return
	}
	s.RemoveNodes(editor.RemoveOptions{At: block.Path})
}

// mediaNode узел вложения для файла из медиатеки.
func mediaNode(t edtypes.NodeType, m *edtypes.Media, backendURL string) *edtypes.Node {
	m = m.Clone()
	m.URL = PrefixFileURL(backendURL, m.URL)
	if m.AlternativeText == "" {
		m.AlternativeText = m.Name
	}
	if t == edtypes.TypeFile {
		return edtypes.NewFile(m)
	}
	return edtypes.NewImage(m)
}

// insertAssets заменяет блок под курсором вложениями типа t и выделяет первое из них.
func insertAssets(s *editor.Session, t edtypes.NodeType, assets []*edtypes.Media, backendURL string) {
	if len(assets) == 0 {
		return
	}
	s.Do(func() {
		if s.Selection() == nil {
			last, ok := s.Last(edtypes.Path{})
			if !ok {
				return
			}
			s.Select(s.End(last.Path))
		}
		s.UnwrapNodes(editor.UnwrapOptions{Match: editor.MatchType(edtypes.TypeList), Split: true})

		sel := s.Selection()
		if sel == nil {
			return
		}
		block, ok := s.Above(editor.AboveOptions{At: sel.Anchor, Match: notInline})
		if !ok || block.Node.IsRoot() {
			return
		}
		path := block.Path
		nodes := make([]*edtypes.Node, 0, len(assets))
		for _, a := range assets {
			if a == nil {
				continue
			}
			nodes = append(nodes, mediaNode(t, a, backendURL))
		}
		if len(nodes) == 0 {
			return
		}
		s.RemoveNodes(editor.RemoveOptions{At: path})
		s.InsertNodes(nodes, editor.InsertOptions{At: path})
		s.Select(path)
	})
}
