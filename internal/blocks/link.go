package blocks

import (
	"github.com/aisa-it/blocks/internal/blocks/editor"
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
	"github.com/aisa-it/blocks/internal/blocks/render"
	"github.com/aisa-it/blocks/internal/blocks/validation"
)

func linkBlock() *Block {
	return &Block{
		Key:   "link",
		Type:  edtypes.TypeLink,
		Label: "Link",
		Render: func(n *edtypes.Node, children []*render.ViewNode) *render.ViewNode {
			rel := n.Rel()
			if rel == "" {
				rel = "noopener noreferrer"
			}
			return render.Element("a", map[string]string{
				"href":   n.URL(),
				"rel":    rel,
				"target": n.Target(),
			}, children...)
		},
		IsDraggable: func(*edtypes.Node) bool { return false },
	}
}

// LinkPathTracker запоминает путь вставленной ссылки, чтобы для нее открылся попап.
// Путь пересчитывается при переносе узлов, если перед ссылкой есть соседи.
var LinkPathTracker editor.Observer = editor.ObserverFunc(trackLinkPath)

func trackLinkPath(s *editor.Session, op editor.Operation) {
	switch op.Type {
	case editor.OpInsertNode:
		if op.Node != nil && op.Node.Type == edtypes.TypeLink && s.ShouldSaveLinkPath {
			s.LastInsertedLinkPath = op.Path.Copy()
		}
	case editor.OpMoveNode:
		if op.Path.HasPrevious() && s.LastInsertedLinkPath != nil && s.ShouldSaveLinkPath {
			if p, ok := editor.TransformPath(s.LastInsertedLinkPath, op, editor.AffinityForward); ok {
				s.LastInsertedLinkPath = p
			}
		}
	}
}

func matchLink(n *edtypes.Node, _ edtypes.Path) bool {
	return n.Type == edtypes.TypeLink
}

// insertLink вставляет ссылку в свернутое выделение или оборачивает в ссылку выделенный текст.
// Ссылки внутри выделения предварительно снимаются.
func insertLink(s *editor.Session, url string) {
	s.Do(func() {
		sel := s.Selection()
		if sel == nil {
			return
		}
		if len(s.Nodes(editor.NodesOptions{At: *sel, Match: matchLink})) > 0 {
			s.UnwrapNodes(editor.UnwrapOptions{At: *sel, Match: matchLink})
		}

		sel = s.Selection()
		if sel == nil {
			return
		}
		if sel.IsCollapsed() {
			s.InsertNodes([]*edtypes.Node{edtypes.NewLink(url, edtypes.NewText(url))}, editor.InsertOptions{})
			return
		}
		s.WrapNodes(edtypes.NewLink(url), editor.WrapOptions{Split: true})
	})
}

// editLink меняет адрес ссылки под курсором. Непустой text, отличный от текущего,
// заменяет содержимое ссылки.
func editLink(s *editor.Session, url, text string) {
	link, ok := s.Above(editor.AboveOptions{Match: matchLink})
	if !ok {
		return
	}
	s.Do(func() {
		s.SetNodes(edtypes.Props{edtypes.AttrURL: url}, editor.SetOptions{At: link.Path})
		if text == "" || text == s.String(link.Path) {
			return
		}
		n, ok := s.Node(link.Path)
		if !ok {
			return
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			s.RemoveNodes(editor.RemoveOptions{At: link.Path.Child(i)})
		}
		s.InsertNodes([]*edtypes.Node{edtypes.NewText(text)}, editor.InsertOptions{At: link.Path.Child(0)})
		s.Select(s.End(link.Path))
	})
}

// removeLink снимает ссылки в выделении, текст остается на месте.
func removeLink(s *editor.Session) {
	if s.Selection() == nil {
		return
	}
	s.UnwrapNodes(editor.UnwrapOptions{Match: matchLink})
}

// isCursorAtLinkEnd возвращает ссылку, если свернутый курсор стоит в ее конце.
func isCursorAtLinkEnd(s *editor.Session) (editor.NodeEntry, bool) {
	sel := s.Selection()
	if sel == nil || sel.IsExpanded() {
		return editor.NodeEntry{}, false
	}
	link, ok := s.Above(editor.AboveOptions{At: sel.Anchor, Match: matchLink})
	if !ok || !s.IsEnd(sel.Anchor, link.Path) {
		return editor.NodeEntry{}, false
	}
	return link, true
}

// PopoverState состояние попапа редактирования ссылки.
type PopoverState int

const (
	PopoverClosed PopoverState = iota
	PopoverOpenOnInsert
	PopoverOpenOnClick
)

func (st PopoverState) String() string {
	switch st {
	case PopoverOpenOnInsert:
		return "open-on-insert"
	case PopoverOpenOnClick:
		return "open-on-click"
	}
	return "closed"
}

// LinkPopover попап редактирования одной ссылки документа.
//
// Попап только что вставленной ссылки открывается сразу. Ссылка с пустым адресом
// открывается в режиме редактирования и удаляется при отмене.
type LinkPopover struct {
	State        PopoverState
	Path         edtypes.Path
	Editing      bool
	Text         string
	URL          string
	SaveDisabled bool

	session   *editor.Session
	validator *validation.DocumentValidator
}

// NewLinkPopover попап для ссылки по пути path. nil, если по пути нет ссылки.
func NewLinkPopover(s *editor.Session, v *validation.DocumentValidator, path edtypes.Path) *LinkPopover {
	n, ok := s.Node(path)
	if !ok || n.Type != edtypes.TypeLink {
		return nil
	}
	p := &LinkPopover{
		Path:      path.Copy(),
		Editing:   n.URL() == "",
		Text:      n.String(),
		URL:       n.URL(),
		session:   s,
		validator: v,
	}
	if s.LastInsertedLinkPath != nil && s.LastInsertedLinkPath.Equal(path) {
		p.State = PopoverOpenOnInsert
		// путь больше не нужен, иначе попап откроется снова
		s.LastInsertedLinkPath = nil
	}
	return p
}

func (p *LinkPopover) IsOpen() bool {
	return p.State != PopoverClosed
}

// Open открывает попап по клику на ссылку.
func (p *LinkPopover) Open() {
	p.State = PopoverOpenOnClick
}

// StartEditing переключает попап из просмотра в редактирование.
func (p *LinkPopover) StartEditing() {
	p.Editing = true
}

func (p *LinkPopover) SetText(text string) {
	p.Text = text
}

// SetURL меняет адрес и блокирует сохранение для некорректного адреса.
func (p *LinkPopover) SetURL(url string) {
	p.URL = url
	p.SaveDisabled = p.validator != nil && !p.validator.ValidURL(url)
}

// Save записывает адрес и текст в ссылку и закрывает попап.
// false, если сохранение заблокировано.
func (p *LinkPopover) Save() bool {
	if p.SaveDisabled || p.URL == "" {
		return false
	}
	s := p.session
	s.Do(func() {
		// выделяется вся ссылка, чтобы заменить весь ее текст
		s.Select(p.Path)
		editLink(s, p.URL, p.Text)
	})
	p.Editing = false
	p.State = PopoverClosed
	s.LastInsertedLinkPath = nil
	return true
}

// Cancel закрывает попап. Ссылка без адреса удаляется.
func (p *LinkPopover) Cancel() {
	p.Editing = false
	if n, ok := p.session.Node(p.Path); ok && n.Type == edtypes.TypeLink && n.URL() == "" {
		p.Remove()
		return
	}
	p.State = PopoverClosed
}

// Remove снимает ссылку, оставляя ее текст.
func (p *LinkPopover) Remove() {
	s := p.session
	s.Do(func() {
		s.Select(p.Path)
		removeLink(s)
	})
	p.State = PopoverClosed
	p.Editing = false
}
