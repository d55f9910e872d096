package blocks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aisa-it/blocks/internal/blocks/debounce"
	"github.com/aisa-it/blocks/internal/blocks/editor"
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
	"github.com/aisa-it/blocks/internal/blocks/htmlimport"
	"github.com/aisa-it/blocks/internal/blocks/render"
	"github.com/aisa-it/blocks/internal/blocks/toolbar"
	"github.com/aisa-it/blocks/internal/blocks/validation"
)

var (
	ErrUnknownBlock      = errors.New("unknown block")
	ErrNotConvertible    = errors.New("block cannot be converted to")
	ErrNoMediaLibrary    = errors.New("media library is not configured")
	ErrBlockNotDraggable = errors.New("block is not draggable")
)

// ChangeHandler получает нормализованное значение документа: nil для пустого состояния.
type ChangeHandler func(value []*edtypes.Node)

// Editor связывает сессию редактирования с реестром блоков и разбирает пользовательский ввод.
type Editor struct {
	session    *editor.Session
	registry   *Registry
	media      MediaLibrary
	backendURL string
	validator  *validation.DocumentValidator
	logger     *slog.Logger

	notifier    *debounce.Notifier[[]*edtypes.Node]
	sessionOpts []editor.Option
}

type Option func(*Editor)

func WithRegistry(r *Registry) Option {
	return func(e *Editor) {
		e.registry = r
	}
}

func WithMediaLibrary(m MediaLibrary) Option {
	return func(e *Editor) {
		e.media = m
	}
}

// WithBackendURL адрес, которым дополняются относительные адреса файлов медиатеки.
func WithBackendURL(u string) Option {
	return func(e *Editor) {
		e.backendURL = u
	}
}

// WithChangeHandler подписывает fn на изменения документа с задержкой delay.
func WithChangeHandler(delay time.Duration, fn ChangeHandler) Option {
	return func(e *Editor) {
		e.notifier = debounce.New(delay, func(v []*edtypes.Node) { fn(v) })
	}
}

func WithObserver(o editor.Observer) Option {
	return func(e *Editor) {
		e.sessionOpts = append(e.sessionOpts, editor.WithObserver(o))
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = l
	}
}

// WithStrict ошибочные операции вызывают панику. Для разработки и тестов.
func WithStrict(strict bool) Option {
	return func(e *Editor) {
		e.sessionOpts = append(e.sessionOpts, editor.WithStrict(strict))
	}
}

// New открывает документ для редактирования. nil означает пустое состояние.
func New(doc *edtypes.Document, opts ...Option) *Editor {
	e := &Editor{
		registry:  DefaultRegistry(),
		validator: validation.NewDocumentValidator(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	sessionOpts := append([]editor.Option{
		editor.WithLogger(e.logger),
		editor.WithObserver(LinkPathTracker),
	}, e.sessionOpts...)
	e.session = editor.NewSession(doc, sessionOpts...)
	if e.notifier != nil {
		e.session.OnChange(func(doc *edtypes.Document) {
			e.notifier.Notify(doc.Normalized())
		})
	}
	return e
}

// Session сессия редактирования для низкоуровневых правок.
func (e *Editor) Session() *editor.Session {
	return e.session
}

func (e *Editor) Registry() *Registry {
	return e.registry
}

// Value значение для сохранения: nil для пустого состояния.
func (e *Editor) Value() []*edtypes.Node {
	return e.session.Value()
}

func (e *Editor) Document() *edtypes.Document {
	return e.session.Document()
}

// Flush немедленно доставляет отложенное изменение.
func (e *Editor) Flush() {
	if e.notifier != nil {
		e.notifier.Flush()
	}
}

// Close отменяет отложенное уведомление, после закрытия изменения не доставляются.
func (e *Editor) Close() {
	if e.notifier != nil {
		e.notifier.Close()
	}
}

// SelectedBlock запись реестра для блока верхнего уровня под курсором.
func (e *Editor) SelectedBlock() (*Block, bool) {
	sel := e.session.Selection()
	if sel == nil || len(sel.Anchor.Path) == 0 {
		return nil, false
	}
	children := e.session.Children()
	i := sel.Anchor.Path[0]
	if i < 0 || i >= len(children) {
		return nil, false
	}
	return e.registry.ForNode(children[i])
}

func (e *Editor) paragraph() *Block {
	b, ok := e.registry.Get("paragraph")
	if !ok {
		return paragraphBlock()
	}
	return b
}

// HandleKeyDown обрабатывает нажатие клавиши. Действие по умолчанию (ввод символа,
// удаление) выполняется, если его не отменил обработчик блока.
func (e *Editor) HandleKeyDown(ev *KeyEvent) {
	s := e.session
	if ev.Key == KeyEscape {
		s.Deselect()
		return
	}
	if s.Selection() == nil {
		return
	}
	block, _ := e.SelectedBlock()

	switch {
	case ev.IsCtrlOrCmd() && ev.Shift && (ev.Key == KeyArrowUp || ev.Key == KeyArrowDown):
		dir := 1
		if ev.Key == KeyArrowUp {
			dir = -1
		}
		if e.MoveBlock(dir) {
			ev.PreventDefault()
		}
	case ev.Key == KeyEnter:
		ev.PreventDefault()
		if ev.Shift && (block == nil || block.Type != edtypes.TypeImage) {
			s.InsertText("\n")
			return
		}
		if block != nil && block.HandleEnterKey != nil {
			block.HandleEnterKey(s)
			return
		}
		e.paragraph().HandleEnterKey(s)
	case ev.Key == KeyBackspace:
		if block != nil && block.HandleBackspaceKey != nil {
			block.HandleBackspaceKey(s, ev)
		}
		if !ev.DefaultPrevented() {
			ev.PreventDefault()
			s.DeleteBackward()
		}
	case ev.Key == KeyTab:
		if block != nil && block.HandleTab != nil {
			ev.PreventDefault()
			block.HandleTab(s)
		}
	case ev.IsCtrlOrCmd():
		if m, ok := modifierByKey(ev); ok {
			ev.PreventDefault()
			ToggleModifier(s, m.Mark)
		}
	case ev.Key == KeySpace:
		if e.checkSnippet(ev) {
			return
		}
		ev.PreventDefault()
		e.Type(KeySpace)
	case ev.printable():
		ev.PreventDefault()
		e.Type(ev.Key)
	}
}

// checkSnippet превращает абзац, текст которого равен сниппету, в блок сниппета.
func (e *Editor) checkSnippet(ev *KeyEvent) bool {
	s := e.session
	sel := s.Selection()
	if sel == nil || sel.IsExpanded() {
		return false
	}
	anchor := sel.Anchor
	n, ok := s.Node(anchor.Path)
	if !ok || !n.IsText() || anchor.Path.Last() != 0 {
		return false
	}
	if top := s.Children()[anchor.Path[0]]; top.Type != edtypes.TypeParagraph || len(anchor.Path) != 2 {
		return false
	}
	length := edtypes.RuneLen(n.Text)
	if anchor.Offset != length {
		return false
	}
	block, ok := e.registry.BySnippet(n.Text)
	if !ok {
		return false
	}

	ev.PreventDefault()
	s.Do(func() {
		s.Delete(editor.DeleteOptions{Distance: length, Reverse: true})
		block.HandleConvert(s)
	})
	e.logger.Debug("Snippet converted", "snippet", n.Text, "block", block.Key)
	return true
}

// Type вводит текст в позицию курсора. Пробел в конце ссылки ставится уже после нее.
func (e *Editor) Type(text string) {
	s := e.session
	if text == KeySpace {
		if link, ok := isCursorAtLinkEnd(s); ok {
			s.InsertNodes([]*edtypes.Node{edtypes.NewText(KeySpace)}, editor.InsertOptions{At: link.Path.Next(), Select: true})
			return
		}
	}
	s.InsertText(text)
}

// Convert превращает блок под курсором в блок key. Для вложений открывается медиатека.
func (e *Editor) Convert(ctx context.Context, key string) error {
	b, ok := e.registry.Get(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBlock, key)
	}
	if len(b.AssetKinds) > 0 {
		if e.media == nil {
			return ErrNoMediaLibrary
		}
		assets, err := e.media.Select(ctx, b.AssetKinds)
		if err != nil {
			return fmt.Errorf("select assets: %w", err)
		}
		e.InsertAssets(b.Type, assets)
		return nil
	}
	if b.HandleConvert == nil {
		return fmt.Errorf("%w: %s", ErrNotConvertible, key)
	}
	b.HandleConvert(e.session)
	return nil
}

// InsertAssets заменяет блок под курсором вложениями. t image или file.
func (e *Editor) InsertAssets(t edtypes.NodeType, assets []*edtypes.Media) {
	insertAssets(e.session, t, assets, e.backendURL)
}

func (e *Editor) ToggleModifier(m edtypes.Mark) {
	ToggleModifier(e.session, m)
}

func (e *Editor) IsModifierActive(m edtypes.Mark) bool {
	return IsModifierActive(e.session, m)
}

func (e *Editor) ToggleList(format edtypes.ListFormat) {
	ToggleList(e.session, e.registry, format)
}

func (e *Editor) IsListActive(format edtypes.ListFormat) bool {
	return IsListActive(e.session, format)
}

// SetCodeLanguage меняет язык блока кода под курсором.
func (e *Editor) SetCodeLanguage(language string) {
	SetCodeLanguage(e.session, language)
}

// AddLink вставляет пустую ссылку, для которой сразу откроется попап.
func (e *Editor) AddLink() {
	e.session.ShouldSaveLinkPath = true
	insertLink(e.session, "")
}

// InsertLink вставляет ссылку без открытия попапа.
func (e *Editor) InsertLink(url string) {
	e.session.ShouldSaveLinkPath = false
	insertLink(e.session, url)
}

func (e *Editor) EditLink(url, text string) {
	editLink(e.session, url, text)
}

func (e *Editor) RemoveLink() {
	removeLink(e.session)
}

// IsLinkActive курсор стоит внутри ссылки.
func (e *Editor) IsLinkActive() bool {
	_, ok := e.session.Above(editor.AboveOptions{Match: matchLink})
	return ok
}

// LinkPopover попап ссылки по пути path, nil если по пути нет ссылки.
func (e *Editor) LinkPopover(path edtypes.Path) *LinkPopover {
	return NewLinkPopover(e.session, e.validator, path)
}

// DataTransfer содержимое буфера обмена.
type DataTransfer struct {
	Text string
	HTML string
}

// Paste вставляет содержимое буфера. Адрес становится ссылкой, HTML разбирается в блоки,
// остальное вставляется как текст по строкам.
func (e *Editor) Paste(dt DataTransfer) {
	s := e.session
	if s.Selection() == nil {
		return
	}
	text := strings.ReplaceAll(dt.Text, "\r\n", "\n")

	if url := strings.TrimSpace(text); url != "" && !strings.ContainsAny(url, " \n") &&
		strings.Contains(url, ":") && e.validator.ValidURL(url) {
		s.ShouldSaveLinkPath = false
		insertLink(s, url)
		return
	}

	if dt.HTML != "" {
		nodes, err := htmlimport.ParseHTML(strings.NewReader(dt.HTML))
		if err != nil {
			e.logger.Warn("Parse pasted html", "err", err)
		} else if len(nodes) > 0 {
			e.insertFragment(nodes)
			return
		}
	}
	e.insertPlainText(text)
}

func (e *Editor) insertFragment(nodes []*edtypes.Node) {
	s := e.session
	if len(nodes) == 1 && nodes[0].Type == edtypes.TypeParagraph {
		s.InsertNodes(nodes[0].Children, editor.InsertOptions{})
		return
	}
	s.Do(func() {
		sel := s.Selection()
		if sel == nil {
			return
		}
		if block, ok := s.Block(sel.Anchor); ok && block.Node.Type == edtypes.TypeParagraph &&
			block.Node.IsEmpty() && len(block.Path) == 1 {
			s.RemoveNodes(editor.RemoveOptions{At: block.Path})
			s.InsertNodes(nodes, editor.InsertOptions{At: block.Path, Select: true})
			return
		}
		s.InsertNodes(nodes, editor.InsertOptions{})
	})
}

func (e *Editor) insertPlainText(text string) {
	s := e.session
	if text == "" {
		return
	}
	if block, ok := e.SelectedBlock(); ok && (block.Type == edtypes.TypeCode || block.Type == edtypes.TypeQuote) {
		s.InsertText(text)
		return
	}
	s.Do(func() {
		for i, line := range strings.Split(text, "\n") {
			if i > 0 {
				s.SplitNodes(editor.SplitOptions{Always: true})
			}
			s.InsertText(line)
		}
	})
}

// MoveBlock переносит блок верхнего уровня под курсором на соседнее место.
// false, если блок уже крайний.
func (e *Editor) MoveBlock(dir int) bool {
	s := e.session
	sel := s.Selection()
	if sel == nil {
		return false
	}
	start := sel.Start()
	if len(start.Path) == 0 {
		return false
	}
	from := start.Path[0]
	to := max(0, min(from+dir, len(s.Children())-1))
	if to == from {
		return false
	}
	s.MoveNodes(edtypes.Path{from}, edtypes.Path{to})
	return true
}

// MoveBlockTo переносит блок верхнего уровня при перетаскивании.
func (e *Editor) MoveBlockTo(from, to int) error {
	s := e.session
	children := s.Children()
	if from < 0 || from >= len(children) || to < 0 || to >= len(children) {
		return fmt.Errorf("%w: move %d -> %d", editor.ErrInvalidPath, from, to)
	}
	if b, ok := e.registry.ForNode(children[from]); ok && !b.Draggable(children[from]) {
		return fmt.Errorf("%w: %s", ErrBlockNotDraggable, b.Key)
	}
	s.MoveNodes(edtypes.Path{from}, edtypes.Path{to})
	return nil
}

// ToolbarItems кнопки панели инструментов с состоянием для текущего выделения.
// В изображениях и блоках кода модификаторы и ссылки недоступны.
func (e *Editor) ToolbarItems() []toolbar.Item {
	block, _ := e.SelectedBlock()
	noSelection := !e.session.HasSelection()
	inlineDisabled := noSelection || (block != nil && (block.Type == edtypes.TypeImage || block.Type == edtypes.TypeCode))

	var items []toolbar.Item
	for _, m := range Modifiers {
		items = append(items, toolbar.Item{
			Key:      string(m.Mark),
			Label:    m.Label,
			Active:   e.IsModifierActive(m.Mark),
			Disabled: inlineDisabled,
		})
	}
	items = append(items, toolbar.Item{
		Key:      "link",
		Label:    "Link",
		Active:   e.IsLinkActive(),
		Disabled: inlineDisabled,
	})
	for _, f := range []edtypes.ListFormat{edtypes.ListUnordered, edtypes.ListOrdered} {
		label := ListKey(f)
		if b, ok := e.registry.Get(ListKey(f)); ok {
			label = b.Label
		}
		items = append(items, toolbar.Item{
			Key:      ListKey(f),
			Label:    label,
			Active:   e.IsListActive(f),
			Disabled: noSelection || (block != nil && block.Type == edtypes.TypeImage),
		})
	}
	return items
}

// Render представление текущего документа.
func (e *Editor) Render() []*render.ViewNode {
	return e.registry.Render(e.session.Children())
}

// HTML очищенный HTML текущего документа.
func (e *Editor) HTML() (string, error) {
	return render.HTML(e.Render())
}

// Validate проверяет атрибуты всех узлов документа.
func (e *Editor) Validate() error {
	return e.validator.ValidateDocument(e.session.Document())
}
