// Пакет editor содержит сессию редактирования документа: применение низкоуровневых операций,
// пересчет выделения и ссылок на пути, примитивы изменения дерева и нормализацию.
//
// Все изменения дерева проходят через Session.Apply. После каждой операции выделение
// пересчитывается синхронно, затем в порядке регистрации вызываются наблюдатели.
package editor

import (
	"log/slog"

	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

// Observer получает каждую примененную операцию.
type Observer interface {
	Observe(s *Session, op Operation)
}

// ObserverFunc адаптер функции к Observer.
type ObserverFunc func(s *Session, op Operation)

func (f ObserverFunc) Observe(s *Session, op Operation) {
	f(s, op)
}

// ChangeFunc получает снимок документа после команды, изменившей дерево.
type ChangeFunc func(doc *edtypes.Document)

// Session владеет деревом документа, выделением и временными флагами редактора.
type Session struct {
	root      *edtypes.Node
	selection *edtypes.Range

	// Модификаторы, которые получит следующий введенный текст при свернутом выделении.
	marks map[edtypes.Mark]bool

	// LastInsertedLinkPath путь последней вставленной ссылки, для нее открывается попап.
	LastInsertedLinkPath edtypes.Path
	// ShouldSaveLinkPath false для программной вставки ссылок (вставка URL из буфера).
	ShouldSaveLinkPath bool

	observers []Observer
	listeners []ChangeFunc
	pointRefs []*PointRef
	pathRefs  []*PathRef

	operations []Operation
	depth      int
	strict     bool
	logger     *slog.Logger
}

type Option func(*Session)

// WithStrict ошибочные операции вызывают панику вместо пропуска.
func WithStrict(strict bool) Option {
	return func(s *Session) {
		s.strict = strict
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

func WithObserver(o Observer) Option {
	return func(s *Session) {
		s.observers = append(s.observers, o)
	}
}

// NewSession создает сессию над копией документа. nil означает пустое состояние.
func NewSession(doc *edtypes.Document, opts ...Option) *Session {
	if doc == nil {
		doc = edtypes.DefaultDocument()
	}
	doc = doc.Clone()
	s := &Session{
		root:   &edtypes.Node{Type: edtypes.TypeRoot, Children: doc.Children},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.withoutNotify(s.normalize)
	return s
}

// Observe добавляет наблюдателя операций в конец списка.
func (s *Session) Observe(o Observer) {
	s.observers = append(s.observers, o)
}

// OnChange подписывает на изменения документа.
func (s *Session) OnChange(f ChangeFunc) {
	s.listeners = append(s.listeners, f)
}

// Root корень дерева. Изменять его напрямую нельзя, только через операции.
func (s *Session) Root() *edtypes.Node {
	return s.root
}

// Children блоки верхнего уровня.
func (s *Session) Children() []*edtypes.Node {
	return s.root.Children
}

// Document снимок текущего документа.
func (s *Session) Document() *edtypes.Document {
	return (&edtypes.Document{Children: s.root.Children}).Clone()
}

// Value документ для сохранения: nil для пустого состояния.
func (s *Session) Value() []*edtypes.Node {
	return s.Document().Normalized()
}

// Selection копия текущего выделения или nil.
func (s *Session) Selection() *edtypes.Range {
	if s.selection == nil {
		return nil
	}
	r := s.selection.Copy()
	return &r
}

func (s *Session) HasSelection() bool {
	return s.selection != nil
}

// Operations операции текущей команды.
func (s *Session) Operations() []Operation {
	return s.operations
}

// Apply единственная точка изменения дерева и выделения.
func (s *Session) Apply(op Operation) {
	if err := applyToTree(s.root, op); err != nil {
		if s.strict {
			panic(err)
		}
		s.logger.Error("Drop invalid editor operation", "op", op.String(), "err", err)
		return
	}

	s.transformSelection(op)
	s.transformRefs(op)
	s.operations = append(s.operations, op)

	if op.Type == OpSetSelection {
		s.marks = nil
	}

	for _, o := range s.observers {
		o.Observe(s, op)
	}
}

func (s *Session) transformSelection(op Operation) {
	if op.Type == OpSetSelection {
		if op.NewSelection == nil {
			s.selection = nil
		} else {
			r := op.NewSelection.Copy()
			s.selection = &r
		}
		return
	}
	if s.selection == nil {
		return
	}

	sel := s.selection.Copy()
	for _, p := range []*edtypes.Point{&sel.Anchor, &sel.Focus} {
		res, ok := TransformPoint(*p, op, AffinityForward)
		if ok {
			*p = res
			continue
		}
		// точка была внутри удаленного узла
		fallback, found := s.nearestText(op.Path)
		if !found {
			s.selection = nil
			return
		}
		*p = fallback
	}
	s.selection = &sel
}

// nearestText подбирает текст рядом с удаленным путем: предыдущий текст,
// если он ближе по дереву, иначе следующий.
func (s *Session) nearestText(removed edtypes.Path) (edtypes.Point, bool) {
	var prev, next *textEntry
	for _, e := range s.texts() {
		if e.path.Compare(removed) == -1 {
			prev = &e
			continue
		}
		next = &e
		break
	}

	preferNext := false
	if prev != nil && next != nil {
		if next.path.Equal(removed) {
			preferNext = !next.path.HasPrevious()
		} else {
			preferNext = len(prev.path.Common(removed)) < len(next.path.Common(removed))
		}
	}

	switch {
	case prev != nil && !preferNext:
		return edtypes.Point{Path: prev.path, Offset: edtypes.RuneLen(prev.node.Text)}, true
	case next != nil:
		return edtypes.Point{Path: next.path, Offset: 0}, true
	}
	return edtypes.Point{}, false
}

// batch выполняет команду; на внешнем уровне нормализует дерево и уведомляет подписчиков.
func (s *Session) batch(f func()) {
	s.depth++
	defer func() {
		s.depth--
		if s.depth > 0 {
			return
		}
		s.normalize()
		s.ensureSelection()
		changed := false
		for _, op := range s.operations {
			if !op.IsSelection() {
				changed = true
				break
			}
		}
		s.operations = s.operations[:0]
		if changed && len(s.listeners) > 0 {
			doc := s.Document()
			for _, l := range s.listeners {
				l(doc)
			}
		}
	}()
	f()
}

// Do выполняет несколько примитивов как одну команду.
func (s *Session) Do(f func()) {
	s.batch(f)
}

func (s *Session) withoutNotify(f func()) {
	listeners := s.listeners
	s.listeners = nil
	defer func() { s.listeners = listeners }()
	s.batch(f)
}

// ensureSelection выделение всегда указывает на существующие текстовые листья.
func (s *Session) ensureSelection() {
	if s.selection == nil {
		return
	}
	sel := *s.selection
	fixed := false
	for _, p := range []*edtypes.Point{&sel.Anchor, &sel.Focus} {
		n, ok := edtypes.Get(s.root, p.Path)
		if ok && n.IsText() {
			if p.Offset > edtypes.RuneLen(n.Text) {
				p.Offset = edtypes.RuneLen(n.Text)
				fixed = true
			}
			continue
		}
		fixed = true
		if ok {
			*p = s.start(p.Path)
			continue
		}
		fallback, found := s.nearestText(p.Path)
		if !found {
			s.selection = nil
			return
		}
		*p = fallback
	}
	if fixed {
		s.logger.Debug("Selection repaired", "selection", sel)
	}
	s.selection = &sel
}
