// Пакет blocks описывает типы блоков редактора и правила их редактирования.
//
// Каждый тип блока представлен записью Block в реестре Registry: как блок отрисовывается,
// как узел распознается, как в него конвертируется текущий блок и как блок реагирует на
// Enter, Backspace и Tab. Editor связывает реестр с сессией редактирования и разбирает
// клавиатурный ввод, вставку из буфера и команды панели инструментов.
package blocks

import (
	"slices"

	"github.com/aisa-it/blocks/internal/blocks/editor"
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
	"github.com/aisa-it/blocks/internal/blocks/render"
)

// Block набор поведений одного типа блока.
type Block struct {
	Key   string
	Type  edtypes.NodeType
	Label string

	// Render строит представление узла по уже отрисованным детям.
	Render func(n *edtypes.Node, children []*render.ViewNode) *render.ViewNode
	// MatchNode нужен только если несколько записей делят один тег.
	MatchNode func(n *edtypes.Node) bool

	// HandleConvert превращает текущий блок в блок этого типа и возвращает его путь.
	// nil путь означает, что конвертация не выполнялась.
	HandleConvert      func(s *editor.Session) edtypes.Path
	HandleEnterKey     func(s *editor.Session)
	HandleBackspaceKey func(s *editor.Session, e *KeyEvent)
	HandleTab          func(s *editor.Session)

	// AssetKinds типы файлов медиатеки; такие блоки вставляются через выбор файлов.
	AssetKinds []string

	Snippets           []string
	IsDraggable        func(n *edtypes.Node) bool
	IsInBlocksSelector bool
}

// Matches проверяет, описывает ли запись узел n.
func (b *Block) Matches(n *edtypes.Node) bool {
	if n == nil || n.Type != b.Type {
		return false
	}
	return b.MatchNode == nil || b.MatchNode(n)
}

// Draggable блоки перетаскиваются, если не задано иное.
func (b *Block) Draggable(n *edtypes.Node) bool {
	if b.IsDraggable == nil {
		return true
	}
	return b.IsDraggable(n)
}

// Registry реестр блоков в порядке регистрации.
type Registry struct {
	blocks map[string]*Block
	order  []string
	byType map[edtypes.NodeType][]*Block

	codeLanguage string
}

type RegistryOption func(*Registry)

// WithCodeLanguage язык, который получает блок кода при конвертации.
func WithCodeLanguage(lang string) RegistryOption {
	return func(r *Registry) {
		if lang != "" {
			r.codeLanguage = lang
		}
	}
}

// NewRegistry пустой реестр. Повторная регистрация ключа заменяет запись.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		blocks:       make(map[string]*Block),
		byType:       make(map[edtypes.NodeType][]*Block),
		codeLanguage: edtypes.DefaultCodeLanguage,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultRegistry реестр со всеми блоками документа.
func DefaultRegistry(opts ...RegistryOption) *Registry {
	r := NewRegistry(opts...)
	r.Register(paragraphBlock())
	for level := 1; level <= 6; level++ {
		r.Register(headingBlock(level))
	}
	r.Register(listBlock(edtypes.ListOrdered))
	r.Register(listBlock(edtypes.ListUnordered))
	r.Register(listItemBlock())
	r.Register(linkBlock())
	r.Register(quoteBlock())
	r.Register(codeBlock(r.codeLanguage))
	r.Register(imageBlock())
	r.Register(fileBlock())
	return r
}

func (r *Registry) Register(b *Block) {
	if old, ok := r.blocks[b.Key]; ok {
		r.byType[old.Type] = slices.DeleteFunc(r.byType[old.Type], func(x *Block) bool { return x == old })
	} else {
		r.order = append(r.order, b.Key)
	}
	r.blocks[b.Key] = b
	r.byType[b.Type] = append(r.byType[b.Type], b)
}

func (r *Registry) Get(key string) (*Block, bool) {
	b, ok := r.blocks[key]
	return b, ok
}

// Blocks записи в порядке регистрации.
func (r *Registry) Blocks() []*Block {
	res := make([]*Block, 0, len(r.order))
	for _, k := range r.order {
		res = append(res, r.blocks[k])
	}
	return res
}

// ForNode запись для узла. Поиск по тегу, перебор предикатов только для общих тегов.
func (r *Registry) ForNode(n *edtypes.Node) (*Block, bool) {
	if n == nil {
		return nil, false
	}
	candidates := r.byType[n.Type]
	if len(candidates) == 1 {
		return candidates[0], true
	}
	for _, b := range candidates {
		if b.Matches(n) {
			return b, true
		}
	}
	return nil, false
}

// Selector записи, доступные в выпадающем списке блоков.
func (r *Registry) Selector() []*Block {
	var res []*Block
	for _, b := range r.Blocks() {
		if b.IsInBlocksSelector {
			res = append(res, b)
		}
	}
	return res
}

// BySnippet запись, у которой text зарегистрирован как сниппет.
func (r *Registry) BySnippet(text string) (*Block, bool) {
	for _, b := range r.Blocks() {
		if slices.Contains(b.Snippets, text) && b.HandleConvert != nil {
			return b, true
		}
	}
	return nil, false
}
