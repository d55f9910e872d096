package edtypes

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
)

// Document последовательность блоков верхнего уровня. Никогда не бывает пустым:
// минимальный документ это один параграф с пустым текстом.
type Document struct {
	Children []*Node
}

func NewDocument(children ...*Node) *Document {
	d := &Document{Children: children}
	if len(d.Children) == 0 {
		d.Children = []*Node{EmptyParagraph()}
	}
	return d
}

// DefaultDocument пустое состояние редактора.
func DefaultDocument() *Document {
	return NewDocument()
}

// IsEmptyState документ из одного параграфа с единственным пустым текстом.
func (d *Document) IsEmptyState() bool {
	if d == nil || len(d.Children) == 0 {
		return true
	}
	if len(d.Children) != 1 {
		return false
	}
	p := d.Children[0]
	return p.Type == TypeParagraph && len(p.Children) == 1 && p.Children[0].IsText() && p.Children[0].Text == ""
}

// Normalized значение для хранения: nil для пустого состояния.
func (d *Document) Normalized() []*Node {
	if d.IsEmptyState() {
		return nil
	}
	return d.Children
}

func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := &Document{Children: make([]*Node, len(d.Children))}
	for i, n := range d.Children {
		c.Children[i] = n.Clone()
	}
	return c
}

// Root корневой узел для адресации путями.
func (d *Document) Root() *Node {
	return &Node{Type: TypeRoot, Children: d.Children}
}

// Get узел по пути.
func (d *Document) Get(path Path) (*Node, bool) {
	return Get(d.Root(), path)
}

// Get возвращает потомка root по пути.
func Get(root *Node, path Path) (*Node, bool) {
	n := root
	for _, i := range path {
		if n == nil || i < 0 || i >= len(n.Children) {
			return nil, false
		}
		n = n.Children[i]
	}
	return n, n != nil
}

// ParseDocument читает документ из JSON. null дает документ по умолчанию.
func ParseDocument(r io.Reader) (*Document, error) {
	d := new(Document)
	if err := json.NewDecoder(r).Decode(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Document) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = *DefaultDocument()
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("document must be an array of blocks: %w", err)
	}
	d.Children = make([]*Node, 0, len(raws))
	for i, raw := range raws {
		n := new(Node)
		if err := json.Unmarshal(raw, n); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		if !slices.Contains(KnownTypes, n.Type) {
			slog.Warn("Unknown node type", "type", n.Type)
			continue
		}
		d.Children = append(d.Children, n)
	}
	if len(d.Children) == 0 {
		d.Children = []*Node{EmptyParagraph()}
	}
	return nil
}

// MarshalJSON пишет null для пустого состояния.
func (d *Document) MarshalJSON() ([]byte, error) {
	children := d.Normalized()
	if children == nil {
		return []byte("null"), nil
	}
	return json.Marshal(children)
}

// Value реализует интерфейс driver.Valuer, пустое состояние хранится как NULL.
func (d Document) Value() (driver.Value, error) {
	if d.IsEmptyState() {
		return nil, nil
	}
	b, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Scan реализует интерфейс sql.Scanner, NULL читается как документ по умолчанию.
func (d *Document) Scan(value interface{}) error {
	if value == nil {
		*d = *DefaultDocument()
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	return d.UnmarshalJSON(bytes)
}

// GormDataType указывает GORM использовать тип JSONB для PostgreSQL колонок.
func (Document) GormDataType() string {
	return "jsonb"
}
