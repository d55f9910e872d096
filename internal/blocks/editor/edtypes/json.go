package edtypes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
)

// UnmarshalJSON разбирает узел в формате хранения: {"type": ..., атрибуты, "text" | "children"}.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var t string
	if err := json.Unmarshal(raw["type"], &t); err != nil {
		return fmt.Errorf("node type: %w", err)
	}
	n.Type = NodeType(t)
	n.Attrs = nil
	n.Children = nil
	n.Text = ""

	for key, value := range raw {
		switch key {
		case "type":
		case "text":
			if err := json.Unmarshal(value, &n.Text); err != nil {
				return fmt.Errorf("text of %s node: %w", n.Type, err)
			}
		case "children":
			children, err := parseChildren(value)
			if err != nil {
				return err
			}
			n.Children = children
		default:
			v, err := parseAttr(key, value)
			if err != nil {
				return fmt.Errorf("attribute %q of %s node: %w", key, n.Type, err)
			}
			n.SetAttr(key, v)
		}
	}
	return nil
}

// parseChildren пропускает узлы неизвестных типов.
func parseChildren(data json.RawMessage) ([]*Node, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("children: %w", err)
	}
	children := make([]*Node, 0, len(raws))
	for _, raw := range raws {
		child := new(Node)
		if err := json.Unmarshal(raw, child); err != nil {
			return nil, err
		}
		if !slices.Contains(KnownTypes, child.Type) {
			slog.Warn("Unknown node type", "type", child.Type)
			continue
		}
		children = append(children, child)
	}
	return children, nil
}

// parseAttr приводит значение атрибута к типу, который ожидают аксессоры Node.
func parseAttr(key string, data json.RawMessage) (any, error) {
	switch key {
	case AttrImage, AttrFile:
		if string(data) == "null" {
			return nil, nil
		}
		m := new(Media)
		if err := json.Unmarshal(data, m); err != nil {
			return nil, err
		}
		return m, nil
	case AttrLevel, AttrIndentLevel:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		return int(f), nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// MarshalJSON пишет узел с постоянным порядком ключей: type, атрибуты по алфавиту, text или children.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	t, _ := json.Marshal(string(n.Type))
	buf.Write(t)

	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		v, err := json.Marshal(n.Attrs[k])
		if err != nil {
			return nil, fmt.Errorf("attribute %q of %s node: %w", k, n.Type, err)
		}
		key, _ := json.Marshal(k)
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(v)
	}

	if n.IsText() {
		text, err := json.Marshal(n.Text)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"text":`)
		buf.Write(text)
	} else {
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		c, err := json.Marshal(children)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"children":`)
		buf.Write(c)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
