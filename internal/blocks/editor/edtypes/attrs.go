package edtypes

import (
	"encoding/json"
	"maps"
)

// Media описание файла из медиатеки, хранится в атрибутах image и file.
type Media struct {
	Name             string         `json:"name,omitempty"`
	AlternativeText  string         `json:"alternativeText,omitempty"`
	URL              string         `json:"url"`
	Caption          string         `json:"caption,omitempty"`
	Width            int            `json:"width,omitempty"`
	Height           int            `json:"height,omitempty"`
	Formats          map[string]any `json:"formats,omitempty"`
	Hash             string         `json:"hash,omitempty"`
	Ext              string         `json:"ext,omitempty"`
	Mime             string         `json:"mime,omitempty"`
	Size             float64        `json:"size,omitempty"`
	PreviewURL       string         `json:"previewUrl,omitempty"`
	Provider         string         `json:"provider,omitempty"`
	ProviderMetadata map[string]any `json:"provider_metadata,omitempty"`
	CreatedAt        string         `json:"createdAt,omitempty"`
	UpdatedAt        string         `json:"updatedAt,omitempty"`
}

func (m *Media) Clone() *Media {
	if m == nil {
		return nil
	}
	c := *m
	if m.Formats != nil {
		c.Formats = maps.Clone(m.Formats)
	}
	if m.ProviderMetadata != nil {
		c.ProviderMetadata = maps.Clone(m.ProviderMetadata)
	}
	return &c
}

// getAttrString безопасно извлекает строковый атрибут из map.
func getAttrString(attrs map[string]any, key string) string {
	if attrs == nil {
		return ""
	}
	switch v := attrs[key].(type) {
	case string:
		return v
	case ListFormat:
		return string(v)
	}
	return ""
}

// getAttrInt безопасно извлекает целочисленный атрибут из map.
func getAttrInt(attrs map[string]any, key string) int {
	if attrs == nil {
		return 0
	}
	switch v := attrs[key].(type) {
	case int:
		return v
	case float64:
		// Может быть float64 из JSON
		return int(v)
	case json.Number:
		i, _ := v.Int64()
		return int(i)
	}
	return 0
}

// getAttrBool безопасно извлекает булевый атрибут из map.
func getAttrBool(attrs map[string]any, key string) bool {
	if attrs == nil {
		return false
	}
	b, ok := attrs[key].(bool)
	return ok && b
}

func getAttrMedia(attrs map[string]any, key string) *Media {
	if attrs == nil {
		return nil
	}
	switch v := attrs[key].(type) {
	case *Media:
		return v
	case Media:
		return &v
	case map[string]any:
		// Атрибут пришел из произвольного JSON
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		var m Media
		if err := json.Unmarshal(b, &m); err != nil {
			return nil
		}
		return &m
	}
	return nil
}
