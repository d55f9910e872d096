package edtypes_test

import (
	"fmt"
	"strings"

	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

// ExampleParseDocument демонстрирует чтение сохраненного значения редактора.
func ExampleParseDocument() {
	doc, err := edtypes.ParseDocument(strings.NewReader(`[
		{"type":"paragraph","children":[
			{"type":"text","text":"Привет","bold":true},
			{"type":"text","text":" мир"}
		]}
	]`))
	if err != nil {
		fmt.Printf("Ошибка парсинга: %v\n", err)
		return
	}

	fmt.Printf("Блоков: %d, текст: %q\n", len(doc.Children), doc.Children[0].String())

	// Output:
	// Блоков: 1, текст: "Привет мир"
}
