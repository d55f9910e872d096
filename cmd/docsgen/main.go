// Генерация справочника редактора Blocks в формате Markdown.
// Описывает зарегистрированные блоки, сниппеты быстрого ввода, модификаторы текста и горячие клавиши.
//
// Основные возможности:
//   - Таблица блоков реестра: ключ, тег узла, название, сниппеты, наличие в меню выбора блоков.
//   - Таблица модификаторов с горячими клавишами и тегами отрисовки.
//   - Таблица поведения клавиш в блоках.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/aisa-it/blocks/internal/blocks"
)

var keyBindings = [][]string{
	{"Enter", "paragraph, heading", "Новый параграф после блока, заголовок делится по курсору"},
	{"Enter", "list", "Новый элемент списка; пустой элемент выходит из списка или на уровень выше"},
	{"Enter", "code", "Перевод строки; пустая последняя строка дважды выходит из блока кода"},
	{"Enter", "quote", "Перевод строки; пустая строка в конце выходит из цитаты"},
	{"Enter", "image, file", "Новый параграф после вложения"},
	{"Shift+Enter", "все текстовые блоки", "Перевод строки внутри блока"},
	{"Backspace", "list", "В начале элемента: на уровень выше или превращение в параграф"},
	{"Backspace", "image, file", "Удаляет вложение"},
	{"Tab", "list", "Вложить элемент в список предыдущего элемента"},
	{"Escape", "все", "Снять выделение"},
	{"Space", "paragraph", "Применить сниппет в начале параграфа"},
}

// main - Считывает реестр блоков и сохраняет справочник в указанный файл.
//
// Параметры:
//   - out: путь к файлу, куда будет сохранен справочник.
func main() {
	outputMd := flag.String("out", "docs/blocks.md", "Path to output md")
	flag.Parse()

	slog.Info("Generate blocks docs", "out", *outputMd)

	ff, err := os.Create(*outputMd)
	if err != nil {
		slog.Error("Create docs file", "err", err)
		os.Exit(1)
	}
	defer ff.Close()

	if err := generate(ff, blocks.DefaultRegistry()); err != nil {
		slog.Error("Generate docs fail", "err", err)
		os.Exit(1)
	}
	slog.Info("Docs generated")
}

func generate(w io.Writer, registry *blocks.Registry) error {
	return md.NewMarkdown(w).
		H1("Справочник редактора").
		PlainText("Блоки, сниппеты, модификаторы и горячие клавиши редактора.").
		H2("Блоки").
		CustomTable(md.TableSet{
			Header: []string{"Ключ", "Тег", "Название", "Сниппеты", "В меню"},
			Rows:   blockRows(registry),
		}, md.TableOptions{
			AutoWrapText: false,
		}).
		H2("Модификаторы").
		CustomTable(md.TableSet{
			Header: []string{"Модификатор", "Клавиши", "Тег"},
			Rows:   modifierRows(),
		}, md.TableOptions{
			AutoWrapText: false,
		}).
		H2("Клавиши").
		CustomTable(md.TableSet{
			Header: []string{"Клавиша", "Блок", "Действие"},
			Rows:   keyBindings,
		}, md.TableOptions{
			AutoWrapText: false,
		}).
		Build()
}

func blockRows(registry *blocks.Registry) [][]string {
	var rows [][]string
	for _, b := range registry.Blocks() {
		snippets := make([]string, 0, len(b.Snippets))
		for _, s := range b.Snippets {
			snippets = append(snippets, md.Code(s))
		}
		inSelector := ""
		if b.IsInBlocksSelector {
			inSelector = "да"
		}
		rows = append(rows, []string{
			md.Bold(b.Key),
			md.Code(string(b.Type)),
			b.Label,
			strings.Join(snippets, " "),
			inSelector,
		})
	}
	return rows
}

func modifierRows() [][]string {
	var rows [][]string
	for _, m := range blocks.Modifiers {
		key := "Ctrl/Cmd+" + strings.ToUpper(m.Key)
		if m.Key != strings.ToLower(m.Key) {
			key = "Ctrl/Cmd+Shift+" + m.Key
		}
		rows = append(rows, []string{md.Italic(m.Label), key, md.Code(fmt.Sprintf("<%s>", m.Tag))})
	}
	return rows
}
