package blocks

import "unicode/utf8"

const (
	KeyEnter     = "Enter"
	KeyBackspace = "Backspace"
	KeyTab       = "Tab"
	KeyEscape    = "Escape"
	KeyArrowUp   = "ArrowUp"
	KeyArrowDown = "ArrowDown"
	KeySpace     = " "
)

// KeyEvent нажатие клавиши. Key в формате KeyboardEvent.key: "Enter", "b", "S", " ".
type KeyEvent struct {
	Key   string
	Shift bool
	Ctrl  bool
	Meta  bool
	Alt   bool

	prevented bool
}

// PreventDefault отменяет действие по умолчанию (удаление символа, ввод текста).
func (e *KeyEvent) PreventDefault() {
	e.prevented = true
}

func (e *KeyEvent) DefaultPrevented() bool {
	return e.prevented
}

// IsCtrlOrCmd Ctrl в Windows/Linux и Cmd в macOS.
func (e *KeyEvent) IsCtrlOrCmd() bool {
	return e.Ctrl || e.Meta
}

// printable клавиша вводит символ.
func (e *KeyEvent) printable() bool {
	return !e.IsCtrlOrCmd() && utf8.RuneCountInString(e.Key) == 1
}
