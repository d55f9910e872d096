package edtypes

import "unicode/utf8"

// RuneLen длина текста в рунах, в тех же единицах что и Point.Offset.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Substr возвращает подстроку по рунным смещениям [from, to).
func Substr(s string, from, to int) string {
	runes := []rune(s)
	from = clamp(from, 0, len(runes))
	to = clamp(to, from, len(runes))
	return string(runes[from:to])
}

// SplitAt делит текст по рунному смещению.
func SplitAt(s string, offset int) (string, string) {
	runes := []rune(s)
	offset = clamp(offset, 0, len(runes))
	return string(runes[:offset]), string(runes[offset:])
}

// InsertAt вставляет text по рунному смещению.
func InsertAt(s string, offset int, text string) string {
	before, after := SplitAt(s, offset)
	return before + text + after
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
