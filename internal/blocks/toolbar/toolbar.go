// Пакет toolbar раскладывает кнопки панели инструментов: кнопки, которые не помещаются
// в ширину панели, переносятся в меню "еще", стоящее сразу после последней видимой.
package toolbar

// Item кнопка панели.
type Item struct {
	Key      string
	Label    string
	Active   bool
	Disabled bool
}

// Overflow граница видимых кнопок. Кнопки после LastVisibleIndex показываются в меню.
// Видимость сообщает слой отрисовки, как наблюдатель пересечения, а не измерение.
type Overflow struct {
	total       int
	lastVisible int
}

func NewOverflow(total int) *Overflow {
	o := &Overflow{total: total}
	o.Reset()
	return o
}

// Reset снова показывает все кнопки. Вызывается перед раскладкой новой ширины.
func (o *Overflow) Reset() {
	o.lastVisible = o.total - 1
}

func (o *Overflow) LastVisibleIndex() int {
	return o.lastVisible
}

// HasMenu часть кнопок перенесена в меню.
func (o *Overflow) HasMenu() bool {
	return o.lastVisible < o.total-1
}

// ItemVisibilityChanged первая непоместившаяся кнопка становится границей,
// ставшая видимой кнопка расширяет видимую часть.
func (o *Overflow) ItemVisibilityChanged(index int, visible bool) {
	if index < 0 || index >= o.total {
		return
	}
	if visible {
		o.lastVisible = max(o.lastVisible, index)
		return
	}
	if index <= o.lastVisible {
		o.lastVisible = index - 1
	}
}

// MenuVisibilityChanged меню "еще" не поместилось: в него уходит еще одна кнопка.
func (o *Overflow) MenuVisibilityChanged(visible bool) {
	if visible || o.lastVisible < 0 {
		return
	}
	o.lastVisible--
}

// Fit раскладывает кнопки с шириной widths в панель ширины width, menuWidth ширина меню.
// Повторяет события видимости, которые выдал бы слой отрисовки.
func (o *Overflow) Fit(widths []int, menuWidth, width int) {
	o.Reset()
	used := 0
	for i := 0; i < o.total && i < len(widths); i++ {
		used += widths[i]
		if used > width {
			o.ItemVisibilityChanged(i, false)
			break
		}
	}
	for o.HasMenu() && o.lastVisible >= 0 && o.visibleWidth(widths)+menuWidth > width {
		o.MenuVisibilityChanged(false)
	}
}

func (o *Overflow) visibleWidth(widths []int) int {
	w := 0
	for i := 0; i <= o.lastVisible && i < len(widths); i++ {
		w += widths[i]
	}
	return w
}

// Split делит кнопки на видимые и спрятанные в меню.
func (o *Overflow) Split(items []Item) (visible, menu []Item) {
	cut := min(o.lastVisible+1, len(items))
	if cut < 0 {
		cut = 0
	}
	return items[:cut], items[cut:]
}
