// Пакет script воспроизводит записанные действия пользователя в редакторе.
//
// Сценарий это JSON массив действий: выделение, ввод текста по символам, нажатия клавиш,
// смена типа блока, модификаторы, списки, ссылки, вставка из буфера и перенос блоков.
package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator"

	"github.com/aisa-it/blocks/internal/blocks"
	"github.com/aisa-it/blocks/internal/blocks/editor/edtypes"
)

const (
	ActionSelect   = "select"
	ActionType     = "type"
	ActionKey      = "key"
	ActionConvert  = "convert"
	ActionModifier = "modifier"
	ActionList     = "list"
	ActionLink     = "link"
	ActionPaste    = "paste"
	ActionMove     = "move"
	ActionMoveTo   = "move-to"
	ActionLanguage = "language"
)

var (
	ErrMissingPoint = errors.New("select needs an anchor point")
	ErrMissingField = errors.New("required field is empty")
	ErrMoveEdge     = errors.New("block is already at the edge")
)

// Action одно действие сценария. Поля используются в зависимости от Action.
type Action struct {
	Action string `json:"action" validate:"required,oneof=select type key convert modifier list link paste move move-to language"`

	Anchor *edtypes.Point `json:"anchor,omitempty"`
	Focus  *edtypes.Point `json:"focus,omitempty"`

	Text string `json:"text,omitempty"`
	HTML string `json:"html,omitempty"`

	Key   string `json:"key,omitempty"`
	Shift bool   `json:"shift,omitempty"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
	Alt   bool   `json:"alt,omitempty"`

	Block    string             `json:"block,omitempty"`
	Mark     edtypes.Mark       `json:"mark,omitempty" validate:"omitempty,oneof=bold italic underline strikethrough code"`
	Format   edtypes.ListFormat `json:"format,omitempty" validate:"omitempty,oneof=ordered unordered"`
	URL      string             `json:"url,omitempty"`
	Language string             `json:"language,omitempty"`

	Dir  int `json:"dir,omitempty" validate:"min=-1,max=1"`
	From int `json:"from,omitempty" validate:"min=0"`
	To   int `json:"to,omitempty" validate:"min=0"`
}

// Parse читает сценарий. Неизвестные поля считаются ошибкой.
func Parse(r io.Reader) ([]Action, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var actions []Action
	if err := dec.Decode(&actions); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return actions, nil
}

// Runner применяет действия к редактору.
type Runner struct {
	validate *validator.Validate
}

func NewRunner() *Runner {
	return &Runner{validate: validator.New()}
}

// Run выполняет действия по порядку и останавливается на первой ошибке.
func (r *Runner) Run(ctx context.Context, e *blocks.Editor, actions []Action) error {
	for i, a := range actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.validate.Struct(a); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
		if err := apply(ctx, e, a); err != nil {
			return fmt.Errorf("action %d (%s): %w", i, a.Action, err)
		}
	}
	return nil
}

func apply(ctx context.Context, e *blocks.Editor, a Action) error {
	switch a.Action {
	case ActionSelect:
		if a.Anchor == nil {
			return ErrMissingPoint
		}
		focus := a.Anchor
		if a.Focus != nil {
			focus = a.Focus
		}
		e.Session().Select(edtypes.Range{Anchor: *a.Anchor, Focus: *focus})
	case ActionType:
		// посимвольно, чтобы срабатывали сниппеты и обработчики блоков
		for _, ch := range a.Text {
			key := string(ch)
			if ch == '\n' {
				key = blocks.KeyEnter
			}
			e.HandleKeyDown(&blocks.KeyEvent{Key: key})
		}
	case ActionKey:
		e.HandleKeyDown(&blocks.KeyEvent{Key: a.Key, Shift: a.Shift, Ctrl: a.Ctrl, Meta: a.Meta, Alt: a.Alt})
	case ActionConvert:
		return e.Convert(ctx, a.Block)
	case ActionModifier:
		if a.Mark == "" {
			return fmt.Errorf("%w: mark", ErrMissingField)
		}
		e.ToggleModifier(a.Mark)
	case ActionList:
		if a.Format == "" {
			return fmt.Errorf("%w: format", ErrMissingField)
		}
		e.ToggleList(a.Format)
	case ActionLink:
		if a.URL == "" {
			e.AddLink()
			return nil
		}
		e.InsertLink(a.URL)
	case ActionPaste:
		e.Paste(blocks.DataTransfer{Text: a.Text, HTML: a.HTML})
	case ActionMove:
		if !e.MoveBlock(a.Dir) {
			return ErrMoveEdge
		}
	case ActionMoveTo:
		return e.MoveBlockTo(a.From, a.To)
	case ActionLanguage:
		e.SetCodeLanguage(a.Language)
	}
	return nil
}
