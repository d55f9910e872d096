// Ошибки команд CLI с трассой мест, через которые они прошли, и контекстом
// (запись, формат, файл) для одной записи в лог на выходе из команды.
package stack_error

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

type TrackerError struct {
	attrs []slog.Attr
	stack []string
	cause error
}

// TrackErrorStack добавляет место вызова к трассе err. Если err уже TrackerError
// (в том числе обернутая), трасса продолжается в нем.
func TrackErrorStack(err error) *TrackerError {
	var te *TrackerError
	if !errors.As(err, &te) {
		te = &TrackerError{cause: err}
	}
	te.stack = append(te.stack, callerFrame(2))
	return te
}

// AddContext первое значение ключа сохраняется, повторные игнорируются.
func (te *TrackerError) AddContext(k string, v any) *TrackerError {
	for _, a := range te.attrs {
		if a.Key == k {
			return te
		}
	}
	te.attrs = append(te.attrs, slog.Any(k, v))
	return te
}

// Context значение ключа контекста.
func (te *TrackerError) Context(k string) (any, bool) {
	for _, a := range te.attrs {
		if a.Key == k {
			return a.Value.Any(), true
		}
	}
	return nil, false
}

// Stack места вызова от самого глубокого к внешнему, в виде "file.go:line pkg.func".
func (te *TrackerError) Stack() []string {
	return te.stack
}

func (te *TrackerError) Error() string {
	if te.cause != nil {
		return te.cause.Error()
	}
	return "TrackerError"
}

func (te *TrackerError) Unwrap() error {
	return te.cause
}

// GetError пишет ошибку команды в лог одной записью: attrs, контекст ошибки, трасса.
func GetError(err error, attrs ...any) {
	var te *TrackerError
	if !errors.As(err, &te) {
		attrs = append(attrs, slog.String("raw_error", err.Error()))
		slog.Error("Command failed", attrs...)
		return
	}

	for _, a := range te.attrs {
		attrs = append(attrs, a)
	}
	attrs = append(attrs,
		slog.String("trace", strings.Join(te.stack, " <- ")),
		slog.String("err", te.Error()),
	)
	slog.Error("Command failed", attrs...)
}

func callerFrame(skip int) string {
	pc, path, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	_, file := filepath.Split(path)
	frame := fmt.Sprintf("%s:%d", file, line)
	if fn := runtime.FuncForPC(pc); fn != nil {
		name := fn.Name()
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		frame += " " + name
	}
	return frame
}
