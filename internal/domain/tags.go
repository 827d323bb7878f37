package domain

import (
	"fmt"
	"strings"
)

// tagTable хранит двустороннее соответствие "строковый тег каталога <-> enum".
// Пустая строка всегда соответствует нулевому значению (None).
type tagTable[T ~uint8] struct {
	toTag   map[T]string
	fromTag map[string]T
}

func newTagTable[T ~uint8](names map[T]string) tagTable[T] {
	t := tagTable[T]{
		toTag:   names,
		fromTag: make(map[string]T, len(names)),
	}
	for v, s := range names {
		t.fromTag[s] = v
	}
	return t
}

// parse нечувствителен к регистру, как и ParseAction.
func (t tagTable[T]) parse(s string) (T, bool) {
	if s == "" {
		return 0, true
	}
	v, ok := t.fromTag[strings.ToUpper(strings.TrimSpace(s))]
	return v, ok
}

func (t tagTable[T]) name(v T) string {
	if v == 0 {
		return ""
	}
	if s, ok := t.toTag[v]; ok {
		return s
	}
	return "UNKNOWN"
}

func (t tagTable[T]) unmarshal(dst *T, text []byte, kind string) error {
	v, ok := t.parse(string(text))
	if !ok {
		return fmt.Errorf("unknown %s tag %q", kind, string(text))
	}
	*dst = v
	return nil
}
