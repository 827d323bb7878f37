package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Igoorx/godfield-flash/pkg/api"
)

// ErrBadPayload - данные команды не разобрались или не прошли проверку.
var ErrBadPayload = errors.New("bad payload")

// TypedHandlerFunc получает уже разобранный и проверенный payload.
type TypedHandlerFunc[T any] func(ctx Context, payload T) (Result, error)

// EmptyHandlerFunc - для команд без данных (STATE, LEAVE).
type EmptyHandlerFunc func(ctx Context) (Result, error)

// WithPayload разбирает JSON в T строго, без лишних полей, и вызывает Validate,
// если T его реализует.
func WithPayload[T any](handler TypedHandlerFunc[T]) HandlerFunc {
	return func(ctx Context, raw json.RawMessage) (Result, error) {
		payload, err := decode[T](raw)
		if err != nil {
			return Result{}, err
		}
		return handler(ctx, payload)
	}
}

func decode[T any](raw json.RawMessage) (T, error) {
	var payload T
	if len(bytes.TrimSpace(raw)) == 0 {
		return payload, fmt.Errorf("%w: empty", ErrBadPayload)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return payload, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	if v, ok := any(payload).(api.Validator); ok {
		if err := v.Validate(); err != nil {
			return payload, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
	}
	return payload, nil
}

// WithEmptyPayload игнорирует данные команды.
func WithEmptyPayload(handler EmptyHandlerFunc) HandlerFunc {
	return func(ctx Context, _ json.RawMessage) (Result, error) {
		return handler(ctx)
	}
}
