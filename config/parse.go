// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// BoolFromString parses the string value with [strconv.ParseBool].
func BoolFromString(r Reader[string]) Reader[bool] {
	return Map(r, func(ctx context.Context, s string) (bool, error) {
		return strconv.ParseBool(s)
	})
}

// IntFromString parses the string value with [strconv.Atoi].
func IntFromString(r Reader[string]) Reader[int] {
	return Map(r, func(ctx context.Context, s string) (int, error) {
		return strconv.Atoi(s)
	})
}

// Float64FromString parses the string value with [strconv.ParseFloat].
func Float64FromString(r Reader[string]) Reader[float64] {
	return Map(r, func(ctx context.Context, s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ReadFile returns a [Reader] for the contents of the file at path.
// A file which does not exist is treated as unset.
func ReadFile(path string) Reader[[]byte] {
	return ReaderFunc[[]byte](func(ctx context.Context) (Value[[]byte], error) {
		b, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return Value[[]byte]{}, nil
		}
		if err != nil {
			return Value[[]byte]{}, err
		}
		return ValueOf(b), nil
	})
}

// TrimmedString converts bytes to a string with surrounding whitespace removed,
// which is how secrets mounted as files usually need to be read. An empty
// result is treated as unset.
func TrimmedString(r Reader[[]byte]) Reader[string] {
	return ReaderFunc[string](func(ctx context.Context) (Value[string], error) {
		val, err := r.Read(ctx)
		if err != nil {
			return Value[string]{}, err
		}
		b, ok := val.Value()
		if !ok {
			return Value[string]{}, nil
		}
		s := strings.TrimSpace(string(b))
		if s == "" {
			return Value[string]{}, nil
		}
		return ValueOf(s), nil
	})
}

// NonEmpty treats an empty string as unset.
func NonEmpty(r Reader[string]) Reader[string] {
	return ReaderFunc[string](func(ctx context.Context) (Value[string], error) {
		val, err := r.Read(ctx)
		if err != nil {
			return Value[string]{}, err
		}
		if s, ok := val.Value(); !ok || s == "" {
			return Value[string]{}, nil
		}
		return val, nil
	})
}
