// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import (
	"context"

	"github.com/spf13/viper"
)

func viperReader[T any](v *viper.Viper, key string, get func(*viper.Viper, string) T) Reader[T] {
	return ReaderFunc[T](func(ctx context.Context) (Value[T], error) {
		if !v.IsSet(key) {
			return Value[T]{}, nil
		}
		return ValueOf(get(v, key)), nil
	})
}

// ViperString reads key from v. Keys with only a default registered count as set.
func ViperString(v *viper.Viper, key string) Reader[string] {
	return viperReader(v, key, (*viper.Viper).GetString)
}
