// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContext_Teardown(t *testing.T) {
	t.Run("will be a no-op if nothing was registered", func(t *testing.T) {
		lc := &Context{}
		require.Nil(t, lc.Teardown().Run(context.Background()))
	})

	t.Run("will run every hook even if one fails", func(t *testing.T) {
		lc := &Context{}

		hookErr := errors.New("failed")
		var ran []int
		lc.OnTeardown(HookFunc(func(ctx context.Context) error {
			ran = append(ran, 1)
			return nil
		}))
		lc.OnTeardown(HookFunc(func(ctx context.Context) error {
			ran = append(ran, 2)
			return hookErr
		}))

		err := lc.Teardown().Run(context.Background())
		require.ErrorIs(t, err, hookErr)
		require.Equal(t, []int{2, 1}, ran)
	})

	t.Run("will allow concurrent registration", func(t *testing.T) {
		lc := &Context{}

		var mu sync.Mutex
		count := 0

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				lc.OnTeardown(HookFunc(func(ctx context.Context) error {
					mu.Lock()
					defer mu.Unlock()
					count++
					return nil
				}))
			}()
		}
		wg.Wait()

		require.Nil(t, lc.Teardown().Run(context.Background()))
		require.Equal(t, 10, count)
	})
}

func TestFromContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	require.False(t, ok)

	lc := &Context{}
	got, ok := FromContext(NewContext(context.Background(), lc))
	require.True(t, ok)
	require.Same(t, lc, got)
}

func TestMultiHook(t *testing.T) {
	shutdownErr := errors.New("shutdown failed")
	flushErr := errors.New("flush failed")

	testCases := []struct {
		Name  string
		Hooks []Hook
		Errs  []error
	}{
		{
			Name: "no hooks",
		},
		{
			Name: "one failure",
			Hooks: []Hook{
				HookFunc(func(ctx context.Context) error { return nil }),
				HookFunc(func(ctx context.Context) error { return shutdownErr }),
			},
			Errs: []error{shutdownErr},
		},
		{
			Name: "every failure is kept",
			Hooks: []Hook{
				HookFunc(func(ctx context.Context) error { return flushErr }),
				HookFunc(func(ctx context.Context) error { return shutdownErr }),
			},
			Errs: []error{flushErr, shutdownErr},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			err := MultiHook(testCase.Hooks...).Run(context.Background())
			if len(testCase.Errs) == 0 {
				require.Nil(t, err)
				return
			}
			for _, want := range testCase.Errs {
				require.ErrorIs(t, err, want)
			}
		})
	}
}
