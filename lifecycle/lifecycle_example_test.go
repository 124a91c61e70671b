// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package lifecycle

import (
	"context"
	"errors"
	"fmt"
)

func ExampleMultiHook() {
	restore := HookFunc(func(ctx context.Context) error {
		fmt.Println("restore transports")
		return nil
	})

	shutdown := HookFunc(func(ctx context.Context) error {
		fmt.Println("shutdown providers")
		return nil
	})

	release := HookFunc(func(ctx context.Context) error {
		fmt.Println("release registry")
		return nil
	})

	err := MultiHook(restore, shutdown, release).Run(context.Background())
	if err != nil {
		fmt.Println(err)
		return
	}

	// Output: restore transports
	// shutdown providers
	// release registry
}

func ExampleMultiHook_errors() {
	flushErr := errors.New("collector unreachable")
	shutdown := HookFunc(func(ctx context.Context) error {
		return flushErr
	})

	release := HookFunc(func(ctx context.Context) error {
		fmt.Println("release registry")
		return nil
	})

	err := MultiHook(shutdown, release).Run(context.Background())
	fmt.Println(errors.Is(err, flushErr))

	// Output: release registry
	// true
}

func ExampleContext() {
	lc := &Context{}
	ctx := NewContext(context.Background(), lc)

	build := func(ctx context.Context) {
		c, ok := FromContext(ctx)
		if !ok {
			return
		}
		c.OnTeardown(HookFunc(func(ctx context.Context) error {
			fmt.Println("shutdown tracer provider")
			return nil
		}))
		c.OnTeardown(HookFunc(func(ctx context.Context) error {
			fmt.Println("restore transports")
			return nil
		}))
	}
	build(ctx)

	err := lc.Teardown().Run(context.Background())
	if err != nil {
		fmt.Println(err)
		return
	}

	// Output: restore transports
	// shutdown tracer provider
}
