package postService

import (
	"context"
	"fmt"
)

// Optimistic applies a local change, runs the remote call and re-applies the
// inverse change if the call fails. The remote error is returned unchanged.
func Optimistic(ctx context.Context, apply func(), remote func(context.Context) error, rollback func()) error {
	apply()
	err := runRemote(ctx, remote)
	if err != nil {
		rollback()
	}
	return err
}

func runRemote(ctx context.Context, remote func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("remote call panicked: %v", r)
		}
	}()
	return remote(ctx)
}
