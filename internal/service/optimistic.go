package service

import "context"

// RunOptimistic applies a local mutation immediately, attempts the remote
// write once, and restores the previous state if the write fails. No retry,
// no queueing: a single attempt with a visible (reverted) failure outcome.
// Shared by the like, favorite, and follow toggles.
func RunOptimistic(ctx context.Context, apply, revert func(), write func(context.Context) error) error {
	apply()
	if err := write(ctx); err != nil {
		revert()
		return err
	}
	return nil
}
