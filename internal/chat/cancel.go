package chat

import (
	"context"
	"errors"
)

// ErrUserCancelled is returned when an in-flight request is abandoned via
// context cancellation.
var ErrUserCancelled = errors.New("request cancelled")

func normalizeCancellationErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUserCancelled) || errors.Is(err, context.Canceled) {
		return ErrUserCancelled
	}
	return err
}

func IsUserCancelled(err error) bool {
	return errors.Is(normalizeCancellationErr(err), ErrUserCancelled)
}
