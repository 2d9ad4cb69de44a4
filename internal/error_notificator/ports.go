package error_notificator

import "context"

type Notificator interface {
	// Notify tells an operator about an unexpected failure.
	Notify(ctx context.Context, err error, details string) error
}
