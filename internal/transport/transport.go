// internal/transport/transport.go
package transport

import (
	"context"
	"errors"
	"fmt"

	"print-service/internal/model"
)

// Transport is one communication path capable of delivering an encoded
// document to a physical printer. Drivers are stateless: connection handles
// live only for the duration of a single Send call, and no driver retries
// internally. Falling through to the next transport is the dispatcher's job.
type Transport interface {
	Name() string
	Send(ctx context.Context, job *model.PrintJob) error
}

// ErrUnavailable marks a failure whose cause is an absent prerequisite
// (agent not running, device not plugged in, no addressing configured).
// The dispatcher advances past these silently; other failures are logged
// with their original reason.
var ErrUnavailable = errors.New("transport unavailable")

func unavailable(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, fmt.Sprintf(format, args...))
}
