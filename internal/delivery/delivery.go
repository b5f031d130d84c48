// Package delivery defines the transport-facing surfaces of the service.
package delivery

import (
	"context"
)

// Delivery is a long-running transport (HTTP control surface, future
// admin sockets). Serve blocks until the transport stops.
type Delivery interface {
	Serve(ctx context.Context) error
}
