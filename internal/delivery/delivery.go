// Package delivery defines the entry points that expose the user store to the outside world.
package delivery

import "context"

// Delivery is a long-running server started by the application after fx has wired it.
type Delivery interface {
	Serve(ctx context.Context) error
}
