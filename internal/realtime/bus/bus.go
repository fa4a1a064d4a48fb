package bus

import (
	"context"

	"github.com/fluxclass/fluxclass-backend/internal/realtime"
)

// Bus is the realtime fan-out between backend instances. StartForwarder
// registers the single onMsg callback and runs until the context is
// cancelled; the subscription is torn down with it.
type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}
