package bus

import (
	"context"
	"sync"

	"github.com/fluxclass/fluxclass-backend/internal/realtime"
)

// memoryBus is the single-process fallback used in development and tests
// when no REDIS_ADDR is configured. Delivery is in-order per publisher.
type memoryBus struct {
	mu     sync.Mutex
	onMsg  func(m realtime.Message)
	closed bool
}

func NewMemoryBus() Bus {
	return &memoryBus{}
}

func (b *memoryBus) Publish(ctx context.Context, msg realtime.Message) error {
	b.mu.Lock()
	onMsg := b.onMsg
	closed := b.closed
	b.mu.Unlock()

	if closed || onMsg == nil {
		return nil
	}
	onMsg(msg)
	return nil
}

func (b *memoryBus) StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error {
	b.mu.Lock()
	b.onMsg = onMsg
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		b.onMsg = nil
		b.mu.Unlock()
	}()
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	b.closed = true
	b.onMsg = nil
	b.mu.Unlock()
	return nil
}
