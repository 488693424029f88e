// Package realtime carries row-change signals from the services to
// subscribed clients. A signal names only the table and row; the consumer
// contract is "re-run your queries", never "apply a delta".
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/go-redis/redis/v8"
)

// Event is the change signal payload
type Event struct {
	Table string `json:"table"` // applications, messages, properties
	ID    uint   `json:"id"`
}

// Bus is what the services publish through
type Bus interface {
	Publish(userID uint, ev Event)
}

// Subscriber is the consumer side; the Hub and the in-memory bus both
// implement it
type Subscriber interface {
	Subscribe(ctx context.Context, userID uint) (<-chan Event, func())
}

func userChannel(userID uint) string {
	return fmt.Sprintf("rt:user:%d", userID)
}

// Hub is the Redis-backed bus used in production. Publishing never blocks
// the caller; a lost signal is recovered by the next one since consumers
// re-fetch in full.
type Hub struct {
	client *redis.Client
}

func NewHub(client *redis.Client) *Hub {
	return &Hub{client: client}
}

func (h *Hub) Publish(userID uint, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("realtime: marshal event: %v", err)
		return
	}
	if err := h.client.Publish(context.Background(), userChannel(userID), payload).Err(); err != nil {
		log.Printf("realtime: publish to user %d: %v", userID, err)
	}
}

// Subscribe returns a channel of events for one user plus a teardown func.
// Events that cannot be delivered to a slow consumer are dropped.
func (h *Hub) Subscribe(ctx context.Context, userID uint) (<-chan Event, func()) {
	pubsub := h.client.Subscribe(ctx, userChannel(userID))
	out := make(chan Event, 8)

	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("realtime: bad event payload: %v", err)
				continue
			}
			select {
			case out <- ev:
			default:
			}
		}
	}()

	return out, func() { pubsub.Close() }
}

// MemoryBus fans out in-process; used by tests and single-node setups
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[uint]map[chan Event]struct{}
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[uint]map[chan Event]struct{})}
}

func (b *MemoryBus) Publish(userID uint, ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[userID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (b *MemoryBus) Subscribe(ctx context.Context, userID uint) (<-chan Event, func()) {
	ch := make(chan Event, 8)
	b.mu.Lock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[chan Event]struct{})
	}
	b.subs[userID][ch] = struct{}{}
	b.mu.Unlock()

	// done also releases the context watcher below, so tearing down a
	// background-context subscription leaves no goroutine behind
	done := make(chan struct{})
	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subs[userID][ch]; ok {
			delete(b.subs[userID], ch)
			close(ch)
			close(done)
		}
		b.mu.Unlock()
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return ch, cancel
}

// NopBus discards every signal; handy when realtime is disabled
type NopBus struct{}

func (NopBus) Publish(uint, Event) {}
