// Package events fans out derived-view snapshots to renderers.
package events

import (
	"sync"

	"github.com/vadiminshakov/invoiceview/internal/domain"
)

// ViewBroadcaster fans out snapshots to all subscribers via buffered channels.
// A subscriber only needs the latest state, so when its buffer is full the
// oldest pending snapshot is discarded in favour of the new one.
type ViewBroadcaster struct {
	mu     sync.RWMutex
	subs   map[chan domain.Snapshot]struct{}
	buffer int
}

// NewViewBroadcaster creates a broadcaster with the given per-subscriber buffer.
func NewViewBroadcaster(buffer int) *ViewBroadcaster {
	if buffer < 1 {
		buffer = 1
	}
	return &ViewBroadcaster{
		subs:   make(map[chan domain.Snapshot]struct{}),
		buffer: buffer,
	}
}

// Publish sends the snapshot to all subscribers without blocking.
func (b *ViewBroadcaster) Publish(s domain.Snapshot) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		for {
			select {
			case ch <- s:
			default:
				// full: drop the stale snapshot and retry
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

// Subscribe returns a channel that receives snapshots until Unsubscribe is called.
func (b *ViewBroadcaster) Subscribe() chan domain.Snapshot {
	ch := make(chan domain.Snapshot, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel and closes it.
func (b *ViewBroadcaster) Unsubscribe(ch chan domain.Snapshot) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Subscribers returns the number of active subscribers.
func (b *ViewBroadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
