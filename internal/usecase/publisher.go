package usecase

import (
	"context"
	"sync"

	"pomotimer/internal/domain"
	"pomotimer/internal/logging"
	"pomotimer/internal/pubsub"
)

// Signal is what in-process listeners receive on every refresh.
type Signal struct {
	State domain.PublishedState
	// Completed is the mode that just ran out, set on SessionFinishedEvent.
	Completed domain.Mode
}

type pendingWrite struct {
	snapshot  domain.Snapshot
	published domain.PublishedState
}

// PublicationSink pushes state outward. Broadcasts go to in-process
// subscribers immediately; durable writes are coalesced and performed off
// the caller's goroutine so a slow disk never holds up a transition.
type PublicationSink struct {
	snapshots domain.SnapshotRepository
	store     domain.StateStore
	broker    *pubsub.Broker[Signal]

	mu      sync.Mutex
	pending *pendingWrite
	wake    chan struct{}

	// writeMu orders writes so a flush never lands before an older write.
	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
}

// NewPublicationSink creates a sink. store may be nil when no surface reads
// the shared state.
func NewPublicationSink(snapshots domain.SnapshotRepository, store domain.StateStore) *PublicationSink {
	return &PublicationSink{
		snapshots: snapshots,
		store:     store,
		broker:    pubsub.NewBroker[Signal](),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Start runs the background writer until ctx ends, then writes whatever is
// still pending.
func (p *PublicationSink) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				p.Flush()
				return
			case <-p.done:
				return
			case <-p.wake:
				p.Flush()
			}
		}
	}()
}

// Persist queues a snapshot and published state, replacing any write not yet
// performed. It never blocks on I/O.
func (p *PublicationSink) Persist(snapshot domain.Snapshot, published domain.PublishedState) {
	p.mu.Lock()
	p.pending = &pendingWrite{snapshot: snapshot, published: published}
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Broadcast notifies in-process subscribers.
func (p *PublicationSink) Broadcast(eventType pubsub.EventType, signal Signal) {
	p.broker.Publish(eventType, signal)
}

// Subscribe returns a channel of signals that closes with ctx.
func (p *PublicationSink) Subscribe(ctx context.Context) <-chan pubsub.Event[Signal] {
	return p.broker.Subscribe(ctx)
}

// Flush synchronously writes the pending state, if any. Failures are logged;
// the next successful write replaces whatever is on disk.
func (p *PublicationSink) Flush() {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.Lock()
	write := p.pending
	p.pending = nil
	p.mu.Unlock()
	if write == nil {
		return
	}

	if p.snapshots != nil {
		if err := p.snapshots.Save(write.snapshot); err != nil {
			logging.Warnf("snapshot write failed: %v", err)
		}
	}
	if p.store != nil {
		if err := p.store.Write(write.published); err != nil {
			logging.Warnf("published state write failed: %v", err)
		}
	}
	logging.Tracef("published %s/%s", write.published.Status, write.published.Mode)
}

// Close flushes and stops the writer and closes every subscription.
func (p *PublicationSink) Close() {
	p.Flush()
	logging.Debugf("closing %d subscriptions", p.broker.SubscriberCount())
	p.once.Do(func() { close(p.done) })
	p.broker.Close()
}
