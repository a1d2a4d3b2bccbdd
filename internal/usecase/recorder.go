package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"pomotimer/internal/domain"
	"pomotimer/internal/logging"
)

// ErrRecorderFull is returned when the statistics queue cannot take another record.
var ErrRecorderFull = errors.New("statistics queue is full")

const defaultRecorderQueue = 64

type recordKind int

const (
	recordFocus recordKind = iota
	recordBreak
)

type record struct {
	kind     recordKind
	duration time.Duration
	at       time.Time
}

// AsyncRecorder queues statistics writes so a completion never waits on the
// database. It satisfies domain.StatisticsRecorder.
type AsyncRecorder struct {
	target domain.StatisticsRecorder
	queue  chan record
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewAsyncRecorder wraps target with a queue of the given size.
func NewAsyncRecorder(target domain.StatisticsRecorder, size int) *AsyncRecorder {
	if size < 1 {
		size = defaultRecorderQueue
	}
	return &AsyncRecorder{
		target: target,
		queue:  make(chan record, size),
	}
}

// Start launches the worker. It drains the queue when ctx ends or Close is called.
func (r *AsyncRecorder) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case rec, ok := <-r.queue:
				if !ok {
					return
				}
				r.write(rec)
			case <-ctx.Done():
				r.drain()
				return
			}
		}
	}()
}

func (r *AsyncRecorder) RecordFocusCompletion(duration time.Duration, completedAt time.Time) error {
	return r.enqueue(record{kind: recordFocus, duration: duration, at: completedAt})
}

func (r *AsyncRecorder) RecordBreakTaken(takenAt time.Time) error {
	return r.enqueue(record{kind: recordBreak, at: takenAt})
}

func (r *AsyncRecorder) enqueue(rec record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		// Late records after shutdown are written inline.
		return r.apply(rec)
	}
	select {
	case r.queue <- rec:
		return nil
	default:
		return ErrRecorderFull
	}
}

// Close stops accepting queued records and waits for the worker to finish.
func (r *AsyncRecorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
	// Without a worker nothing drained the queue.
	r.drain()
}

func (r *AsyncRecorder) drain() {
	for {
		select {
		case rec, ok := <-r.queue:
			if !ok {
				return
			}
			r.write(rec)
		default:
			return
		}
	}
}

func (r *AsyncRecorder) write(rec record) {
	if err := r.apply(rec); err != nil {
		logging.Warnf("statistics write failed: %v", err)
	}
}

func (r *AsyncRecorder) apply(rec record) error {
	switch rec.kind {
	case recordFocus:
		return r.target.RecordFocusCompletion(rec.duration, rec.at)
	default:
		return r.target.RecordBreakTaken(rec.at)
	}
}
