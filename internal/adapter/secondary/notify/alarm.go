// Package notify raises the "interval finished" alert.
package notify

import (
	"sync"
	"time"

	"pomotimer/internal/logging"
)

// Sender delivers one user-visible notification right away.
type Sender interface {
	Send(title, body string) error
}

// Alarm implements domain.Notifier with an in-process timer. At most one
// alert is pending; Schedule replaces it and Cancel drops it.
type Alarm struct {
	sender Sender
	now    func() time.Time

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// NewAlarm creates an alarm delivering through sender.
func NewAlarm(sender Sender) *Alarm {
	if sender == nil {
		sender = NoopSender{}
	}
	return &Alarm{sender: sender, now: time.Now}
}

// Schedule arms the alert for at. A time already past fires immediately.
func (a *Alarm) Schedule(at time.Time, title, body string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopLocked()
	gen := a.gen
	delay := at.Sub(a.now())
	if delay < 0 {
		delay = 0
	}
	a.timer = time.AfterFunc(delay, func() { a.fire(gen, title, body) })
	logging.Debugf("notification %q due in %s", title, delay.Round(time.Second))
	return nil
}

// Cancel drops the pending alert, if any.
func (a *Alarm) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

// Pending reports whether an alert is armed.
func (a *Alarm) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timer != nil
}

func (a *Alarm) stopLocked() {
	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *Alarm) fire(gen uint64, title, body string) {
	a.mu.Lock()
	if gen != a.gen {
		// Replaced or cancelled after the timer had already fired.
		a.mu.Unlock()
		return
	}
	a.timer = nil
	a.mu.Unlock()

	if err := a.sender.Send(title, body); err != nil {
		logging.Warnf("notification failed: %v", err)
	}
}
