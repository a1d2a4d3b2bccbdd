package usecase

import (
	"context"
	"sync"
	"time"

	"pomotimer/internal/domain"
	"pomotimer/internal/logging"
	"pomotimer/internal/pubsub"
)

// SessionUseCase is the primary port for driving the timer.
type SessionUseCase interface {
	Start(ctx context.Context)
	StartFocus()
	StartBreak(long bool)
	Pause()
	Resume()
	Stop()
	Skip()
	Tick(now time.Time)
	State() domain.TimerState
	Settings() domain.Settings
	UpdateSettings(settings domain.Settings) error
	pubsub.Subscriber[Signal]
	Background()
	Foreground()
	Close()
}

// Config tunes the controller's clock and ticker.
type Config struct {
	TickInterval time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
	// ManualTick disables the ticker goroutine; callers drive Tick themselves.
	ManualTick bool
}

// Dependencies are the secondary ports the controller drives.
type Dependencies struct {
	Snapshots  domain.SnapshotRepository
	Notifier   domain.Notifier
	Statistics domain.StatisticsRecorder
	Sink       *PublicationSink
}

// SessionController owns the one TimerState. Every mutation, including ticks,
// happens under mu, so there is exactly one writer.
type SessionController struct {
	notifier   domain.Notifier
	statistics domain.StatisticsRecorder
	sink       *PublicationSink
	recovery   *RecoveryEngine

	interval   time.Duration
	now        func() time.Time
	manualTick bool

	mu       sync.Mutex
	state    domain.TimerState
	settings domain.Settings
	baseCtx  context.Context

	// tickGen identifies the live ticker; ticks from older generations are dropped.
	tickGen    uint64
	tickCancel context.CancelFunc
	ticking    bool

	// authoritative is set once the controller holds state of its own; from
	// then on the snapshot on disk may be older than memory.
	authoritative bool
}

// NewSessionController creates an idle controller. Call Start to recover the
// last snapshot and begin publishing.
func NewSessionController(deps Dependencies, settings domain.Settings, cfg Config) (*SessionController, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if deps.Sink == nil {
		deps.Sink = NewPublicationSink(deps.Snapshots, nil)
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.Statistics == nil {
		deps.Statistics = nopRecorder{}
	}

	return &SessionController{
		notifier:   deps.Notifier,
		statistics: deps.Statistics,
		sink:       deps.Sink,
		recovery:   NewRecoveryEngine(deps.Snapshots),
		interval:   cfg.TickInterval,
		now:        cfg.Now,
		manualTick: cfg.ManualTick,
		state:      domain.NewIdleState(domain.ModeFocus, settings),
		settings:   settings,
		baseCtx:    context.Background(),
	}, nil
}

// Start recovers from the durable snapshot and starts the background writer.
// The ticker stops for good when ctx ends.
func (c *SessionController) Start(ctx context.Context) {
	c.mu.Lock()
	c.baseCtx = ctx
	c.mu.Unlock()

	c.sink.Start(ctx)
	c.Foreground()
}

func (c *SessionController) StartFocus() {
	c.apply(domain.Event{Type: domain.EventStartFocus})
}

func (c *SessionController) StartBreak(long bool) {
	c.apply(domain.Event{Type: domain.EventStartBreak, Long: long})
}

func (c *SessionController) Pause() {
	c.apply(domain.Event{Type: domain.EventPause})
}

func (c *SessionController) Resume() {
	c.apply(domain.Event{Type: domain.EventResume})
}

func (c *SessionController) Stop() {
	c.apply(domain.Event{Type: domain.EventStop})
}

func (c *SessionController) Skip() {
	c.apply(domain.Event{Type: domain.EventSkip})
}

// Tick re-evaluates the running interval at now and finishes it when nothing is left.
func (c *SessionController) Tick(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(domain.Event{Type: domain.EventTick}, now)
}

// State returns a copy of the current state.
func (c *SessionController) State() domain.TimerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *SessionController) Settings() domain.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// UpdateSettings replaces the settings. A running or paused interval keeps
// its schedule; an idle timer shows the new duration for its next mode.
func (c *SessionController) UpdateSettings(settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = settings
	if c.state.Status == domain.StatusIdle {
		c.state = domain.ApplySettings(c.state, settings)
		c.publishLocked(c.now())
	}
	return nil
}

// Subscribe returns refresh signals until ctx ends.
func (c *SessionController) Subscribe(ctx context.Context) <-chan pubsub.Event[Signal] {
	return c.sink.Subscribe(ctx)
}

// Ticking reports whether a ticker is currently armed.
func (c *SessionController) Ticking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticking
}

// Background writes the current state out synchronously; the process may
// lose the CPU right after.
func (c *SessionController) Background() {
	c.mu.Lock()
	now := c.now()
	c.sink.Persist(domain.SnapshotOf(c.state, now), domain.PublishedStateOf(c.state, now))
	c.mu.Unlock()
	c.sink.Flush()
}

// Foreground re-runs recovery as on relaunch. The durable snapshot is read
// only until the controller holds state of its own; after that the in-memory
// state is the source, so a failed snapshot write cannot roll it back.
func (c *SessionController) Foreground() {
	c.sink.Flush()

	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	var (
		state   domain.TimerState
		outcome domain.RecoveryOutcome
	)
	if c.authoritative {
		state, outcome = c.recovery.Resume(c.state, c.settings, now)
	} else {
		state, outcome = c.recovery.Recover(c.settings, now)
	}
	c.restoreLocked(state, outcome, now)
}

// Close stops the ticker and writes out pending state.
func (c *SessionController) Close() {
	c.mu.Lock()
	c.stopTickerLocked()
	c.mu.Unlock()
	c.sink.Close()
}

func (c *SessionController) restoreLocked(state domain.TimerState, outcome domain.RecoveryOutcome, now time.Time) {
	c.stopTickerLocked()
	c.notifier.Cancel()
	c.state = state
	c.authoritative = true

	switch outcome {
	case domain.RecoveredFinished:
		// The interval ran out while we were away: one tick finishes it.
		c.applyLocked(domain.Event{Type: domain.EventTick}, now)
		return
	case domain.RecoveredRunning:
		title, body := domain.CompletionMessage(state.Mode)
		if err := c.notifier.Schedule(state.CompletionDate(), title, body); err != nil {
			logging.Warnf("notification schedule failed: %v", err)
		}
		c.startTickerLocked()
	}
	c.publishLocked(now)
}

func (c *SessionController) apply(event domain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(event, c.now())
}

func (c *SessionController) applyLocked(event domain.Event, now time.Time) {
	next, effects := domain.HandleEvent(c.state, event, c.settings, now)
	c.state = next
	if len(effects) == 0 {
		if event.Type == domain.EventTick && next.IsRunning() {
			logging.Tracef("tick: %s left", next.RemainingTime(now).Round(time.Second))
			c.sink.Broadcast(pubsub.ProgressEvent, c.signalLocked(now, ""))
		}
		return
	}
	c.authoritative = true
	logging.Debugf("%s -> %s/%s", event.Type, next.Status, next.Mode)
	c.executeLocked(effects, now)
}

// executeLocked performs effects in order. Failures are logged and never
// undo the transition.
func (c *SessionController) executeLocked(effects []domain.Effect, now time.Time) {
	for _, eff := range effects {
		switch eff.Type {
		case domain.EffectStopTicker:
			c.stopTickerLocked()
		case domain.EffectStartTicker:
			c.startTickerLocked()
		case domain.EffectCancelNotification:
			c.notifier.Cancel()
		case domain.EffectScheduleNotification:
			if err := c.notifier.Schedule(eff.At, eff.Title, eff.Body); err != nil {
				logging.Warnf("notification schedule failed: %v", err)
			}
		case domain.EffectRecordFocus:
			if err := c.statistics.RecordFocusCompletion(eff.Duration, eff.At); err != nil {
				logging.Warnf("record focus failed: %v", err)
			}
		case domain.EffectRecordBreak:
			if err := c.statistics.RecordBreakTaken(eff.At); err != nil {
				logging.Warnf("record break failed: %v", err)
			}
		case domain.EffectSessionFinished:
			logging.Infof("%s finished", eff.Mode.DisplayName())
			c.sink.Broadcast(pubsub.SessionFinishedEvent, c.signalLocked(now, eff.Mode))
		case domain.EffectCycleComplete:
			logging.Infof("cycle complete")
			c.sink.Broadcast(pubsub.CycleCompleteEvent, c.signalLocked(now, ""))
		case domain.EffectPersist:
			c.publishLocked(now)
		}
	}
}

func (c *SessionController) publishLocked(now time.Time) {
	c.sink.Persist(domain.SnapshotOf(c.state, now), domain.PublishedStateOf(c.state, now))
	c.sink.Broadcast(pubsub.StateChangedEvent, c.signalLocked(now, ""))
}

func (c *SessionController) signalLocked(now time.Time, completed domain.Mode) Signal {
	return Signal{State: domain.PublishedStateOf(c.state, now), Completed: completed}
}

func (c *SessionController) startTickerLocked() {
	c.stopTickerLocked()
	c.ticking = true
	if c.manualTick {
		return
	}
	gen := c.tickGen
	ctx, cancel := context.WithCancel(c.baseCtx)
	c.tickCancel = cancel
	go c.tickLoop(ctx, gen)
}

// stopTickerLocked cancels the live ticker and retires its generation, so a
// tick already waiting on mu is discarded.
func (c *SessionController) stopTickerLocked() {
	c.tickGen++
	if c.tickCancel != nil {
		c.tickCancel()
		c.tickCancel = nil
	}
	c.ticking = false
}

func (c *SessionController) tickLoop(ctx context.Context, gen uint64) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			if gen != c.tickGen {
				c.mu.Unlock()
				return
			}
			c.applyLocked(domain.Event{Type: domain.EventTick}, c.now())
			c.mu.Unlock()
		}
	}
}

type nopNotifier struct{}

func (nopNotifier) Schedule(time.Time, string, string) error { return nil }
func (nopNotifier) Cancel()                                  {}

type nopRecorder struct{}

func (nopRecorder) RecordFocusCompletion(time.Duration, time.Time) error { return nil }
func (nopRecorder) RecordBreakTaken(time.Time) error                     { return nil }
