package connector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/notifications-monitor/internal/feed"
)

// ErrBusy is returned when a cycle is requested while another one is resolving.
var ErrBusy = errors.New("polling cycle already in progress")

// Signal drives the connector.
type Signal int

const (
	// StartCycle begins an externally triggered polling cycle.
	StartCycle Signal = iota
	// ContinueCycle drains the next page of the current cycle.
	ContinueCycle
)

func (s Signal) String() string {
	if s == StartCycle {
		return "start"
	}
	return "continue"
}

// Fetcher retrieves the page that follows a cursor.
type Fetcher interface {
	FetchPage(ctx context.Context, cursor feed.Cursor) (*feed.Page, error)
}

// Sink receives forwarded notifications. Delivery is fire-and-forget.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, entry feed.DatedEntry)
}

// CycleResult summarizes one polling cycle.
type CycleResult struct {
	Pages     int
	Entries   int
	Heartbeat bool
	Advanced  bool
	Cursor    feed.Cursor
}

// Status is a point-in-time view of the connector.
type Status struct {
	Cursor        string    `json:"cursor"`
	Busy          bool      `json:"busy"`
	Cycles        uint64    `json:"cycles"`
	Pages         uint64    `json:"pages"`
	Forwarded     uint64    `json:"forwarded"`
	Heartbeats    uint64    `json:"heartbeats"`
	Failures      uint64    `json:"failures"`
	LastCycleAt   time.Time `json:"last_cycle_at,omitzero"`
	LastHeartbeat time.Time `json:"last_heartbeat,omitzero"`
	LastError     string    `json:"last_error,omitempty"`
}

// Connector pulls the notifications feed and fans entries out to its sinks.
// Cycles run one at a time; the cursor is only touched by the running cycle.
type Connector struct {
	fetcher Fetcher
	sinks   []Sink
	logger  *zap.Logger
	now     func() time.Time

	triggers chan struct{}
	busy     atomic.Bool

	mu     sync.RWMutex
	cursor feed.Cursor
	status Status
}

// Option customizes a Connector.
type Option func(*Connector)

// WithClock overrides the time source used for the initial cursor and entry stamps.
func WithClock(now func() time.Time) Option {
	return func(c *Connector) { c.now = now }
}

// WithCursor starts the connector from the given cursor instead of "now".
func WithCursor(cursor feed.Cursor) Option {
	return func(c *Connector) { c.cursor = cursor }
}

// New creates a connector. The sink list is fixed for the connector's lifetime.
func New(fetcher Fetcher, sinks []Sink, logger *zap.Logger, opts ...Option) *Connector {
	c := &Connector{
		fetcher:  fetcher,
		sinks:    append([]Sink(nil), sinks...),
		logger:   logger,
		now:      time.Now,
		triggers: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cursor.IsZero() {
		c.cursor = feed.NewCursor(c.now())
	}
	c.status.Cursor = c.cursor.Encode()
	return c
}

// Cursor returns the cursor of the most recently completed fetch.
func (c *Connector) Cursor() feed.Cursor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cursor
}

// Status returns a snapshot of the connector's counters.
func (c *Connector) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.status
	s.Busy = c.busy.Load()
	return s
}

// StartCycle asks the event loop to begin a cycle. It returns false when a
// cycle is already queued or resolving.
func (c *Connector) StartCycle() bool {
	if !c.busy.CompareAndSwap(false, true) {
		c.logger.Debug("cycle in progress, start signal dropped")
		return false
	}
	select {
	case c.triggers <- struct{}{}:
		return true
	default:
		c.busy.Store(false)
		return false
	}
}

// Run processes start signals until ctx is cancelled.
func (c *Connector) Run(ctx context.Context) {
	c.logger.Info("pull connector started",
		zap.String("cursor", c.Cursor().Encode()),
		zap.Int("sinks", len(c.sinks)),
	)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("pull connector stopping")
			return
		case <-c.triggers:
			// busy was set by StartCycle and is released here.
			_, _ = c.runCycle(ctx)
			c.busy.Store(false)
		}
	}
}

// Cycle runs one polling cycle synchronously.
func (c *Connector) Cycle(ctx context.Context) (CycleResult, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return CycleResult{}, ErrBusy
	}
	defer c.busy.Store(false)
	return c.runCycle(ctx)
}

func (c *Connector) runCycle(ctx context.Context) (CycleResult, error) {
	start := c.now()
	result := CycleResult{}

	sig := StartCycle
	var err error
	for {
		var more bool
		more, err = c.step(ctx, sig, &result)
		if err != nil || !more {
			break
		}
		sig = ContinueCycle
	}
	result.Cursor = c.Cursor()

	c.mu.Lock()
	c.status.Cycles++
	c.status.LastCycleAt = start
	if err != nil {
		c.status.Failures++
		c.status.LastError = err.Error()
	} else {
		c.status.LastError = ""
	}
	c.mu.Unlock()

	if err == nil && result.Pages > 1 {
		c.logger.Debug("cycle drained",
			zap.Int("pages", result.Pages),
			zap.Int("entries", result.Entries),
			zap.String("cursor", result.Cursor.Encode()),
		)
	}
	return result, err
}

// step performs one fetch for sig and reports whether the cycle continues.
func (c *Connector) step(ctx context.Context, sig Signal, result *CycleResult) (bool, error) {
	cursor := c.Cursor()

	page, err := c.fetcher.FetchPage(ctx, cursor)
	if err != nil {
		c.logger.Error("failed notifications pull request",
			zap.String("signal", sig.String()),
			zap.String("cursor", cursor.Encode()),
			zap.Error(err),
		)
		return false, fmt.Errorf("fetching page since %s: %w", cursor.Since(), err)
	}
	result.Pages++
	c.mu.Lock()
	c.status.Pages++
	c.mu.Unlock()

	c.forward(ctx, page, sig == StartCycle, result)

	next, ok, err := page.NextCursor()
	if err != nil {
		c.logger.Warn("unusable continuation link, idling", zap.Error(err))
		return false, nil
	}
	if !ok || next.Equal(cursor) {
		return false, nil
	}

	c.mu.Lock()
	c.cursor = next
	c.status.Cursor = next.Encode()
	c.mu.Unlock()
	result.Advanced = true

	return true, nil
}

func (c *Connector) forward(ctx context.Context, page *feed.Page, first bool, result *CycleResult) {
	if len(page.Notifications) == 0 {
		if first {
			c.logger.Info("heartbeat")
			result.Heartbeat = true
			c.mu.Lock()
			c.status.Heartbeats++
			c.status.LastHeartbeat = c.now()
			c.mu.Unlock()
		}
		return
	}

	for _, entry := range page.Notifications {
		c.logger.Info("notification", zap.String("id", entry.ID))
		dated := feed.DatedEntry{Entry: entry, ReceivedAt: c.now()}
		for _, s := range c.sinks {
			c.deliver(ctx, s, dated)
		}
		result.Entries++
	}

	c.mu.Lock()
	c.status.Forwarded += uint64(len(page.Notifications))
	c.mu.Unlock()
}

func (c *Connector) deliver(ctx context.Context, s Sink, entry feed.DatedEntry) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("sink panicked",
				zap.String("sink", s.Name()),
				zap.String("id", entry.Entry.ID),
				zap.Any("panic", r),
			)
		}
	}()
	s.Deliver(ctx, entry)
}
