package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingTrigger struct {
	calls  atomic.Int32
	accept bool
}

func (c *countingTrigger) StartCycle() bool {
	c.calls.Add(1)
	return c.accept
}

func TestRunOnStartup(t *testing.T) {
	trigger := &countingTrigger{accept: true}
	s := New(trigger, time.Hour, true, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for trigger.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("expected immediate trigger on startup")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done

	if n := trigger.calls.Load(); n != 1 {
		t.Errorf("expected 1 trigger, got %d", n)
	}
}

func TestTicksAndSkipsBusy(t *testing.T) {
	trigger := &countingTrigger{accept: false}
	core, logs := observer.New(zapcore.WarnLevel)
	s := New(trigger, 10*time.Millisecond, false, zap.New(core))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	for trigger.calls.Load() < 3 {
		select {
		case <-ctx.Done():
			t.Fatal("expected periodic triggers")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	if logs.FilterMessage("previous cycle still running, skipping tick").Len() < 3 {
		t.Error("expected skipped ticks to be logged")
	}
}
