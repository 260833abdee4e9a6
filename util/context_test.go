package util

import (
	"context"
	"testing"
	"time"
)

func TestShutdownGrace_OutlivesParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	grace := NewShutdownGrace(parent, 500*time.Millisecond)

	cancel()

	select {
	case <-grace.Context().Done():
		t.Error("grace context must survive the parent's cancellation")
	case <-time.After(50 * time.Millisecond):
	}

	grace.Finish()

	select {
	case <-grace.Context().Done():
	case <-time.After(time.Second):
		t.Error("grace context should cancel once Finish is called")
	}
}

func TestShutdownGrace_TimesOut(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	grace := NewShutdownGrace(parent, 50*time.Millisecond)

	cancel()

	select {
	case <-grace.Context().Done():
	case <-time.After(time.Second):
		t.Error("grace context should cancel after the max delay")
	}
}

func TestShutdownGrace_FinishTwice(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	defer cancel()

	grace := NewShutdownGrace(parent, 50*time.Millisecond)
	grace.Finish()
	grace.Finish()
}
