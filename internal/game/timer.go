package game

import (
	"sync"
	"time"
)

// TimerHandle is a cancellable, pausable countdown owning its own goroutine.
// Remaining time is recomputed from a wall-clock deadline on every tick, so a
// delayed tick never accumulates drift. onElapsed fires exactly once, even when
// Cancel races with expiry; onTick reports whole seconds remaining once per
// tick while running.
type TimerHandle struct {
	mu        sync.Mutex
	duration  time.Duration
	end       time.Time
	remaining time.Duration
	paused    bool
	pausedAt  time.Time
	fired     bool
	cancelled bool
	done      chan struct{}

	onTick    func(remaining int)
	onElapsed func()
}

// StartTimer arms a countdown with 1-second tick granularity.
func StartTimer(d time.Duration, onTick func(remaining int), onElapsed func()) *TimerHandle {
	return startTimer(d, time.Second, onTick, onElapsed)
}

func startTimer(d, every time.Duration, onTick func(remaining int), onElapsed func()) *TimerHandle {
	now := time.Now()
	t := &TimerHandle{
		duration:  d,
		end:       now.Add(d),
		remaining: d,
		done:      make(chan struct{}),
		onTick:    onTick,
		onElapsed: onElapsed,
	}
	go t.run(every)
	return t
}

func (t *TimerHandle) run(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.cancelled || t.fired {
				t.mu.Unlock()
				return
			}
			if t.paused {
				t.mu.Unlock()
				continue
			}
			rem := time.Until(t.end)
			if rem < 0 {
				rem = 0
			}
			t.remaining = rem
			if rem == 0 {
				t.fired = true
				t.mu.Unlock()
				if t.onTick != nil {
					t.onTick(0)
				}
				if t.onElapsed != nil {
					t.onElapsed()
				}
				return
			}
			t.mu.Unlock()
			if t.onTick != nil {
				t.onTick(int((rem + every/2) / time.Second))
			}
		}
	}
}

// Pause freezes the countdown, capturing the remaining time.
func (t *TimerHandle) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.paused || t.fired || t.cancelled {
		return
	}
	rem := time.Until(t.end)
	if rem < 0 {
		rem = 0
	}
	t.remaining = rem
	t.paused = true
	t.pausedAt = time.Now()
}

// Resume recomputes the deadline from the captured remaining time and
// continues ticking.
func (t *TimerHandle) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.paused || t.fired || t.cancelled {
		return
	}
	t.end = time.Now().Add(t.remaining)
	t.paused = false
}

// Cancel stops the timer; idempotent, and a no-op once the timer has fired.
func (t *TimerHandle) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fired || t.cancelled {
		return
	}
	t.cancelled = true
	close(t.done)
}

// Remaining reports the current remaining time.
func (t *TimerHandle) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.paused {
		return t.remaining
	}
	if t.fired || t.cancelled {
		return t.remaining
	}
	rem := time.Until(t.end)
	if rem < 0 {
		rem = 0
	}
	return rem
}

// RemainingSeconds rounds Remaining to whole seconds for wire payloads.
func (t *TimerHandle) RemainingSeconds() int {
	return int((t.Remaining() + time.Second/2) / time.Second)
}

// Active reports whether the timer is still live (not fired, not cancelled).
func (t *TimerHandle) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.fired && !t.cancelled
}
