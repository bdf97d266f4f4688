package editor

import "time"

// Ticker is a frame-polled timer: the render loop calls Due with the current time and
// gets true at most once per period. Missed periods are not replayed.
type Ticker struct {
	period  time.Duration
	next    time.Time
	running bool
}

// NewTicker returns a stopped ticker.
func NewTicker(period time.Duration) *Ticker {
	return &Ticker{period: period}
}

// Start arms the ticker; the first tick is one period after now.
func (t *Ticker) Start(now time.Time) {
	if t.period <= 0 {
		return
	}
	t.running = true
	t.next = now.Add(t.period)
}

// Stop disarms the ticker. A stopped ticker is never due.
func (t *Ticker) Stop() {
	t.running = false
}

// Running reports whether the ticker is armed.
func (t *Ticker) Running() bool {
	return t.running
}

// Period returns the configured period.
func (t *Ticker) Period() time.Duration {
	return t.period
}

// Due reports whether a period has elapsed and, if so, schedules the next one.
func (t *Ticker) Due(now time.Time) bool {
	if !t.running || now.Before(t.next) {
		return false
	}
	t.next = now.Add(t.period)
	return true
}
