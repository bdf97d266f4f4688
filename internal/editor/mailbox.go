package editor

import "sync"

// Mailbox hands work from background goroutines (LLM replies, file watcher) to the UI
// thread. Post is safe from any goroutine; Drain runs on the UI thread only.
type Mailbox struct {
	mu  sync.Mutex
	fns []func()
}

// Post queues fn for the next Drain.
func (m *Mailbox) Post(fn func()) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.fns = append(m.fns, fn)
	m.mu.Unlock()
}

// Drain runs every queued func in post order and returns how many ran. Funcs posted while
// draining wait for the next call.
func (m *Mailbox) Drain() int {
	m.mu.Lock()
	fns := m.fns
	m.fns = nil
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Len returns the number of queued funcs.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.fns)
}
