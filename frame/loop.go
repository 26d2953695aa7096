// Package frame implements display-frame callbacks for a single-threaded
// event loop. Whatever owns the display clock calls Run once per frame.
package frame

// Token identifies a requested callback so it can be cancelled
type Token uint64

type request struct {
	token Token
	fn    func()
}

// Loop queues callbacks for the next frame. It is not safe for concurrent
// use; it belongs to the event loop goroutine.
type Loop struct {
	next    Token
	pending []request
	live    map[Token]bool
}

// NewLoop creates an empty frame loop
func NewLoop() *Loop {
	return &Loop{live: make(map[Token]bool)}
}

// RequestFrame schedules fn to run on the next frame
func (l *Loop) RequestFrame(fn func()) Token {
	l.next++
	l.pending = append(l.pending, request{token: l.next, fn: fn})
	l.live[l.next] = true
	return l.next
}

// CancelFrame drops a pending callback. Unknown or already-run tokens are
// ignored.
func (l *Loop) CancelFrame(t Token) {
	delete(l.live, t)
}

// Pending reports whether any callback waits for a frame
func (l *Loop) Pending() bool {
	return len(l.live) > 0
}

// Run executes the callbacks queued before this call and returns how many
// ran. Callbacks requested while running wait for the next frame; one
// cancelled by an earlier callback in the same frame does not run.
func (l *Loop) Run() int {
	batch := l.pending
	l.pending = nil
	ran := 0
	for _, r := range batch {
		if !l.live[r.token] {
			continue
		}
		delete(l.live, r.token)
		r.fn()
		ran++
	}
	return ran
}
