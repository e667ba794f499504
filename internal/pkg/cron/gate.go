package cron

import "sync"

// dailyGate lets a job body run at most once per local calendar day even
// though the job ticks more often.
type dailyGate struct {
	mu   sync.Mutex
	last string
}

// claim reports whether day has not run yet and marks it as run.
func (g *dailyGate) claim(day string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last == day {
		return false
	}
	g.last = day
	return true
}

// release forgets a claimed day so the next tick retries it.
func (g *dailyGate) release(day string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.last == day {
		g.last = ""
	}
}
