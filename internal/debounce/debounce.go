// Package debounce coalesces bursts of input events for bubbletea models.
//
// A Debouncer hands out a tick command for every event; each new event
// supersedes the previous one, and only the tick carrying the latest
// sequence number is reported as fresh when it arrives. A Generation
// numbers outgoing requests so that responses to superseded requests can
// be dropped.
package debounce

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultDelay is the quiet window used when none is configured.
const DefaultDelay = 250 * time.Millisecond

// Msg is delivered when a debounce window elapses.
type Msg struct {
	Key string
	Seq uint64
}

// Debouncer tracks the latest event for one input.
type Debouncer struct {
	key   string
	delay time.Duration
	seq   uint64
}

// New creates a Debouncer whose ticks carry key.
func New(key string, delay time.Duration) Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return Debouncer{key: key, delay: delay}
}

// Trigger records an event and returns the command that reports it once
// the window has passed.
func (d *Debouncer) Trigger() tea.Cmd {
	d.seq++
	msg := Msg{Key: d.key, Seq: d.seq}
	return tea.Tick(d.delay, func(time.Time) tea.Msg { return msg })
}

// Cancel invalidates any pending tick.
func (d *Debouncer) Cancel() {
	d.seq++
}

// Fresh reports whether msg belongs to this debouncer and is its latest tick.
func (d Debouncer) Fresh(msg Msg) bool {
	return msg.Key == d.key && msg.Seq == d.seq
}

// Owns reports whether msg was produced by this debouncer, fresh or not.
func (d Debouncer) Owns(msg Msg) bool {
	return msg.Key == d.key
}

// Delay returns the quiet window.
func (d Debouncer) Delay() time.Duration {
	return d.delay
}

// Generation numbers requests for one input field.
type Generation struct {
	n uint64
}

// Next starts a new request and returns its number.
func (g *Generation) Next() uint64 {
	g.n++
	return g.n
}

// Current reports whether n is the most recent request.
func (g Generation) Current(n uint64) bool {
	return n == g.n
}

// Invalidate makes every outstanding request stale.
func (g *Generation) Invalidate() {
	g.n++
}
