// Package logbuf holds the in-memory diagnostic log shown in the admin UI.
// It is constructed once at startup and passed to anything that wants to
// record sync/cloud events, so there is no package-level global.
package logbuf

import (
	"fmt"
	"sync"
	"time"
)

// Level classifies a diagnostic entry.
type Level string

const (
	LevelInfo Level = "info"
	LevelWarn Level = "warn"
)

// Entry is one diagnostic line.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   Level     `json:"level"`
	Message string    `json:"message"`
}

// Buffer is a fixed-capacity ring of diagnostic entries with subscriber
// fan-out. Appends past capacity evict the oldest entry.
type Buffer struct {
	mu       sync.Mutex
	cap      int
	entries  []Entry
	nextSub  int
	subs     map[int]func(Entry)
}

// DefaultCapacity matches the dashboard's diagnostic panel.
const DefaultCapacity = 50

// New creates a buffer holding at most capacity entries. A capacity of zero
// or less falls back to DefaultCapacity.
func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		cap:  capacity,
		subs: make(map[int]func(Entry)),
	}
}

// Append records an entry, evicting the oldest if the buffer is full, and
// notifies subscribers synchronously.
func (b *Buffer) Append(level Level, format string, args ...any) {
	e := Entry{
		Time:    time.Now(),
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	}

	b.mu.Lock()
	b.entries = append(b.entries, e)
	if len(b.entries) > b.cap {
		b.entries = b.entries[len(b.entries)-b.cap:]
	}
	subs := make([]func(Entry), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
}

// Infof appends an info-level entry.
func (b *Buffer) Infof(format string, args ...any) {
	b.Append(LevelInfo, format, args...)
}

// Warnf appends a warn-level entry.
func (b *Buffer) Warnf(format string, args ...any) {
	b.Append(LevelWarn, format, args...)
}

// Subscribe registers fn to be called for every future entry. The returned
// function removes the subscription.
func (b *Buffer) Subscribe(fn func(Entry)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Entries returns a copy of the current contents, oldest first.
func (b *Buffer) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Clear drops all entries but keeps subscriptions.
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.entries = nil
	b.mu.Unlock()
}
