package notify

import (
	"sync"
	"time"
)

// Record is an audit entry of one outbound notification attempt.
type Record struct {
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}

// Log is the append-only notification history. Entries are appended at attempt
// time, never mutated; the only removal path is a full clear.
type Log struct {
	mu      sync.RWMutex
	records []Record
}

// NewLog creates an empty history.
func NewLog() *Log {
	return &Log{}
}

// Append records a notification attempt.
func (l *Log) Append(r Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, r)
}

// All copies out the full history, oldest first.
func (l *Log) All() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Recent returns records within the trailing window ending at now.
func (l *Log) Recent(now time.Time, window time.Duration) []Record {
	cutoff := now.Add(-window)
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Record, 0, len(l.records))
	for _, r := range l.records {
		if r.Timestamp.After(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of recorded attempts.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Clear drops the full history.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
}
