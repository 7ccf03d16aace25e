// Package webhooklog keeps the most recent raw webhook payloads in memory
// for debugging integrations.
package webhooklog

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

const DefaultCapacity = 100

type Entry struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

type Log struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
	now      func() time.Time
}

func New(capacity int, now func() time.Time) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if now == nil {
		now = time.Now
	}
	return &Log{capacity: capacity, now: now}
}

// Add records a payload. Non-JSON bodies are stored as a JSON string.
func (l *Log) Add(kind string, payload []byte) {
	data := json.RawMessage(append([]byte(nil), payload...))
	if !gjson.ValidBytes(payload) {
		quoted, _ := json.Marshal(string(payload))
		data = quoted
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]Entry{{Type: kind, Timestamp: l.now(), Data: data}}, l.entries...)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[:l.capacity]
	}
}

// Recent returns up to limit entries, newest first.
func (l *Log) Recent(limit int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if limit <= 0 || limit > len(l.entries) {
		limit = len(l.entries)
	}
	out := make([]Entry, limit)
	copy(out, l.entries[:limit])
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}
