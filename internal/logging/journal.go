package logging

import (
	"strings"
	"sync"
)

// DefaultJournalSize is how many recent lines the journal keeps.
const DefaultJournalSize = 200

// Journal keeps the most recent log lines in memory so the TUI can show them
// without re-reading the log file. It is a zapcore.WriteSyncer.
type Journal struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
	total int
}

// NewJournal returns a journal holding up to size lines.
func NewJournal(size int) *Journal {
	if size <= 0 {
		size = DefaultJournalSize
	}
	return &Journal{lines: make([]string, size)}
}

// Write stores each newline-terminated entry in p.
func (j *Journal) Write(p []byte) (int, error) {
	if j == nil {
		return len(p), nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		j.lines[j.next] = line
		j.next = (j.next + 1) % len(j.lines)
		if j.next == 0 {
			j.full = true
		}
		j.total++
	}
	return len(p), nil
}

// Sync is a no-op.
func (j *Journal) Sync() error { return nil }

// Tail returns up to maxLines of the most recent entries (oldest first) and
// the number of entries ever written.
func (j *Journal) Tail(maxLines int) ([]string, int) {
	if j == nil || maxLines <= 0 {
		return nil, 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	var ordered []string
	if j.full {
		ordered = append(ordered, j.lines[j.next:]...)
	}
	ordered = append(ordered, j.lines[:j.next]...)
	if len(ordered) > maxLines {
		ordered = ordered[len(ordered)-maxLines:]
	}
	out := make([]string, len(ordered))
	copy(out, ordered)
	return out, j.total
}
