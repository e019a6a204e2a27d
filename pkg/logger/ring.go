package logger

import (
	"strings"
	"sync"
)

const ringCapacity = 1000

// Ring is a bounded in-memory buffer of recent log lines. The HTTP layer
// serves it so test runners can collect harness output without shell access.
var Ring = &ringBuffer{}

type ringBuffer struct {
	mu    sync.Mutex
	lines []string
}

func (r *ringBuffer) Write(p []byte) (int, error) {
	line := strings.TrimRight(string(p), "\n")
	r.mu.Lock()
	r.lines = append(r.lines, line)
	if len(r.lines) > ringCapacity {
		r.lines = r.lines[len(r.lines)-ringCapacity:]
	}
	r.mu.Unlock()
	return len(p), nil
}

// Lines returns a copy of the retained log lines, oldest first.
func (r *ringBuffer) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}
