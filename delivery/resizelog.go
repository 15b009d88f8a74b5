package delivery

import (
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/SynapticNetworks/gridspike/klog"
)

// ResizeLog records every time an exchange buffer's footprint grows,
// reporting the new size in human-readable form. Sizes only ever grow
// within a run: Note silently ignores a size no larger than the current
// peak, matching the grow-only policy the buffers themselves follow.
type ResizeLog struct {
	mu     sync.Mutex
	peak   int64
	events []int64
	logger *klog.Logger
}

// NewResizeLog builds a resize log that reports through logger. A nil
// logger is replaced with klog.Nop().
func NewResizeLog(logger *klog.Logger) *ResizeLog {
	if logger == nil {
		logger = klog.Nop()
	}
	return &ResizeLog{logger: logger}
}

// Note records a new buffer footprint in bytes if it exceeds the current
// peak.
func (r *ResizeLog) Note(bytes int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if bytes <= r.peak {
		return
	}
	r.peak = bytes
	r.events = append(r.events, bytes)
	r.logger.Info("delivery exchange buffer grew", map[string]interface{}{
		"bytes":      bytes,
		"human_size": humanize.Bytes(uint64(bytes)),
	})
}

// Peak returns the largest footprint recorded so far.
func (r *ResizeLog) Peak() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peak
}

// History returns every recorded growth step, in order.
func (r *ResizeLog) History() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, len(r.events))
	copy(out, r.events)
	return out
}
