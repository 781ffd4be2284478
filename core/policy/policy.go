package policy

import (
	"fmt"
	"sync"
	"time"
)

const (
	maxSeenIDs = 10000
	pruneCount = 1000
)

// Options configure a Policy. Zero values disable the corresponding check.
type Options struct {
	// AllowedChats restricts handling to these chat IDs. Empty allows all.
	AllowedChats []int64
	// MaxAge drops messages older than this when they arrive.
	MaxAge time.Duration
}

// Policy filters inbound messages against an optional chat allowlist,
// an optional freshness window, and update ID deduplication.
type Policy struct {
	mu        sync.Mutex
	allowed   map[int64]bool
	maxAge    time.Duration
	seen      map[int64]bool
	seenOrder []int64
	now       func() time.Time
}

// New creates a Policy.
func New(opts Options) *Policy {
	var allowed map[int64]bool
	if len(opts.AllowedChats) > 0 {
		allowed = make(map[int64]bool, len(opts.AllowedChats))
		for _, id := range opts.AllowedChats {
			allowed[id] = true
		}
	}
	return &Policy{
		allowed: allowed,
		maxAge:  opts.MaxAge,
		seen:    make(map[int64]bool),
		now:     time.Now,
	}
}

// Authorize checks whether a message should be handled.
func (p *Policy) Authorize(chatID int64, updateID int64, timestamp time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.allowed != nil && !p.allowed[chatID] {
		return fmt.Errorf("chat not allowed: %d", chatID)
	}

	if p.maxAge > 0 && !timestamp.IsZero() {
		if age := p.now().Sub(timestamp); age > p.maxAge {
			return fmt.Errorf("stale message: %v old", age.Truncate(time.Second))
		}
	}

	if p.seen[updateID] {
		return fmt.Errorf("duplicate update: %d", updateID)
	}

	// Prune oldest entries if at capacity.
	if len(p.seen) >= maxSeenIDs {
		for i := 0; i < pruneCount && i < len(p.seenOrder); i++ {
			delete(p.seen, p.seenOrder[i])
		}
		p.seenOrder = p.seenOrder[pruneCount:]
	}

	p.seen[updateID] = true
	p.seenOrder = append(p.seenOrder, updateID)

	return nil
}
