package timesync

import (
	"fmt"
	"sync"
	"time"
)

const stampLayout = "2006-01-02T15:04:05"

// Clock is the agent's notion of wall-clock time. Until an NTP sync has
// succeeded (this session or a previous one within the same power session),
// timestamps fall back to a boot-counter label so locally stored rows stay
// distinguishable.
type Clock struct {
	mu        sync.Mutex
	synced    bool
	offset    time.Duration
	bootCount uint64

	now func() time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// SetBoot records the current wake number and whether a previous cycle in
// this power session already synced the clock.
func (c *Clock) SetBoot(count uint64, synced bool) {
	c.mu.Lock()
	c.bootCount = count
	c.synced = synced
	c.mu.Unlock()
}

// MarkSynced records a successful sync and the measured offset against the
// time authority.
func (c *Clock) MarkSynced(offset time.Duration) {
	c.mu.Lock()
	c.synced = true
	c.offset = offset
	c.mu.Unlock()
}

func (c *Clock) Synced() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.synced
}

// Timestamp returns the ISO-8601 timestamp for the current instant, or the
// boot-counter label when the clock is unsynced.
func (c *Clock) Timestamp() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.synced {
		return fmt.Sprintf("boot-%d", c.bootCount)
	}
	return c.now().Add(c.offset).UTC().Format(stampLayout)
}

// LogStamp is like Timestamp but returns an empty string when unsynced;
// diagnostic lines carry an empty bracket instead of a boot label.
func (c *Clock) LogStamp() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.synced {
		return ""
	}
	return c.now().Add(c.offset).UTC().Format(stampLayout)
}
