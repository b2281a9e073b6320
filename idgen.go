package match

import (
	"sync"
	"time"
)

const defaultIDRefreshInterval = 10 * time.Second

// IdGenerator allocates order IDs that stay unique across restarts by
// prefixing a date-derived bit pattern onto a per-day counter.
//
// year*1000 + day-of-year fits in 22 bits through year 3099; the counter
// gets the remaining 41 bits, which leaves room for about 2 trillion
// order IDs per day. The reference date is re-checked at most once per
// refresh interval to keep the hot path to a mutex and an increment.
type IdGenerator struct {
	mu              sync.Mutex
	referenceDate   time.Time
	leadingBitMask  int64
	orderCount      int64
	lastCall        time.Time
	refreshInterval time.Duration
	now             func() time.Time
}

// NewIdGenerator creates a generator anchored on the current date.
func NewIdGenerator() *IdGenerator {
	return newIdGenerator(time.Now, defaultIDRefreshInterval)
}

func newIdGenerator(now func() time.Time, refreshInterval time.Duration) *IdGenerator {
	g := &IdGenerator{
		refreshInterval: refreshInterval,
		now:             now,
		lastCall:        now(),
	}
	g.setReferenceDate(now())
	return g
}

func dateToLeadingBits(date time.Time) int64 {
	dateNum := int64(date.Year())*1000 + int64(date.YearDay())
	// 64-bit int - 1 sign bit - 22 date bits = 41 counter bits
	return dateNum << (64 - 1 - 22)
}

func (g *IdGenerator) setReferenceDate(date time.Time) {
	g.referenceDate = date
	g.leadingBitMask = dateToLeadingBits(date)
	g.orderCount = 0
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// NextID returns the next order ID. IDs are strictly increasing within a
// process lifetime.
func (g *IdGenerator) NextID() int64 {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if now.Sub(g.lastCall) > g.refreshInterval {
		if !sameDate(now, g.referenceDate) {
			g.setReferenceDate(now)
		}
	}
	g.lastCall = now
	g.orderCount++
	return g.leadingBitMask | g.orderCount
}
