package metrics

import "time"

// ring is a fixed-capacity point buffer. Appending past capacity evicts the
// oldest entry. Not safe for concurrent use; the registry lock covers it.
type ring struct {
	buf  []Point
	head int // index of the oldest entry
	n    int // number of live entries
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]Point, capacity)}
}

func (r *ring) push(p Point) {
	if r.n < len(r.buf) {
		r.buf[(r.head+r.n)%len(r.buf)] = p
		r.n++
		return
	}
	r.buf[r.head] = p
	r.head = (r.head + 1) % len(r.buf)
}

func (r *ring) len() int { return r.n }

// at returns the i-th entry in insertion order, oldest first.
func (r *ring) at(i int) Point { return r.buf[(r.head+i)%len(r.buf)] }

// tail returns up to k most recent entries, oldest first, as a fresh slice.
func (r *ring) tail(k int) []Point {
	if k > r.n {
		k = r.n
	}
	if k == 0 {
		return nil
	}
	out := make([]Point, k)
	for i := 0; i < k; i++ {
		out[i] = r.at(r.n - k + i)
	}
	return out
}

// dropOlderThan evicts entries whose timestamp is before cutoff and reports
// how many were removed. Entries are time-ordered under a single writer, so
// eviction stops at the first retained point.
func (r *ring) dropOlderThan(cutoff time.Time) int {
	removed := 0
	for r.n > 0 && r.buf[r.head].Timestamp.Before(cutoff) {
		r.head = (r.head + 1) % len(r.buf)
		r.n--
		removed++
	}
	return removed
}
