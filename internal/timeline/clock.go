package timeline

// seqClock stamps events with their insertion order.
//
// Sequence numbers break ties between equal timestamps, which makes the
// sort stable with respect to source declaration order. A clock belongs to
// one fusion and is only advanced from its goroutine.
type seqClock struct {
	seq int64
}

// Next returns the next sequence number, starting at 1.
func (c *seqClock) Next() int64 {
	c.seq++
	return c.seq
}
