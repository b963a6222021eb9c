package noise

// replayWindow remembers which of the most recent 64 sequence numbers have
// been opened. Anything older than the window is refused.
type replayWindow struct {
	// seen has bit i set when sequence number highest-i was opened.
	seen    uint64
	highest uint64
}

// CheckAndUpdate reports whether seq may be accepted, and if so records it as
// opened. Call it only once the message carrying seq has been authenticated,
// or forged messages could move the window.
func (rw *replayWindow) CheckAndUpdate(seq uint64) bool {
	// After RFC 2401 appendix C.
	if seq > rw.highest {
		// Slide the window forward. A shift of 64 or more clears it.
		rw.seen <<= seq - rw.highest
		rw.seen |= 1
		rw.highest = seq
		return true
	}

	age := rw.highest - seq
	if age >= 64 {
		return false
	}
	bit := uint64(1) << age
	if rw.seen&bit != 0 {
		return false
	}
	rw.seen |= bit
	return true
}
