// vi: sw=4 ts=4:

/*

	Mnemonic:	freshness
	Abstract:	A small window type used to decide whether a sampled value (an
				active flow's most recent transmit rate) is still fresh enough
				to trust for the bandwidth displacement tie-break, without
				keeping any history beyond the single most recent sample and
				its timestamp. This is descended from a reservation time
				window but repurposed here to track sample recency rather than
				a pledge's commence/expiry lifetime.
	Date:		29 July 2026
*/

package gizmos

import "time"

// Freshness records when a sampled value was last refreshed and how many
// consecutive refresh ticks have been missed since.
type Freshness struct {
	lastSeen time.Time
	missed   int
}

// MkFreshness returns a Freshness stamped as seen right now.
func MkFreshness(now time.Time) Freshness {
	return Freshness{lastSeen: now}
}

// Touch marks the sample as refreshed at now and resets the missed count.
func (f *Freshness) Touch(now time.Time) {
	f.lastSeen = now
	f.missed = 0
}

// Miss records that a refresh tick passed without a new sample.
func (f *Freshness) Miss() {
	f.missed++
}

// Stale reports whether the sample has missed more than the given number of
// consecutive refresh ticks.
func (f Freshness) Stale(allowedMisses int) bool {
	return f.missed > allowedMisses
}

// Age returns how long it has been since the sample was last refreshed.
func (f Freshness) Age(now time.Time) time.Duration {
	if f.lastSeen.IsZero() {
		return 0
	}
	return now.Sub(f.lastSeen)
}
