// vi: sw=4 ts=4:

/*

	Mnemonic:	types
	Abstract:	Shared types for the admission/displacement controller: the
				traffic class tag, errors specific to admission (the topology
				package owns NoPath/NoCapacity; this file adds the ones that
				only make sense once a registry and a transport exist), and
				the flow-mod/stats-reply shapes the southbound agent
				transport trades in.
	Date:		29 July 2026
*/

package managers

import (
	"errors"
	"time"
)

// FlowClass tags an admission request as video (guaranteed headroom, never
// registered, may displace) or other (best-effort, registered, may be
// displaced). Modeled as a small enum and switched on once in Admit rather
// than as an interface hierarchy.
type FlowClass int

const (
	Video FlowClass = iota
	Other
)

func (c FlowClass) String() string {
	if c == Video {
		return "video"
	}
	return "other"
}

var (
	// ErrDisplacementForbidden is returned when a video admission needs to
	// displace a best-effort flow but PathSelectAlgorithm is NO_CHANGE.
	ErrDisplacementForbidden = errors.New("managers: displacement forbidden by policy")

	// ErrUnknownFlow is returned by Complete for a flow not present in the
	// active-flow registry. The REST layer maps this to a success response
	// callers of the Go API still see the sentinel.
	ErrUnknownFlow = errors.New("managers: unknown flow")

	// ErrTransport is returned when a southbound rule install or stats
	// request fails to send.
	ErrTransport = errors.New("managers: southbound transport error")
)

// FlowMod is the single rule the flow programmer installs on one switch: a
// match on (eth_src, eth_dst) and an output action, always at priority 1.
type FlowMod struct {
	EthSrc   string
	EthDst   string
	OutPort  int
	Priority int
}

// PortCounter is one switch port's cumulative byte counters at a point in
// time, as reported by a PortStatsReply.
type PortCounter struct {
	Port     int
	RxBytes  uint64
	TxBytes  uint64
	Duration time.Duration
}

// PortStatsReply carries every port counter for one switch, as returned by
// an OFPT_PORT_STATS_REPLY (or the simulated agent's equivalent).
type PortStatsReply struct {
	Switch string
	Ports  []PortCounter
}

// FlowStatsEntry is one (src,dst) flow's transmit rate sample, as reported by
// an OFPT_FLOW_STATS_REPLY aggregated per (eth_src, eth_dst) match.
type FlowStatsEntry struct {
	EthSrc string
	EthDst string
	Rate   float64 // already expressed in capacity units
}

// FlowStatsReply carries every per-flow rate sample collected from one
// switch on a single monitor tick.
type FlowStatsReply struct {
	Switch  string
	Entries []FlowStatsEntry
}
