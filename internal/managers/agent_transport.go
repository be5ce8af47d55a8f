// vi: sw=4 ts=4:

/*

	Mnemonic:	agent_transport
	Abstract:	The southbound boundary: everything the controller needs from
				the switches themselves -- port counters, per-flow rate
				samples, and rule installation -- behind one interface. The
				wire format collapses to a single in-process interface, with
				SimulatedTransport standing in for a real OpenFlow 1.3 speaker
				(e.g. an ovs-ofctl-backed agent) so the admission and monitor
				loops can be exercised without a real dataplane.
	Date:		29 July 2026
*/

package managers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/meshctl/controller/internal/bleat"
	"github.com/meshctl/controller/internal/gizmos"
)

// AgentTransport is everything the controller needs from a southbound
// OpenFlow speaker attached to one switch.
type AgentTransport interface {
	RequestPortStats(ctx context.Context, sw *gizmos.Switch) (PortStatsReply, error)
	RequestFlowStats(ctx context.Context, sw *gizmos.Switch) (FlowStatsReply, error)
	InstallRule(ctx context.Context, sw *gizmos.Switch, rule FlowMod) error
}

// sampleKey addresses one pinned synthetic flow-stats sample.
type sampleKey struct {
	sw, ethSrc, ethDst string
}

// SimulatedTransport is an in-memory stand-in for a fleet of OpenFlow agents.
// It keeps each switch's installed rule table and fabricates port/flow stats
// from that table, so the controller's admission and monitor loops can be
// exercised without a real dataplane. Safe for concurrent use; the monitor
// loop's errgroup fan-out hits this from multiple goroutines at once.
type SimulatedTransport struct {
	mu    sync.Mutex
	rules map[string][]FlowMod  // switch name -> installed rules, install order
	rates map[sampleKey]float64 // pinned synthetic flow rates, for tests/demo
	sheep *bleat.Sheep

	// cumTx/ticks fabricate ever-increasing port counters across repeated
	// RequestPortStats calls, the way a real switch's byte counters only
	// ever grow, so the aggregator always has a positive delta to compute.
	cumTx map[string]map[int]uint64
	ticks int
}

// MkSimulatedTransport builds an empty simulated transport. sheep may be nil.
func MkSimulatedTransport(sheep *bleat.Sheep) *SimulatedTransport {
	return &SimulatedTransport{
		rules: make(map[string][]FlowMod),
		rates: make(map[sampleKey]float64),
		cumTx: make(map[string]map[int]uint64),
		sheep: sheep,
	}
}

// InstallRule records rule as installed on sw, overwriting any prior rule for
// the same (EthSrc, EthDst) pair -- a fresh steering command per push rather
// than diffing against what was already there.
func (s *SimulatedTransport) InstallRule(ctx context.Context, sw *gizmos.Switch, rule FlowMod) error {
	if sw == nil {
		return fmt.Errorf("%w: nil switch", ErrTransport)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := sw.Name()
	list := s.rules[name]
	for i, r := range list {
		if r.EthSrc == rule.EthSrc && r.EthDst == rule.EthDst {
			list[i] = rule
			s.rules[name] = list
			s.sheep.Baa(2, "sim-transport: %s: replaced rule %s->%s out=%d", name, rule.EthSrc, rule.EthDst, rule.OutPort)
			return nil
		}
	}
	s.rules[name] = append(list, rule)
	s.sheep.Baa(2, "sim-transport: %s: installed rule %s->%s out=%d", name, rule.EthSrc, rule.EthDst, rule.OutPort)
	return nil
}

// RequestPortStats returns one synthetic counter per port the switch has
// rules referencing as an output port, with byte counts proportional to the
// number of rules targeting that port -- enough signal for the monitor loop's
// fan-out and rate aggregation to exercise real code paths without a live
// dataplane. Every path is programmed in both directions, so each port's
// received count is reported equal to its transmitted count.
func (s *SimulatedTransport) RequestPortStats(ctx context.Context, sw *gizmos.Switch) (PortStatsReply, error) {
	if sw == nil {
		return PortStatsReply{}, fmt.Errorf("%w: nil switch", ErrTransport)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticks++
	if s.cumTx[sw.Name()] == nil {
		s.cumTx[sw.Name()] = make(map[int]uint64)
	}
	ports := s.cumTx[sw.Name()]
	for _, r := range s.rules[sw.Name()] {
		ports[r.OutPort] += 1 << 20 // one mebibyte per active rule sharing that port, this tick
	}

	reply := PortStatsReply{Switch: sw.Name()}
	for port, n := range ports {
		reply.Ports = append(reply.Ports, PortCounter{
			Port:     port,
			RxBytes:  n,
			TxBytes:  n,
			Duration: time.Duration(s.ticks) * time.Second,
		})
	}
	return reply, nil
}

// RequestFlowStats returns one rate sample per installed rule on the switch,
// in capacity units. A pinned rate set via SetSampleRate is reported
// verbatim; otherwise the sample reads zero, the quiescent default.
func (s *SimulatedTransport) RequestFlowStats(ctx context.Context, sw *gizmos.Switch) (FlowStatsReply, error) {
	if sw == nil {
		return FlowStatsReply{}, fmt.Errorf("%w: nil switch", ErrTransport)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reply := FlowStatsReply{Switch: sw.Name()}
	for _, r := range s.rules[sw.Name()] {
		rate := s.rates[sampleKey{sw.Name(), r.EthSrc, r.EthDst}]
		reply.Entries = append(reply.Entries, FlowStatsEntry{EthSrc: r.EthSrc, EthDst: r.EthDst, Rate: rate})
	}
	return reply, nil
}

// SetSampleRate pins the synthetic rate RequestFlowStats reports for one
// (ethSrc,ethDst) pair on sw, standing in for a real traffic generator
// feeding the simulated dataplane.
func (s *SimulatedTransport) SetSampleRate(sw, ethSrc, ethDst string, rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[sampleKey{sw, ethSrc, ethDst}] = rate
}
