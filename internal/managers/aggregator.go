// vi: sw=4 ts=4:

/*

	Mnemonic:	aggregator
	Abstract:	The port-stats and flow-stats monitor loop. Wakes on a fixed
				tick, fans stats requests out to every known switch bounded
				by an errgroup, folds each reply into the topology edges and
				the active-flow registry as it arrives, and never lets a slow
				switch hold up the others. The fan-out is explicit goroutines
				rather than a single-threaded scan, since stats collection is
				I/O bound per switch.
	Date:		29 July 2026
*/

package managers

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meshctl/controller/internal/bleat"
	"github.com/meshctl/controller/internal/gizmos"
)

// Aggregator runs the periodic stats tick over a set of switches, updating
// a Controller's topology and active-flow registry from the replies. The
// switches to poll are passed to Run or Tick; the aggregator itself keeps
// only the previous port counter samples.
type Aggregator struct {
	ctrl      *Controller
	transport AgentTransport
	interval  time.Duration
	sheep     *bleat.Sheep

	prevDur map[string]map[int]time.Duration
	prevRx  map[string]map[int]uint64
	prevTx  map[string]map[int]uint64
}

// MkAggregator builds an aggregator that updates ctrl's topology and
// registry; it does not capture a switch list.
func MkAggregator(ctrl *Controller, transport AgentTransport, interval time.Duration, sheep *bleat.Sheep) *Aggregator {
	return &Aggregator{
		ctrl:      ctrl,
		transport: transport,
		interval:  interval,
		sheep:     sheep,
		prevDur:   make(map[string]map[int]time.Duration),
		prevRx:    make(map[string]map[int]uint64),
		prevTx:    make(map[string]map[int]uint64),
	}
}

// Run blocks until ctx is cancelled, waking every interval to collect stats.
// A slow tick delays the next one rather than piling up (the ticker
// is drained before being re-armed implicitly by time.Ticker's own
// semantics: a tick fires again only once the channel has been read).
func (a *Aggregator) Run(ctx context.Context, switches []*gizmos.Switch) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Tick(ctx, switches)
		}
	}
}

// Tick runs one stats collection round over switches: a bounded concurrent
// fan-out, each reply folded in as it arrives.
func (a *Aggregator) Tick(ctx context.Context, switches []*gizmos.Switch) {
	g, gctx := errgroup.WithContext(ctx)

	for _, sw := range switches {
		sw := sw
		g.Go(func() error {
			a.collectPort(gctx, sw)
			a.collectFlow(gctx, sw)
			return nil // a single switch's failure must not cancel the others
		})
	}

	_ = g.Wait()
}

func (a *Aggregator) collectPort(ctx context.Context, sw *gizmos.Switch) {
	reply, err := a.transport.RequestPortStats(ctx, sw)
	if err != nil {
		a.sheep.Baa(1, "aggregator: port stats for %s failed: %v", sw.Name(), err)
		return
	}

	a.ctrl.mu.Lock()
	defer a.ctrl.mu.Unlock()

	for _, pc := range reply.Ports {
		a.applyPortDelta(sw, pc)
	}
}

// applyPortDelta converts a cumulative port counter reading into a
// directional utilization update on the edge it belongs to.
// Caller must hold a.ctrl.mu.
func (a *Aggregator) applyPortDelta(sw *gizmos.Switch, pc PortCounter) {
	name := sw.Name()
	if a.prevDur[name] == nil {
		a.prevDur[name] = make(map[int]time.Duration)
		a.prevRx[name] = make(map[int]uint64)
		a.prevTx[name] = make(map[int]uint64)
	}

	prevDur, haveDur := a.prevDur[name][pc.Port]
	prevRx := a.prevRx[name][pc.Port]
	prevTx := a.prevTx[name][pc.Port]

	a.prevDur[name][pc.Port] = pc.Duration
	a.prevRx[name][pc.Port] = pc.RxBytes
	a.prevTx[name][pc.Port] = pc.TxBytes

	if !haveDur {
		return // first sample for this port, no delta to compute yet
	}

	dt := (pc.Duration - prevDur).Seconds()
	if dt <= 0 {
		return
	}

	rxRate := mebibitsPerSec(pc.RxBytes-prevRx, dt)
	txRate := mebibitsPerSec(pc.TxBytes-prevTx, dt)

	peer, _, err := a.ctrl.topo.PeerLookup(name, pc.Port)
	if err != nil {
		return // unattached port, nothing to update
	}

	if l := a.ctrl.topo.LinkBetween(name, peer); l != nil {
		l.SetUtilization(name, peer, txRate)
		l.SetUtilization(peer, name, rxRate)
	}
}

// mebibitsPerSec converts a byte delta over dt seconds into the mebibit
// capacity unit used throughout.
func mebibitsPerSec(byteDelta uint64, dt float64) float64 {
	bits := float64(byteDelta) * 8
	return bits / dt / (1024 * 1024)
}

func (a *Aggregator) collectFlow(ctx context.Context, sw *gizmos.Switch) {
	reply, err := a.transport.RequestFlowStats(ctx, sw)
	if err != nil {
		a.sheep.Baa(1, "aggregator: flow stats for %s failed: %v", sw.Name(), err)
		return
	}

	a.ctrl.mu.Lock()
	defer a.ctrl.mu.Unlock()

	seen := make(map[string]bool, len(reply.Entries))
	for _, e := range reply.Entries {
		src, dst := hostFor(a.ctrl.topo, e.EthSrc), hostFor(a.ctrl.topo, e.EthDst)
		if src == "" || dst == "" {
			continue
		}
		seen[flowKey(src, dst)] = true
		if !a.ctrl.registry.UpdateRate(src, dst, e.Rate, time.Now()) {
			continue // not an active best-effort flow (e.g. a video path's rule); nothing to purge
		}
	}

	// Any registered flow this switch didn't mention this tick missed a
	// refresh; staleness is used by the BANDWIDTH tie-break.
	for _, rec := range a.ctrl.registry.All() {
		if !seen[flowKey(rec.Src, rec.Dst)] && pathTouchesSwitch(rec.Path, sw.Name()) {
			a.ctrl.registry.MarkMissedTick(rec.Src, rec.Dst)
		}
	}
}

func pathTouchesSwitch(path []string, sw string) bool {
	for _, n := range path {
		if n == sw {
			return true
		}
	}
	return false
}

// hostFor resolves a MAC back to its host name, the inverse of Host.Mac().
func hostFor(t *gizmos.Topology, mac string) string {
	return t.HostByMac(mac)
}
