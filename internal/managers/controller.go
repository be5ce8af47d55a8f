// vi: sw=4 ts=4:

/*

	Mnemonic:	controller
	Abstract:	The admission and displacement engine. One Controller owns a
				topology, an active-flow registry, a southbound transport and
				a sheep, and serializes every admission end to end behind a
				single write lock -- a mutex held for the call's duration
				rather than a channel-fed actor loop, since there is no
				queueing semantics to preserve, only mutual exclusion.
	Date:		29 July 2026
*/

package managers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/meshctl/controller/internal/bleat"
	"github.com/meshctl/controller/internal/config"
	"github.com/meshctl/controller/internal/gizmos"
)

// Controller ties the topology model, the active-flow registry and the
// southbound transport together behind the admission/displacement API.
// Passed explicitly to every caller (REST handlers included) rather than
// reached for as process-wide state, so tests can build isolated instances.
type Controller struct {
	mu sync.Mutex // serializes Admit/Complete end to end

	topo      *gizmos.Topology
	registry  *Registry
	transport AgentTransport
	cfg       config.Admission
	sheep     *bleat.Sheep
}

// MkController builds a controller over an already-populated topology.
func MkController(topo *gizmos.Topology, transport AgentTransport, cfg config.Admission, sheep *bleat.Sheep) *Controller {
	return &Controller{
		topo:      topo,
		registry:  MkRegistry(),
		transport: transport,
		cfg:       cfg,
		sheep:     sheep,
	}
}

// Registry exposes the active-flow registry for the REST debug endpoint.
func (c *Controller) Registry() *Registry {
	return c.registry
}

// Topology exposes the live topology for the monitor loop.
func (c *Controller) Topology() *gizmos.Topology {
	return c.topo
}

// Admit selects a path for a new flow between src and dst under the given
// class and, on success, programs it and (for best-effort flows) registers
// it. Holds the controller's write lock for the full call so the path
// selection, any displacement, and the programming all observe and leave a
// consistent snapshot.
func (c *Controller) Admit(ctx context.Context, src, dst string, class FlowClass) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch class {
	case Video:
		return c.admitVideo(ctx, src, dst)
	default:
		path, err := c.admitOther(ctx, src, dst, nil)
		return path, err
	}
}

// admitVideo runs video admission: shortest path, displacing
// whatever best-effort flow sits on any under-margin edge.
func (c *Controller) admitVideo(ctx context.Context, src, dst string) ([]string, error) {
	path, err := c.topo.ShortestPath(src, dst)
	if err != nil {
		return nil, err
	}

	sum, err := gizmos.Summarize(c.topo, path, c.cfg.LimitVideoBandwidth)
	if err != nil {
		return nil, err
	}

	for _, i := range sum.Exceeded {
		u, v := sum.EdgeAt(i)
		if err := c.displace(ctx, u, v, path); err != nil {
			return nil, err
		}
	}

	if err := Program(ctx, c.topo, c.transport, path); err != nil {
		c.sheep.Baa(1, "admitVideo: program %s->%s failed: %v", src, dst, err)
		return nil, err
	}

	c.sheep.Baa(2, "admitVideo: %s->%s admitted on %v", src, dst, path)
	return path, nil
}

// admitOther runs best-effort admission: enumerate every simple
// path up to HMax, shortest first, accept the first with enough headroom.
// excludePath, when non-nil, is the video path being admitted concurrently
// with a displacement, so the displaced flow does not simply return to the
// edge it was just evicted from.
func (c *Controller) admitOther(ctx context.Context, src, dst string, excludePath []string) ([]string, error) {
	candidates, err := c.topo.AllSimplePathsBounded(src, dst, excludePath, c.cfg.HMax)
	if err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool { return len(candidates[i]) < len(candidates[j]) })

	for _, cand := range candidates {
		sum, err := gizmos.Summarize(c.topo, cand, 0)
		if err != nil {
			continue
		}
		if sum.MinBW >= c.cfg.LimitOtherBandwidth {
			if err := Program(ctx, c.topo, c.transport, cand); err != nil {
				c.sheep.Baa(1, "admitOther: program %s->%s failed: %v", src, dst, err)
				return nil, err
			}
			c.registry.Insert(src, dst, cand, timeNow())
			c.sheep.Baa(2, "admitOther: %s->%s admitted on %v", src, dst, cand)
			return cand, nil
		}
	}

	return nil, fmt.Errorf("%w: %s -> %s", gizmos.ErrNoCapacity, src, dst)
}

// displace runs the displacement procedure for the offending edge
// (u,v) on an incoming video path.
func (c *Controller) displace(ctx context.Context, u, v string, videoPath []string) error {
	if c.cfg.PathSelectAlgorithm == config.NoChange {
		return ErrDisplacementForbidden
	}

	candidates := c.registry.UsingEdge(u, v)
	if len(candidates) == 0 {
		return fmt.Errorf("%w: no flow occupies %s-%s to displace", gizmos.ErrNoPath, u, v)
	}

	sortCandidates(candidates, c.cfg.PathSelectAlgorithm)
	victim := candidates[0]

	// A BANDWIDTH pick whose rate sample has missed more than two refreshes
	// is still honored, but flagged as stale at debug verbosity.
	if c.cfg.PathSelectAlgorithm == config.Bandwidth && victim.fresh.Stale(2) {
		c.sheep.Baa(3, "displace: %s->%s rate %.2f is stale", victim.Src, victim.Dst, victim.Rate)
	}

	c.sheep.Baa(2, "displace: evicting %s->%s from %s-%s", victim.Src, victim.Dst, u, v)

	if _, err := c.admitOther(ctx, victim.Src, victim.Dst, videoPath); err != nil {
		// From the video admission's point of view, a displacement that
		// cannot find the victim a new home means the video path is not
		// admittable over this edge at all -- surfaced
		// uniformly as NoPath rather than leaking the victim's own
		// NoCapacity/NoPath distinction.
		return fmt.Errorf("%w: displacing %s->%s off %s-%s: %v", gizmos.ErrNoPath, victim.Src, victim.Dst, u, v, err)
	}
	return nil
}

// sortCandidates orders displacement candidates per the configured tie-break
// policy, in place.
func sortCandidates(candidates []Record, algo config.PathSelectAlgorithm) {
	switch algo {
	case config.ShortestPath:
		sort.Slice(candidates, func(i, j int) bool { return len(candidates[i].Path) < len(candidates[j].Path) })
	case config.LongestPath:
		sort.Slice(candidates, func(i, j int) bool { return len(candidates[i].Path) > len(candidates[j].Path) })
	case config.Bandwidth:
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].Rate > candidates[j].Rate })
	}
}

// Complete removes the active-flow record for src->dst. Returns
// ErrUnknownFlow if there was none; the REST layer maps that to a success
// response per the idempotence decision, but this Go-level API reports
// the sentinel so callers that care may distinguish.
func (c *Controller) Complete(src, dst string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.registry.Remove(src, dst) {
		return ErrUnknownFlow
	}
	c.sheep.Baa(2, "complete: %s->%s removed", src, dst)
	return nil
}

// timeNow is a seam so tests can stub admission timestamps if they need
// deterministic Freshness behavior; production always uses time.Now.
var timeNow = time.Now
