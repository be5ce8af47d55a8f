// vi: sw=4 ts=4:

/*

	Mnemonic:	programmer
	Abstract:	Turns a node path into the set of per-switch flow-mod rules
				that realize it, and pushes them through an AgentTransport.
				Walks a path's switch list and builds a forward and a return
				match/action rule at each switch hop, since every switch in
				this topology is a plain L2 forwarder.
	Date:		29 July 2026
*/

package managers

import (
	"context"
	"fmt"

	"github.com/meshctl/controller/internal/gizmos"
)

// basePriority is the priority every installed rule carries; there is only
// ever one rule per (switch, eth_src, eth_dst) so priorities never need to be
// differentiated against each other.
const basePriority = 1

// Program installs the forward and return-direction flow-mods needed to
// carry traffic between the two hosts at the ends of path along every switch
// hop in between. path must be the full node sequence host...switches...host
// as returned by Topology.ShortestPath or Topology.AllSimplePaths. Installs
// both directions so either host can originate traffic over this path.
//
// Per the reference behavior, a rule-install failure partway through is not
// rolled back: whatever was already pushed stays pushed, and the first error
// encountered is returned to the caller.
func Program(ctx context.Context, t *gizmos.Topology, transport AgentTransport, path []string) error {
	if len(path) < 2 {
		return nil // single-node path, nothing to program
	}
	srcHost, dstHost := path[0], path[len(path)-1]

	for i := 1; i+1 < len(path); i++ {
		sw := t.Switch(path[i])
		if sw == nil {
			return fmt.Errorf("%w: %s is not a switch", ErrTransport, path[i])
		}

		outFwd, ok := sw.PortTo(path[i+1])
		if !ok {
			return fmt.Errorf("%w: %s has no port toward %s", ErrTransport, path[i], path[i+1])
		}
		outRev, ok := sw.PortTo(path[i-1])
		if !ok {
			return fmt.Errorf("%w: %s has no port toward %s", ErrTransport, path[i], path[i-1])
		}

		if err := transport.InstallRule(ctx, sw, FlowMod{
			EthSrc:   srcHostMac(t, srcHost),
			EthDst:   srcHostMac(t, dstHost),
			OutPort:  outFwd,
			Priority: basePriority,
		}); err != nil {
			return fmt.Errorf("programming %s forward %s->%s: %w", path[i], srcHost, dstHost, err)
		}

		if err := transport.InstallRule(ctx, sw, FlowMod{
			EthSrc:   srcHostMac(t, dstHost),
			EthDst:   srcHostMac(t, srcHost),
			OutPort:  outRev,
			Priority: basePriority,
		}); err != nil {
			return fmt.Errorf("programming %s return %s->%s: %w", path[i], dstHost, srcHost, err)
		}
	}

	return nil
}

// srcHostMac resolves a host name to its MAC, falling back to the bare name
// if the topology has no record of it -- callers only ever pass the
// endpoints of a path already validated against the same topology, so this
// is defensive rather than an expected path.
func srcHostMac(t *gizmos.Topology, name string) string {
	if h := t.Host(name); h != nil {
		return h.Mac()
	}
	return name
}
