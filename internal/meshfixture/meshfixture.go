// vi: sw=4 ts=4:

/*

	Mnemonic:	meshfixture
	Abstract:	Builds the reference 7-switch, 19-host mesh used by the test
				suite and, via cmd/meshctld -demo, by operators kicking the
				tires on the controller without a real emulated network
				attached. Switches are wired in a ring (s1-s2-s3-s4-s5-s6-s7-s1)
				so that every switch has at least one alternate route around
				the ring, which is what gives the displacement scenarios in
				the admission controller's tests somewhere to send a rerouted
				best-effort flow.
	Date:		29 July 2026
*/

package meshfixture

import "github.com/meshctl/controller/internal/gizmos"

// Capacity is the nominal per-link capacity used throughout the reference
// mesh, in the mebibit convention.
const Capacity = 100.0

// hostsPerSwitch assigns h1..h19 across s1..s7.
var hostsPerSwitch = map[string][]int{
	"s1": {1, 2, 3},
	"s2": {4, 5, 6},
	"s3": {7, 8, 9},
	"s4": {10, 11, 12},
	"s5": {13, 14, 15},
	"s6": {16, 17},
	"s7": {18, 19},
}

var ringOrder = []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7"}

// Build returns a fresh copy of the reference mesh topology. Each call
// builds an independent Topology so tests don't share mutable state.
func Build() *gizmos.Topology {
	t := gizmos.MkTopology()

	for _, sw := range ringOrder {
		t.AddSwitch(gizmos.MkSwitch(sw, dpidFor(sw)))
	}

	nextPort := map[string]int{}
	for _, sw := range ringOrder {
		nextPort[sw] = 1
	}

	for _, sw := range ringOrder {
		for _, hi := range hostsPerSwitch[sw] {
			hname := hostName(hi)
			t.AddHost(gizmos.MkHost(hname, gizmos.MacForIndex(hi), ip4For(hi)))
			p := nextPort[sw]
			nextPort[sw] = p + 1
			t.AddLink(sw, p, hname, 0, Capacity)
		}
	}

	for i, sw := range ringOrder {
		next := ringOrder[(i+1)%len(ringOrder)]
		pa := nextPort[sw]
		nextPort[sw] = pa + 1
		pb := nextPort[next]
		nextPort[next] = pb + 1
		t.AddLink(sw, pa, next, pb, Capacity)
	}

	return t
}

func dpidFor(sw string) uint64 {
	var n int
	for i := 1; i < len(sw); i++ {
		n = n*10 + int(sw[i]-'0')
	}
	return uint64(n)
}

func hostName(i int) string {
	return "h" + itoa(i)
}

func ip4For(i int) string {
	return "10.0.0." + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var b []byte
	for i > 0 {
		b = append([]byte{byte('0' + i%10)}, b...)
		i /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

// BuildLongChain returns a straight-line topology of n switches
// (s1-s2-...-sn) with a host attached to each end, used to exercise the
// H_MAX enumeration bound: the two end hosts are n+1 hops apart, so with
// n == HMax+2 they are HMax+3 hops apart, beyond what AllSimplePaths will
// enumerate.
func BuildLongChain(n int) *gizmos.Topology {
	t := gizmos.MkTopology()

	swName := func(i int) string { return "s" + itoa(i) }

	for i := 1; i <= n; i++ {
		t.AddSwitch(gizmos.MkSwitch(swName(i), uint64(i)))
	}

	t.AddHost(gizmos.MkHost("hfirst", gizmos.MacForIndex(1001), "10.1.0.1"))
	t.AddHost(gizmos.MkHost("hlast", gizmos.MacForIndex(1002), "10.1.0.2"))

	t.AddLink("hfirst", 0, swName(1), 1, Capacity)
	for i := 1; i < n; i++ {
		t.AddLink(swName(i), 2, swName(i+1), 1, Capacity)
	}
	t.AddLink(swName(n), 2, "hlast", 0, Capacity)

	return t
}
