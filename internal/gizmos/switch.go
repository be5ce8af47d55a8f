// vi: sw=4 ts=4:

/*

	Mnemonic:	switch
	Abstract:	Represents a switch (datapath) and its ordered set of physical ports.
				Ports are numbered from 1 and each is either attached to exactly one
				peer endpoint or left unattached; the port-to-peer map is static and
				derived once from the topology description at startup.
	Date:		29 July 2026
*/

package gizmos

import "fmt"

// Switch is a datapath identified by a symbolic name (s{i}) and a numeric
// datapath id, bearing an ordered set of physical ports.
type Switch struct {
	name string
	dpid uint64
	// ports maps port number -> the name of the peer endpoint attached there
	// (another switch, or a host). A missing entry means the port is unattached.
	ports map[int]string
}

// MkSwitch builds an empty switch with no attached ports yet.
func MkSwitch(name string, dpid uint64) *Switch {
	return &Switch{name: name, dpid: dpid, ports: make(map[int]string)}
}

// Name returns the switch's symbolic name, e.g. "s2".
func (s *Switch) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Dpid returns the switch's numeric datapath id.
func (s *Switch) Dpid() uint64 {
	if s == nil {
		return 0
	}
	return s.dpid
}

// Attach records that port p on this switch connects to the named peer
// endpoint. Called once per port while the topology is being built.
func (s *Switch) Attach(p int, peer string) {
	if s == nil {
		return
	}
	s.ports[p] = peer
}

// PeerAt returns the endpoint name attached to port p, or "" if the port is
// unattached.
func (s *Switch) PeerAt(p int) string {
	if s == nil {
		return ""
	}
	return s.ports[p]
}

// PortTo returns the port number on this switch that connects to the named
// peer, and true if found.
func (s *Switch) PortTo(peer string) (int, bool) {
	if s == nil {
		return 0, false
	}
	for p, pe := range s.ports {
		if pe == peer {
			return p, true
		}
	}
	return 0, false
}

func (s *Switch) String() string {
	if s == nil {
		return "<nil-switch>"
	}
	return fmt.Sprintf("%s(dpid=%d, %d ports)", s.name, s.dpid, len(s.ports))
}
