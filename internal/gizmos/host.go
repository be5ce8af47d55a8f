// vi: sw=4 ts=4:

/*

	Mnemonic:	host
	Abstract:	Represents an end host (VM or bare physical box) attached to exactly
				one switch port. Hosts are static for the lifetime of the controller;
				they are created once from the topology description and never change.
	Date:		29 July 2026
*/

package gizmos

import "fmt"

// Host is an end point identified by a symbolic name (h{i}), a 48-bit MAC and
// an IPv4 address.
type Host struct {
	name string
	mac  string
	ip4  string
}

// MkHost builds a host. The MAC is expected to already be formatted as six
// colon separated hex bytes; see MacForIndex to derive one from a 1-indexed
// host number the way the static topology description does.
func MkHost(name string, mac string, ip4 string) *Host {
	return &Host{name: name, mac: mac, ip4: ip4}
}

// MacForIndex derives the deterministic MAC address for the i'th (1-indexed)
// host: the 48-bit integer i rendered as six colon separated bytes.
func MacForIndex(i int) string {
	b := [6]byte{}
	v := uint64(i)
	for n := 5; n >= 0; n-- {
		b[n] = byte(v & 0xff)
		v >>= 8
	}
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", b[0], b[1], b[2], b[3], b[4], b[5])
}

// Name returns the host's symbolic name, e.g. "h3".
func (h *Host) Name() string {
	if h == nil {
		return ""
	}
	return h.name
}

// Mac returns the host's MAC address.
func (h *Host) Mac() string {
	if h == nil {
		return ""
	}
	return h.mac
}

// IP4 returns the host's IPv4 address.
func (h *Host) IP4() string {
	if h == nil {
		return ""
	}
	return h.ip4
}

func (h *Host) String() string {
	if h == nil {
		return "<nil-host>"
	}
	return fmt.Sprintf("%s(%s/%s)", h.name, h.mac, h.ip4)
}
