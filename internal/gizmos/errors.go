// vi: sw=4 ts=4:

/*

	Mnemonic:	errors
	Abstract:	Sentinel error values surfaced by the topology and path engine. Callers
				in managers should compare against these with errors.Is rather than
				string matching.
	Date:		29 July 2026
*/

package gizmos

import "errors"

var (
	// ErrNoPath indicates no simple path exists between two endpoints, or that no
	// sufficient-headroom path could be found for a video admission after
	// displacement was attempted.
	ErrNoPath = errors.New("gizmos: no path")

	// ErrNoCapacity indicates that paths exist but none meet the requested
	// headroom threshold.
	ErrNoCapacity = errors.New("gizmos: no capacity")

	// ErrUnknownEndpoint indicates a named host or switch is not part of the topology.
	ErrUnknownEndpoint = errors.New("gizmos: unknown endpoint")

	// ErrUnattachedPort indicates a (switch, port) pair with no peer.
	ErrUnattachedPort = errors.New("gizmos: port has no peer")
)
