package gizmos_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meshctl/controller/internal/gizmos"
	"github.com/meshctl/controller/internal/meshfixture"
)

func TestShortestPathTrivial(t *testing.T) {
	topo := meshfixture.Build()

	path, err := topo.ShortestPath("h1", "h4")
	require.NoError(t, err)
	require.True(t, gizmos.Simple(path))
	require.Equal(t, "h1", path[0])
	require.Equal(t, "h4", path[len(path)-1])
	require.Equal(t, []string{"h1", "s1", "s2", "h4"}, path)
}

func TestShortestPathSameNode(t *testing.T) {
	topo := meshfixture.Build()
	path, err := topo.ShortestPath("h1", "h1")
	require.NoError(t, err)
	require.Equal(t, []string{"h1"}, path)
}

func TestShortestPathNoPathUnknownEndpoint(t *testing.T) {
	topo := meshfixture.Build()
	_, err := topo.ShortestPath("h1", "hnope")
	require.ErrorIs(t, err, gizmos.ErrNoPath)
}

func TestAllSimplePathsFindsMultipleRoutes(t *testing.T) {
	topo := meshfixture.Build()

	paths, err := topo.AllSimplePaths("h2", "h5", nil)
	require.NoError(t, err)
	require.True(t, len(paths) >= 2, "expected both the direct and ring route")

	for _, p := range paths {
		require.True(t, gizmos.Simple(p))
	}
}

func TestAllSimplePathsExcludesFilteredEdge(t *testing.T) {
	topo := meshfixture.Build()

	direct := []string{"h2", "s1", "s2", "h5"}
	paths, err := topo.AllSimplePaths("h2", "h5", direct)
	require.NoError(t, err)

	for _, p := range paths {
		for i := 0; i+1 < len(p); i++ {
			require.False(t, p[i] == "s1" && p[i+1] == "s2")
			require.False(t, p[i] == "s2" && p[i+1] == "s1")
		}
	}
}

func TestAllSimplePathsBoundedByHMax(t *testing.T) {
	topo := meshfixture.BuildLongChain(gizmos.HMax + 2)

	_, err := topo.AllSimplePaths("hfirst", "hlast", nil)
	require.ErrorIs(t, err, gizmos.ErrNoPath)

	// but the shortest path primitive, which is not bounded, still finds it
	path, err := topo.ShortestPath("hfirst", "hlast")
	require.NoError(t, err)
	require.Equal(t, gizmos.HMax+3, len(path)-1)
}

func TestPeerLookup(t *testing.T) {
	topo := meshfixture.Build()

	peer, _, err := topo.PeerLookup("s1", 4)
	require.NoError(t, err)
	require.Equal(t, "s2", peer)

	_, _, err = topo.PeerLookup("s1", 999)
	require.ErrorIs(t, err, gizmos.ErrUnattachedPort)

	_, _, err = topo.PeerLookup("nope", 1)
	require.ErrorIs(t, err, gizmos.ErrUnknownEndpoint)
}
