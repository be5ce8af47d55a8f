package gizmos_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/meshctl/controller/internal/gizmos"
	"github.com/meshctl/controller/internal/meshfixture"
)

func TestSummarizeFreshTopologyHasFullHeadroom(t *testing.T) {
	topo := meshfixture.Build()

	path, err := topo.ShortestPath("h1", "h4")
	require.NoError(t, err)

	sum, err := gizmos.Summarize(topo, path, 20)
	require.NoError(t, err)
	require.Equal(t, 3, sum.HopCount)
	require.Equal(t, meshfixture.Capacity, sum.MinBW)
	require.Empty(t, sum.Exceeded)
}

func TestSummarizeFlagsExceededEdges(t *testing.T) {
	topo := meshfixture.Build()
	l := topo.LinkBetween("s1", "s2")
	require.NotNil(t, l)
	l.SetUtilization("s1", "s2", 85) // headroom now 15, under the default video limit of 20

	path := []string{"h1", "s1", "s2", "h4"}
	sum, err := gizmos.Summarize(topo, path, 20)
	require.NoError(t, err)
	require.Equal(t, []int{1}, sum.Exceeded)
	require.Equal(t, meshfixture.Capacity-85, sum.MinBW)

	want := gizmos.Summary{Nodes: path, HopCount: 3, MinBW: meshfixture.Capacity - 85, Exceeded: []int{1}}
	if diff := cmp.Diff(want, sum); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestSummarizeRejectsNonSimplePath(t *testing.T) {
	topo := meshfixture.Build()
	_, err := gizmos.Summarize(topo, []string{"h1", "s1", "h1"}, 20)
	require.Error(t, err)
}
