package managers_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meshctl/controller/internal/bleat"
	"github.com/meshctl/controller/internal/config"
	"github.com/meshctl/controller/internal/gizmos"
	"github.com/meshctl/controller/internal/managers"
	"github.com/meshctl/controller/internal/meshfixture"
)

func testController(t *testing.T, algo config.PathSelectAlgorithm) (*managers.Controller, *gizmos.Topology) {
	t.Helper()
	topo := meshfixture.Build()
	cfg := config.Default().Admission
	cfg.PathSelectAlgorithm = algo
	ctrl := managers.MkController(topo, managers.MkSimulatedTransport(bleat.Mk(nil, 0)), cfg, bleat.Mk(nil, 0))
	return ctrl, topo
}

// Scenario 1: shortest video path trivially admitted.
func TestAdmitVideoShortestPathTrivial(t *testing.T) {
	ctrl, _ := testController(t, config.Bandwidth)
	path, err := ctrl.Admit(context.Background(), "h1", "h4", managers.Video)
	require.NoError(t, err)
	require.Equal(t, []string{"h1", "s1", "s2", "h4"}, path)
}

// Scenario 2: best-effort flow admitted then displaced by a video request.
func TestAdmitVideoDisplacesBestEffort(t *testing.T) {
	ctrl, topo := testController(t, config.Bandwidth)
	ctx := context.Background()

	path, err := ctrl.Admit(ctx, "h2", "h5", managers.Other)
	require.NoError(t, err)
	require.Equal(t, []string{"h2", "s1", "s2", "h5"}, path)

	topo.LinkBetween("s1", "s2").SetUtilization("s1", "s2", 85)

	vpath, err := ctrl.Admit(ctx, "h3", "h4", managers.Video)
	require.NoError(t, err)
	require.Equal(t, []string{"h3", "s1", "s2", "h4"}, vpath)

	rec, ok := ctrl.Registry().Get("h2", "h5")
	require.True(t, ok)
	require.NotEqual(t, []string{"h2", "s1", "s2", "h5"}, rec.Path, "displaced flow must no longer sit on s1-s2")
	require.False(t, traversesEdge(rec.Path, "s1", "s2"), "displaced path must avoid the saturated edge")
}

func traversesEdge(path []string, u, v string) bool {
	for i := 0; i+1 < len(path); i++ {
		if (path[i] == u && path[i+1] == v) || (path[i] == v && path[i+1] == u) {
			return true
		}
	}
	return false
}

// Scenario 3: displacement impossible because every route to h5 funnels
// through s2 and every edge incident to s2 is saturated.
func TestAdmitVideoDisplacementImpossible(t *testing.T) {
	ctrl, topo := testController(t, config.Bandwidth)
	ctx := context.Background()

	_, err := ctrl.Admit(ctx, "h2", "h5", managers.Other)
	require.NoError(t, err)

	for _, peer := range []string{"s1", "s3", "h4", "h5", "h6"} {
		if l := topo.LinkBetween("s2", peer); l != nil {
			l.SetUtilization("s2", peer, 85)
			l.SetUtilization(peer, "s2", 85)
		}
	}

	_, err = ctrl.Admit(ctx, "h3", "h5", managers.Video)
	require.ErrorIs(t, err, gizmos.ErrNoPath)
}

// Scenario 4: NO_CHANGE policy forbids displacement outright.
func TestAdmitVideoNoChangePolicyForbidsDisplacement(t *testing.T) {
	ctrl, topo := testController(t, config.NoChange)
	ctx := context.Background()

	_, err := ctrl.Admit(ctx, "h2", "h5", managers.Other)
	require.NoError(t, err)

	topo.LinkBetween("s1", "s2").SetUtilization("s1", "s2", 85)

	_, err = ctrl.Admit(ctx, "h3", "h4", managers.Video)
	require.ErrorIs(t, err, managers.ErrDisplacementForbidden)
}

// Scenario 5: completion purges the rate entry so a later tick cannot
// repopulate it.
func TestCompletePurgesFlow(t *testing.T) {
	ctrl, _ := testController(t, config.Bandwidth)
	ctx := context.Background()

	_, err := ctrl.Admit(ctx, "h6", "h9", managers.Other)
	require.NoError(t, err)
	require.True(t, ctrl.Registry().Has("h6", "h9"))

	require.True(t, ctrl.Registry().UpdateRate("h6", "h9", 37, time.Now()))

	require.NoError(t, ctrl.Complete("h6", "h9"))
	require.False(t, ctrl.Registry().Has("h6", "h9"))

	require.ErrorIs(t, ctrl.Complete("h6", "h9"), managers.ErrUnknownFlow)
}

// Scenario 6: best-effort admission over a path exceeding H_MAX fails with
// NoPath, not NoCapacity.
func TestAdmitOtherFailsNoPathBeyondHMax(t *testing.T) {
	topo := meshfixture.BuildLongChain(gizmos.HMax + 2)
	cfg := config.Default().Admission
	ctrl := managers.MkController(topo, managers.MkSimulatedTransport(bleat.Mk(nil, 0)), cfg, bleat.Mk(nil, 0))

	_, err := ctrl.Admit(context.Background(), "hfirst", "hlast", managers.Other)
	require.ErrorIs(t, err, gizmos.ErrNoPath)
}

// Invariant 3: best-effort admission returns a path of minimum hop count
// among every path clearing the headroom threshold.
func TestAdmitOtherPicksMinimumHopCount(t *testing.T) {
	ctrl, _ := testController(t, config.Bandwidth)
	path, err := ctrl.Admit(context.Background(), "h2", "h5", managers.Other)
	require.NoError(t, err)
	require.Equal(t, 3, len(path)-1, "direct h2-s1-s2-h5 route has 3 hops")
}

// Invariant 5: under BANDWIDTH, among candidates sharing the conflicting
// edge, the one displaced is the one with the highest recorded rate.
func TestDisplacementBandwidthPicksHighestRate(t *testing.T) {
	ctrl, topo := testController(t, config.Bandwidth)
	ctx := context.Background()

	_, err := ctrl.Admit(ctx, "h2", "h5", managers.Other)
	require.NoError(t, err)
	_, err = ctrl.Admit(ctx, "h3", "h6", managers.Other)
	require.NoError(t, err)

	require.True(t, ctrl.Registry().UpdateRate("h2", "h5", 10, time.Now()))
	require.True(t, ctrl.Registry().UpdateRate("h3", "h6", 50, time.Now()))

	topo.LinkBetween("s1", "s2").SetUtilization("s1", "s2", 85)

	_, err = ctrl.Admit(ctx, "h1", "h4", managers.Video)
	require.NoError(t, err)

	lowRateRec, ok := ctrl.Registry().Get("h2", "h5")
	require.True(t, ok)
	require.True(t, traversesEdge(lowRateRec.Path, "s1", "s2"), "lower-rate flow must be left in place")

	highRateRec, ok := ctrl.Registry().Get("h3", "h6")
	require.True(t, ok)
	require.False(t, traversesEdge(highRateRec.Path, "s1", "s2"), "higher-rate flow must be the one displaced")
}
