package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/meshctl/controller/internal/bleat"
	"github.com/meshctl/controller/internal/config"
	"github.com/meshctl/controller/internal/httpapi"
	"github.com/meshctl/controller/internal/managers"
	"github.com/meshctl/controller/internal/meshfixture"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	topo := meshfixture.Build()
	cfg := config.Default().Admission
	ctrl := managers.MkController(topo, managers.MkSimulatedTransport(bleat.Mk(nil, 0)), cfg, bleat.Mk(nil, 0))
	return httpapi.NewRouter(ctrl, zap.NewNop())
}

func postJSON(t *testing.T, h http.Handler, path string, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestVideoFlowtableAdmitsSuccess(t *testing.T) {
	h := testRouter(t)
	w := postJSON(t, h, "/controller/video/flowtable", map[string]string{"src_host": "h1", "dst_host": "h4"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "success", resp["result"])
}

func TestFlowtableMalformedBodyIs400(t *testing.T) {
	h := testRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/controller/video/flowtable", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOtherCompleteIsIdempotent(t *testing.T) {
	h := testRouter(t)
	w := postJSON(t, h, "/controller/other/complete", map[string]string{"src_host": "hnope", "dst_host": "hnope2"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "success", resp["result"], "completing an absent flow must still report success")
}

func TestOtherFlowtableListsActiveFlows(t *testing.T) {
	h := testRouter(t)

	w := postJSON(t, h, "/controller/other/flowtable", map[string]string{"src_host": "h2", "dst_host": "h5"})
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/controller/other/flowtable", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Flows []struct {
			SrcHost string `json:"src_host"`
			DstHost string `json:"dst_host"`
		} `json:"flows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Flows, 1)
	require.Equal(t, "h2", resp.Flows[0].SrcHost)
	require.Equal(t, "h5", resp.Flows[0].DstHost)
}
