package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mosdacbot/internal/domain"
	"mosdacbot/internal/graph"
	"mosdacbot/internal/loader"
	"mosdacbot/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	router   http.Handler
	svc      *service.HelpService
	registry *prometheus.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	fragment, err := loader.Sample()
	require.NoError(t, err)
	snap, err := service.BuildSnapshot(fragment)
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	metrics := service.NewMetrics(registry, "test")
	svc := service.NewHelpService(snap, service.Options{Metrics: metrics})

	return &testServer{
		router:   NewRouter(svc, RouterConfig{Registry: registry, Metrics: metrics}),
		svc:      svc,
		registry: registry,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestQuery(t *testing.T) {
	s := newTestServer(t)

	t.Run("download question", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/query", `{"text":"How do I download INSAT-3D imager data?"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		res := decodeBody[service.QueryResult](t, rec)
		assert.Equal(t, domain.IntentDataDownload, res.Intent)
		assert.Contains(t, res.Entities, "INSAT-3D")
		assert.Contains(t, res.ResponseContent, "INSAT-3D")
		assert.Equal(t, domain.TemplateProcedure, res.ResponseMetadata["template_id"])
	})

	t.Run("empty text is a general inquiry", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/query", `{"text":""}`)
		require.Equal(t, http.StatusOK, rec.Code)

		res := decodeBody[service.QueryResult](t, rec)
		assert.Equal(t, domain.IntentGeneralInquiry, res.Intent)
		assert.Equal(t, []string{}, res.Entities)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/query", `{"text":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		errResp := decodeBody[ErrorResponse](t, rec)
		assert.Equal(t, "Invalid request body", errResp.Error)
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/query", `{"question":"hi"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestNodes(t *testing.T) {
	s := newTestServer(t)

	t.Run("search by substring", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/nodes?q=insat", "")
		require.Equal(t, http.StatusOK, rec.Code)

		res := decodeBody[NodeListResponse](t, rec)
		require.NotZero(t, res.Count)
		for _, n := range res.Nodes {
			assert.True(t,
				strings.Contains(strings.ToLower(n.Label), "insat") || strings.Contains(string(n.Type), "insat"),
				"unexpected match %s", n.ID)
		}
	})

	t.Run("blank query lists catalog", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/nodes", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, s.svc.Stats().NodeCount, decodeBody[NodeListResponse](t, rec).Count)
	})

	t.Run("no match is an empty list", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/nodes?q=zzzz", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"nodes":[],"count":0}`, rec.Body.String())
	})

	t.Run("detail", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/nodes/insat3d", "")
		require.Equal(t, http.StatusOK, rec.Code)

		detail := decodeBody[service.NodeDetail](t, rec)
		assert.Equal(t, "INSAT-3D", detail.Node.Label)
		assert.NotEmpty(t, detail.IncidentEdges)
		for _, e := range detail.IncidentEdges {
			assert.True(t, e.From == "insat3d" || e.To == "insat3d")
		}
	})

	t.Run("unknown node is 404", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/nodes/nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("related", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/nodes/insat3d/related?depth=1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		related := decodeBody[[]graph.RelatedNode](t, rec)
		require.NotEmpty(t, related)
		for _, r := range related {
			assert.Equal(t, 1, r.Distance)
		}
	})

	t.Run("related bad depth", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/nodes/insat3d/related?depth=zero", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("key term search", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/search?q=what+ocean+products", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotZero(t, decodeBody[NodeListResponse](t, rec).Count)
	})
}

func TestSelectionLifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	sid := decodeBody[SessionResponse](t, rec).SessionID
	require.NotEmpty(t, sid)
	base := "/api/sessions/" + sid + "/selection"

	rec = s.do(t, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"selected":false}`, rec.Body.String())

	rec = s.do(t, http.MethodPut, base, `{"node_id":"insat3d"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"selected":true,"node_id":"insat3d"}`, rec.Body.String())

	// unknown node keeps the previous selection
	rec = s.do(t, http.MethodPut, base, `{"node_id":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodGet, base, "")
	assert.JSONEq(t, `{"selected":true,"node_id":"insat3d"}`, rec.Body.String())

	rec = s.do(t, http.MethodPut, base, `{"node_id":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"selected":false}`, rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/api/sessions/"+sid, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatsExportHealth(t *testing.T) {
	s := newTestServer(t)

	t.Run("stats", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/graph/stats", "")
		require.Equal(t, http.StatusOK, rec.Code)
		stats := decodeBody[graph.Stats](t, rec)
		assert.Equal(t, 13, stats.NodeCount)
		assert.Equal(t, 12, stats.EdgeCount)
	})

	t.Run("export json", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/export/json", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "catalog.json")
		assert.Contains(t, rec.Body.String(), `"insat3d"`)
	})

	t.Run("export yaml", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/export/yaml", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "id: insat3d")
	})

	t.Run("export unknown format", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/export/xml", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("health", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, rec.Code)
		health := decodeBody[service.Health](t, rec)
		assert.Equal(t, "ok", health.Status)
		assert.Equal(t, 13, health.CatalogNodes)
		assert.NotZero(t, health.Rules)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	s.do(t, http.MethodPost, "/api/query", `{"text":"How do I download data?"}`)
	s.do(t, http.MethodGet, "/api/nodes/insat3d", "")
	s.do(t, http.MethodGet, "/api/nodes/oceansat2", "")

	rec := s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_queries_total{intent="data_download"} 1`)

	// node ids collapse into the route pattern: query, node detail and the scrape itself
	count, err := testutil.GatherAndCount(s.registry, "test_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Contains(t, rec.Body.String(), `route="/api/nodes/{id}"`)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/query", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
