package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/roadnet"
	"github.com/hupe1980/roadnet/geo"
	"github.com/hupe1980/roadnet/graph"
	"github.com/hupe1980/roadnet/metrics/prometheus"
	"github.com/hupe1980/roadnet/profile"
	"github.com/hupe1980/roadnet/scores"
	"github.com/hupe1980/roadnet/search"
	"github.com/hupe1980/roadnet/weight"
)

var coords = []geo.Coordinate{
	{Latitude: 0, Longitude: 0},
	{Latitude: 0, Longitude: 0.001},
	{Latitude: 0, Longitude: 0.002},
	{Latitude: 0.001, Longitude: 0.001},
	{Latitude: 0.01, Longitude: 0.01},
	{Latitude: 0.01, Longitude: 0.011},
}

var (
	nearV0  = geo.Coordinate{Latitude: 0.00001, Longitude: 0.0003}
	nearV2  = geo.Coordinate{Latitude: 0.00001, Longitude: 0.0017}
	nearV5  = geo.Coordinate{Latitude: 0.01, Longitude: 0.0105}
	nowhere = geo.Coordinate{Latitude: 1, Longitude: 1}
)

func newTestRouter(t *testing.T, opts ...roadnet.Option) *roadnet.Router {
	t.Helper()
	g := graph.New(1)
	for v, c := range coords {
		require.NoError(t, g.AddVertex(uint32(v), c.Latitude, c.Longitude))
	}
	for _, e := range [][2]uint32{{0, 1}, {1, 2}, {0, 3}, {3, 2}, {4, 5}} {
		data, err := weight.EncodeEdgeData(geo.Distance(coords[e[0]], coords[e[1]]), 1)
		require.NoError(t, err)
		_, err = g.AddEdge(e[0], e[1], []uint32{data}, nil)
		require.NoError(t, err)
	}
	profiles, err := profile.New(profile.Profile{ID: 1, Name: "road", Factor: 1})
	require.NoError(t, err)

	r, err := roadnet.New(g, profiles, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     *Error          `json:"error"`
	Meta      *Meta           `json:"meta"`
	RequestID string          `json:"request_id"`
}

func do(t *testing.T, h http.Handler, method, target string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestHealth(t *testing.T) {
	s := New(newTestRouter(t))

	rec, env := do(t, s, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
	assert.Equal(t, APIVersion, env.Meta.APIVersion)
	assert.NotEmpty(t, env.Meta.ProcessTime)

	_, err := uuid.Parse(env.RequestID)
	require.NoError(t, err)
	assert.Equal(t, env.RequestID, rec.Header().Get(RequestIDHeader))
}

func TestRequestID(t *testing.T) {
	s := New(newTestRouter(t))

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))
}

func TestRoute(t *testing.T) {
	s := New(newTestRouter(t))

	t.Run("Found", func(t *testing.T) {
		rec, env := do(t, s, http.MethodPost, "/api/routes", roadnet.Request{From: nearV0, To: nearV2})
		require.Equal(t, http.StatusOK, rec.Code)

		var path search.Path
		require.NoError(t, json.Unmarshal(env.Data, &path))
		assert.Len(t, path.Edges, 2)
		assert.Equal(t, uint32(0), path.Edges[0])
		assert.Greater(t, path.Distance, float32(100))
		assert.NotEmpty(t, path.Shape)
	})

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"NoRoute", roadnet.Request{From: nearV0, To: nearV5}, http.StatusNotFound, "no_route"},
		{"Unresolved", roadnet.Request{From: nowhere, To: nearV2}, http.StatusUnprocessableEntity, "unresolved"},
		{"InvalidBody", `{"from":`, http.StatusBadRequest, "invalid_body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, s, http.MethodPost, "/api/routes", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}

	t.Run("MethodNotAllowed", func(t *testing.T) {
		rec, _ := do(t, s, http.MethodGet, "/api/routes", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestResolve(t *testing.T) {
	s := New(newTestRouter(t))

	rec, env := do(t, s, http.MethodGet, "/api/resolve?lat=0.00001&lon=0.0003", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var p search.Point
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, uint32(0), p.EdgeID)
	assert.InDelta(t, 0.3, p.Offset, 0.01)

	for _, target := range []string{"/api/resolve?lat=x&lon=0", "/api/resolve?lon=0", "/api/resolve?lat=91&lon=0"} {
		rec, env = do(t, s, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "invalid_coordinate", env.Error.Code, target)
	}

	rec, _ = do(t, s, http.MethodGet, "/api/resolve?lat=1&lon=1", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBatch(t *testing.T) {
	s := New(newTestRouter(t))

	rec, env := do(t, s, http.MethodPost, "/api/routes/batch", BatchRequest{Requests: []roadnet.Request{
		{From: nearV0, To: nearV2},
		{From: nearV0, To: nearV5},
		{From: nowhere, To: nearV2},
	}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Meta.ResultCount)
	assert.Equal(t, 3, *env.Meta.ResultCount)

	var results []struct {
		Path  *search.Path `json:"path"`
		Error *Error       `json:"error"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &results))
	require.Len(t, results, 3)
	assert.NotNil(t, results[0].Path)
	assert.Nil(t, results[0].Error)
	assert.Equal(t, "no_route", results[1].Error.Code)
	assert.Equal(t, "unresolved", results[2].Error.Code)
}

func TestMatrix(t *testing.T) {
	s := New(newTestRouter(t))

	rec, env := do(t, s, http.MethodPost, "/api/routes/matrix", MatrixRequest{
		From: nearV0,
		To:   []geo.Coordinate{nearV2, nearV5, nowhere},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var paths []*search.Path
	require.NoError(t, json.Unmarshal(env.Data, &paths))
	require.Len(t, paths, 3)
	assert.NotNil(t, paths[0])
	assert.Nil(t, paths[1])
	assert.Nil(t, paths[2])
}

func TestNetwork(t *testing.T) {
	s := New(newTestRouter(t, roadnet.WithScores(scores.NewTable())))

	rec, env := do(t, s, http.MethodGet, "/api/network", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var info NetworkInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, NetworkInfo{Vertices: 6, Edges: 5, Profiles: []string{"road"}}, info)
}

func TestScores(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		s := New(newTestRouter(t))
		rec, env := do(t, s, http.MethodPost, "/api/scores/process", nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "no_scores", env.Error.Code)

		rec, _ = do(t, s, http.MethodPost, "/api/scores/samples", []scores.Sample{})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Process", func(t *testing.T) {
		table := scores.NewTable()
		s := New(newTestRouter(t, roadnet.WithScores(table)))

		rec, env := do(t, s, http.MethodPost, "/api/scores/samples", []scores.Sample{
			{Latitude: nearV0.Latitude, Longitude: nearV0.Longitude, Score: 2},
			{Latitude: nowhere.Latitude, Longitude: nowhere.Longitude, Score: 3},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"logged":2}`, string(env.Data))

		rec, env = do(t, s, http.MethodPost, "/api/scores/process", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"samples":2,"assigned":1,"duplicates":0,"unresolved":1}`, string(env.Data))

		score, ok := table.Score(0)
		assert.True(t, ok)
		assert.Equal(t, float32(2), score)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		s := New(newTestRouter(t, roadnet.WithScores(scores.NewTable())))
		rec, _ := do(t, s, http.MethodPost, "/api/scores/samples", `{"latitude":1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestMetrics(t *testing.T) {
	reg := prom.NewRegistry()
	collector, err := prometheus.NewCollector(reg)
	require.NoError(t, err)

	s := New(newTestRouter(t, roadnet.WithMetricsCollector(collector)), WithMetricsHandler(reg))

	rec, _ := do(t, s, http.MethodPost, "/api/routes", roadnet.Request{From: nearV0, To: nearV2})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `roadnet_operations_total{op="route",status="success"} 1`)

	rec, _ = do(t, New(newTestRouter(t)), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
