package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/raphaelgruber/xrdthermo/internal/client"
	"github.com/raphaelgruber/xrdthermo/internal/peak"
	"github.com/raphaelgruber/xrdthermo/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, model server.Model, logger *slog.Logger) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(server.New(model, logger).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &out), "body: %s", data)
	return resp, out
}

func TestLinearRoundTrip(t *testing.T) {
	m := server.DefaultLinear()

	assert.Equal(t, m.Peak, m.Simulate(25))
	for _, temp := range []float64{25, 80, 150, 399} {
		assert.InDelta(t, temp, m.Predict(m.Simulate(temp)), 1e-6, "temperature %v", temp)
	}

	hot := m.Simulate(200)
	assert.Less(t, hot.Position, m.Peak.Position, "peak moves to lower angles when heated")
	assert.Greater(t, hot.Width, m.Peak.Width, "peak broadens when heated")
	assert.Equal(t, 100.0, m.Simulate(5000).Height, "intensity is floored")
}

func TestLinearEstimateFWHM(t *testing.T) {
	m := server.DefaultLinear()
	near := m.EstimateFWHM(25.64, 500)
	far := m.EstimateFWHM(30, 500)
	assert.InDelta(t, 0.22, near, 1e-9)
	assert.Greater(t, far, near)
	assert.Greater(t, m.EstimateFWHM(25.64, 100), near, "weaker peaks are broader")
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, server.DefaultLinear(), nil)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestPredict(t *testing.T) {
	ts := newTestServer(t, server.DefaultLinear(), nil)

	resp, body := postJSON(t, ts.URL+"/predict", `{"pos": 25.64, "fwhm": 0.22, "intensity": 270}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.InDelta(t, 25.0, body["temperature"], 1e-9)
}

func TestSimulate(t *testing.T) {
	ts := newTestServer(t, server.DefaultLinear(), nil)

	resp, body := postJSON(t, ts.URL+"/simulate", `{"temp": 125}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 25.52, body["pos"], 1e-9)
	assert.InDelta(t, 0.24, body["fwhm"], 1e-9)
	assert.InDelta(t, 230.0, body["intensity"], 1e-9)
}

func TestEstimateFWHM(t *testing.T) {
	ts := newTestServer(t, server.DefaultLinear(), nil)

	resp, body := postJSON(t, ts.URL+"/estimate-fwhm", `{"pos": 30.0, "intensity": 500}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["status"])
	assert.InDelta(t, 30.0-peak.RoomTemperaturePeak, body["peak_shift"], 1e-9)
	assert.InDelta(t, 0.2+0.15*4.36+0.02, body["fwhm"], 1e-9)
}

func TestValidationErrors(t *testing.T) {
	ts := newTestServer(t, server.DefaultLinear(), nil)

	tests := []struct {
		name   string
		path   string
		body   string
		detail string
	}{
		{"missing field", "/predict", `{"pos": 25.6, "intensity": 270}`, "fwhm is required"},
		{"missing temp", "/simulate", `{}`, "temp is required"},
		{"negative intensity", "/estimate-fwhm", `{"pos": 30, "intensity": -5}`, "intensity must be at least 0"},
		{"invalid json", "/predict", `{"pos": "hot"`, "invalid JSON body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postJSON(t, ts.URL+tt.path, tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			assert.Contains(t, body["detail"], tt.detail)
		})
	}
}

func TestEstimateZeroIntensity(t *testing.T) {
	ts := newTestServer(t, server.DefaultLinear(), nil)

	resp, body := postJSON(t, ts.URL+"/estimate-fwhm", `{"pos": 25.64, "intensity": 0}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 10.2, body["fwhm"], 1e-9)
}

func TestModelNotLoaded(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	resp, body := postJSON(t, ts.URL+"/predict", `{"pos": 25.64, "fwhm": 0.22, "intensity": 270}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "AI Model not loaded on server", body["detail"])

	health, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer health.Body.Close()
	var status map[string]string
	require.NoError(t, json.NewDecoder(health.Body).Decode(&status))
	assert.Equal(t, "degraded", status["status"])
}

func TestRequestIDEchoed(t *testing.T) {
	ts := newTestServer(t, server.DefaultLinear(), nil)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "req-123", resp.Header.Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, server.DefaultLinear(), nil)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/predict", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORSDeployedOrigin(t *testing.T) {
	ts := newTestServer(t, server.DefaultLinear(), nil)
	origin := "https://cdse-xray-diffraction-thermometry.onrender.com"

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/estimate-fwhm", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, origin, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, server.DefaultLinear(), nil)
	postJSON(t, ts.URL+"/simulate", `{"temp": 50}`)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, `xrdthermo_http_requests_total{method="POST",route="/simulate",status="200"} 1`)
	assert.Contains(t, text, `xrdthermo_model_evaluations_total{endpoint="simulate"} 1`)
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ts := newTestServer(t, nil, logger)

	postJSON(t, ts.URL+"/predict", `{"pos": 25.64, "fwhm": 0.22, "intensity": 270}`)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "request failed", entry["msg"])
	assert.Equal(t, "/predict", entry["path"])
	assert.EqualValues(t, http.StatusServiceUnavailable, entry["status"])
	assert.NotEmpty(t, entry["request_id"])
}

func TestClientAgainstServer(t *testing.T) {
	ts := newTestServer(t, server.DefaultLinear(), nil)
	c := client.New(ts.URL)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	params, err := c.Simulate(ctx, 150)
	require.NoError(t, err)

	temp, err := c.Predict(ctx, params)
	require.NoError(t, err)
	assert.InDelta(t, 150, temp, 1e-6)

	est, err := c.EstimateFWHM(ctx, 30, 500)
	require.NoError(t, err)
	assert.Equal(t, client.Round4(0.2+0.15*4.36+0.02), est.FWHM)
	assert.Equal(t, "success", est.Status)
}

func TestClientSeesUnavailable(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	c := client.New(ts.URL)

	_, err := c.Predict(context.Background(), peak.Parameters{Position: 25.64, Width: 0.22, Height: 270})
	require.Error(t, err)
	apiErr, ok := client.IsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.Unavailable())
	assert.Equal(t, "AI Model not loaded on server", apiErr.Detail)
}
