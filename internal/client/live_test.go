//go:build integration

package client_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/raphaelgruber/xrdthermo/internal/client"
	"github.com/raphaelgruber/xrdthermo/internal/peak"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// liveClient targets XRD_API_URL, which must point at a running backend.
func liveClient(t *testing.T) *client.Client {
	t.Helper()
	url := os.Getenv("XRD_API_URL")
	if url == "" {
		t.Skip("XRD_API_URL not set")
	}
	return client.New(url, client.WithTimeout(30*time.Second))
}

func TestLiveRoundTrip(t *testing.T) {
	c := liveClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	temp, err := c.Predict(ctx, peak.Parameters{Position: 25.64, Width: 0.22, Height: 270})
	require.NoError(t, err, "predict should succeed")
	t.Logf("predicted temperature: %.2f °C", temp)

	params, err := c.Simulate(ctx, 200)
	require.NoError(t, err, "simulate should succeed")
	assert.Greater(t, params.Position, 0.0)
	assert.Greater(t, params.Width, 0.0)

	est, err := c.EstimateFWHM(ctx, 30, 500)
	require.NoError(t, err, "estimate should succeed")
	assert.Greater(t, est.FWHM, 0.0)
}
