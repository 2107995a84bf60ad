package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dbPingerMock struct {
	err error
}

func (m *dbPingerMock) Ping(_ context.Context) error {
	return m.err
}

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestLive_Always200(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(&dbPingerMock{err: errors.New("down")}, "test")

	rec := httptest.NewRecorder()
	h.Live(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeHealth(t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dbErr    error
		redisErr error
		want     int
		wantDown []string
	}{
		{"all up", nil, nil, http.StatusOK, nil},
		{"database down", errors.New("connection refused"), nil, http.StatusServiceUnavailable, []string{"database"}},
		{"redis down", nil, errors.New("dial tcp: refused"), http.StatusServiceUnavailable, []string{"redis"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthHandler(&dbPingerMock{err: tt.dbErr}, "test").
				WithComponent("redis", &dbPingerMock{err: tt.redisErr})

			rec := httptest.NewRecorder()
			h.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			require.Equal(t, tt.want, rec.Code)
			resp := decodeHealth(t, rec)
			var down []string
			for name := range resp.Components {
				down = append(down, name)
			}
			assert.ElementsMatch(t, tt.wantDown, down)
		})
	}
}

func TestHealth_AllOK(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(&dbPingerMock{}, "v1.2.3").WithComponent("redis", &dbPingerMock{})

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeHealth(t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "v1.2.3", resp.Version)
	require.Len(t, resp.Components, 2)
	for name, c := range resp.Components {
		assert.Equal(t, "ok", c.Status, name)
		assert.NotEmpty(t, c.Latency, name)
		assert.Empty(t, c.Error, name)
	}
}

func TestHealth_ComponentDown(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(&dbPingerMock{}, "v1.0.0").
		WithComponent("redis", &dbPingerMock{err: errors.New("dial tcp: refused")})

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp := decodeHealth(t, rec)
	assert.Equal(t, "down", resp.Status)
	assert.Equal(t, "ok", resp.Components["database"].Status)
	assert.Equal(t, CompStatus{Status: "down", Error: "dial tcp: refused"}, resp.Components["redis"])
}
