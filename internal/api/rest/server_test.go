package rest

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branched-services/go-risk/pkg/quantile"
	"github.com/branched-services/go-risk/pkg/risk"
)

func testServer(t *testing.T, provider risk.ReportReader) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(":0", provider, logger, nil)
}

func testReport() *risk.Report {
	return &risk.Report{
		PortfolioID: "book-a",
		AsOf:        time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC),
		Method:      "sample-interpolation",
		SampleSize:  5,
		Metrics: []risk.Metric{
			{
				Level:             0.95,
				ValueAtRisk:       quantile.Result{Value: 4.8, LowerIndex: 4, UpperIndex: 0, Weight: 0.75},
				ExpectedShortfall: quantile.Result{Value: 2.9, LowerIndex: 4, UpperIndex: 0, Weight: 0.75},
			},
		},
	}
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestReport_NotReady(t *testing.T) {
	s := testServer(t, risk.NewProvider())

	rec := doJSON(t, s, http.MethodGet, "/v1/risk/report", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "not ready")
}

func TestReport_OK(t *testing.T) {
	provider := risk.NewProvider()
	provider.Update(testReport())
	s := testServer(t, provider)

	rec := doJSON(t, s, http.MethodGet, "/v1/risk/report", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body reportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "book-a", body.PortfolioID)
	assert.Equal(t, "sample-interpolation", body.Method)
	assert.Equal(t, 5, body.SampleSize)
	require.Len(t, body.Metrics, 1)
	assert.Equal(t, 0.95, body.Metrics[0].Level)
	assert.Equal(t, 4.8, body.Metrics[0].ValueAtRisk.Value)
	assert.Equal(t, 2.9, body.Metrics[0].ExpectedShortfall.Value)
}

func TestQuantile_KnownValue(t *testing.T) {
	s := testServer(t, risk.NewProvider())

	rec := doJSON(t, s, http.MethodPost, "/v1/quantile", computeRequest{
		Method: "sample-interpolation",
		Level:  0.5,
		Sample: []float64{5, 1, 3, 2, 4},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var body computeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 2.5, body.Result.Value, 1e-12)
	assert.Equal(t, 5, body.SampleSize)
	assert.Equal(t, 3, body.Result.LowerIndex)
	assert.Equal(t, 2, body.Result.UpperIndex)
	assert.InDelta(t, 0.5, body.Result.Weight, 1e-12)
}

func TestShortfall_KnownValue(t *testing.T) {
	s := testServer(t, risk.NewProvider())

	rec := doJSON(t, s, http.MethodPost, "/v1/shortfall", computeRequest{
		Method: "sample-interpolation",
		Level:  0.5,
		Sample: []float64{5, 1, 3, 2, 4},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var body computeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.InDelta(t, 1.7, body.Result.Value, 1e-12)
}

func TestQuantile_BadRequests(t *testing.T) {
	s := testServer(t, risk.NewProvider())

	tests := []struct {
		name string
		req  computeRequest
	}{
		{
			name: "unknown method",
			req:  computeRequest{Method: "harrell-davis", Level: 0.5, Sample: []float64{1}},
		},
		{
			name: "level at one",
			req:  computeRequest{Method: "sample-interpolation", Level: 1, Sample: []float64{1}},
		},
		{
			name: "level at zero",
			req:  computeRequest{Method: "sample-interpolation", Level: 0, Sample: []float64{1}},
		},
		{
			name: "empty sample",
			req:  computeRequest{Method: "sample-interpolation", Level: 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/v1/quantile", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestQuantile_MalformedBody(t *testing.T) {
	s := testServer(t, risk.NewProvider())

	req := httptest.NewRequest(http.MethodPost, "/v1/quantile", bytes.NewBufferString(`{"method":`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuantile_OutOfRange(t *testing.T) {
	s := testServer(t, risk.NewProvider())

	// Strict rank 0.5 on a size-5 sample falls below the lowest index.
	rec := doJSON(t, s, http.MethodPost, "/v1/quantile", computeRequest{
		Method: "sample-interpolation",
		Level:  0.1,
		Sample: []float64{5, 1, 3, 2, 4},
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var body struct {
		Error     string  `json:"error"`
		Direction string  `json:"direction"`
		Rank      float64 `json:"rank"`
		Size      int     `json:"size"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Direction, "below lowest")
	assert.Equal(t, 5, body.Size)

	// Same request with extrapolation clamps to the minimum instead.
	rec = doJSON(t, s, http.MethodPost, "/v1/quantile", computeRequest{
		Method:      "sample-interpolation",
		Level:       0.1,
		Sample:      []float64{5, 1, 3, 2, 4},
		Extrapolate: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var ok computeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ok))
	assert.Equal(t, 1.0, ok.Result.Value)
}

func TestRequestID_Propagated(t *testing.T) {
	s := testServer(t, risk.NewProvider())

	req := httptest.NewRequest(http.MethodGet, "/v1/risk/report", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}
