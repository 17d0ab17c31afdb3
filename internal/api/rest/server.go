// Package rest provides the HTTP/JSON API for risk reports and for
// stateless quantile computations.
package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/branched-services/go-risk/internal/observability"
	"github.com/branched-services/go-risk/pkg/quantile"
	"github.com/branched-services/go-risk/pkg/risk"
)

// RequestObserver counts finished HTTP requests. Implemented by
// observability.Metrics; a nil observer disables counting.
type RequestObserver interface {
	ObserveRequest(method, path string, status int)
}

// Server provides the risk report API.
type Server struct {
	addr     string
	provider risk.ReportReader
	logger   *slog.Logger
	validate *validator.Validate
	observer RequestObserver
	server   *http.Server
}

// NewServer creates a new API server. observer may be nil.
func NewServer(addr string, provider risk.ReportReader, logger *slog.Logger, observer RequestObserver) *Server {
	s := &Server{
		addr:     addr,
		provider: provider,
		logger:   logger.With("component", "rest"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		observer: observer,
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Get("/v1/risk/report", s.handleReport)
	r.Get("/v1/risk/report/stream", s.handleReportStream)
	r.Post("/v1/quantile", s.handleQuantile)
	r.Post("/v1/shortfall", s.handleShortfall)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Run starts the server. Blocks until context is canceled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server starting", "addr", s.addr)
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("API server shutting down")
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// requestID stamps every request with an ID, honoring one supplied by
// the caller.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(observability.WithRequestID(r.Context(), id)))
	})
}

// statusWriter captures the response status for logging and metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// logRequests logs every finished request and feeds the request counter.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = r.URL.Path
		}

		observability.WithContext(r.Context(), s.logger).Debug("request completed",
			"method", r.Method,
			"path", path,
			"status", sw.status,
			"duration_us", time.Since(start).Microseconds(),
		)
		if s.observer != nil {
			s.observer.ObserveRequest(r.Method, path, sw.status)
		}
	})
}

// resultPayload is the wire form of a quantile.Result.
type resultPayload struct {
	Value      float64 `json:"value"`
	LowerIndex int     `json:"lower_index"`
	UpperIndex int     `json:"upper_index"`
	Weight     float64 `json:"weight"`
}

func toResultPayload(r quantile.Result) resultPayload {
	return resultPayload{
		Value:      r.Value,
		LowerIndex: r.LowerIndex,
		UpperIndex: r.UpperIndex,
		Weight:     r.Weight,
	}
}

// metricPayload is the wire form of a risk.Metric.
type metricPayload struct {
	Level             float64       `json:"level"`
	ValueAtRisk       resultPayload `json:"value_at_risk"`
	ExpectedShortfall resultPayload `json:"expected_shortfall"`
}

// reportResponse is the wire form of a risk.Report.
type reportResponse struct {
	PortfolioID string          `json:"portfolio_id"`
	AsOf        string          `json:"as_of"`
	Method      string          `json:"method"`
	SampleSize  int             `json:"sample_size"`
	Metrics     []metricPayload `json:"metrics"`
}

func toReportResponse(report *risk.Report) reportResponse {
	resp := reportResponse{
		PortfolioID: report.PortfolioID,
		AsOf:        report.AsOf.UTC().Format(time.RFC3339Nano),
		Method:      report.Method,
		SampleSize:  report.SampleSize,
		Metrics:     make([]metricPayload, 0, len(report.Metrics)),
	}
	for _, m := range report.Metrics {
		resp.Metrics = append(resp.Metrics, metricPayload{
			Level:             m.Level,
			ValueAtRisk:       toResultPayload(m.ValueAtRisk),
			ExpectedShortfall: toResultPayload(m.ExpectedShortfall),
		})
	}
	return resp
}

// handleReport returns the latest published risk report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 100*time.Millisecond)
	defer cancel()

	report, err := s.provider.Current(ctx)
	if err != nil {
		if errors.Is(err, risk.ErrNotReady) {
			s.writeError(w, r, http.StatusServiceUnavailable, "risk engine not ready")
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toReportResponse(report))
}

// handleReportStream provides server-sent events with report updates.
func (s *Server) handleReportStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, r, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	var lastAsOf time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := s.provider.Current(ctx)
			if err != nil {
				continue
			}

			// Only send when a new report was published.
			if !report.AsOf.After(lastAsOf) {
				continue
			}
			lastAsOf = report.AsOf

			data, err := json.Marshal(toReportResponse(report))
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// computeRequest is the body of the stateless compute endpoints.
type computeRequest struct {
	Method      string    `json:"method" validate:"required"`
	Level       float64   `json:"level" validate:"gt=0,lt=1"`
	Sample      []float64 `json:"sample" validate:"required,min=1"`
	Extrapolate bool      `json:"extrapolate"`
}

// computeResponse echoes the request parameters alongside the result.
type computeResponse struct {
	Method      string        `json:"method"`
	Level       float64       `json:"level"`
	SampleSize  int           `json:"sample_size"`
	Extrapolate bool          `json:"extrapolate"`
	Result      resultPayload `json:"result"`
}

// compute is the shared handler body for /v1/quantile and /v1/shortfall.
func (s *Server) compute(w http.ResponseWriter, r *http.Request, shortfall bool) {
	var req computeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	method, err := quantile.MethodByName(req.Method)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var result quantile.Result
	switch {
	case shortfall:
		result, err = quantile.ExpectedShortfall(method, req.Level, req.Sample)
	case req.Extrapolate:
		result, err = quantile.QuantileExtrapolated(method, req.Level, req.Sample)
	default:
		result, err = quantile.Quantile(method, req.Level, req.Sample)
	}
	if err != nil {
		var rangeErr *quantile.RangeError
		if errors.As(err, &rangeErr) {
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, map[string]any{
				"error":     rangeErr.Error(),
				"direction": rangeErr.Direction.String(),
				"rank":      rangeErr.Rank,
				"size":      rangeErr.Size,
			})
			return
		}
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, computeResponse{
		Method:      method.Name(),
		Level:       req.Level,
		SampleSize:  len(req.Sample),
		Extrapolate: req.Extrapolate,
		Result:      toResultPayload(result),
	})
}

// handleQuantile computes a quantile on a caller-supplied sample.
func (s *Server) handleQuantile(w http.ResponseWriter, r *http.Request) {
	s.compute(w, r, false)
}

// handleShortfall computes an expected shortfall on a caller-supplied sample.
func (s *Server) handleShortfall(w http.ResponseWriter, r *http.Request) {
	s.compute(w, r, true)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": message})
}
