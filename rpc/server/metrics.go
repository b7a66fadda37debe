package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ValentinKolb/slotkv/rpc/common"
	"github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Request Metrics
// --------------------------------------------------------------------------

var requestDuration = metrics.GetOrCreateHistogram("slotkv_request_duration_seconds")

// observeRequest records a handled request
func observeRequest(kind common.MessageKind, status common.Status, start time.Time) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`slotkv_requests_total{kind=%q}`, kind)).Inc()
	if status != common.StatusSuccess {
		metrics.GetOrCreateCounter(fmt.Sprintf(`slotkv_request_errors_total{status=%q}`, status)).Inc()
	}
	requestDuration.UpdateDuration(start)
}

// --------------------------------------------------------------------------
// Metrics Endpoint
// --------------------------------------------------------------------------

// serveMetrics exposes all metrics in the prometheus text format at
// http://<endpoint>/metrics until ctx is done
func serveMetrics(ctx context.Context, endpoint string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		metrics.WritePrometheus(w, true)
	})

	srv := &http.Server{
		Addr:              endpoint,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Shut down the http server with the context
	stop := context.AfterFunc(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})
	defer stop()

	Logger.Infof("Serving metrics on http://%s/metrics", endpoint)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics endpoint failed: %w", err)
	}
	return nil
}
