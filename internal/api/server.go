package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"logship/internal/config"
	"logship/internal/logging/shipper"
	"logship/internal/simulator"
)

// Server exposes the demo's status endpoints and the Prometheus
// scrape endpoint. It exists to exercise the shipper interactively.
type Server struct {
	shipper *shipper.Shipper
	sim     *simulator.Simulator
	config  config.Config
}

func NewServer(cfg config.Config, s *shipper.Shipper, sim *simulator.Simulator) *Server {
	return &Server{
		shipper: s,
		sim:     sim,
		config:  cfg,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/trigger-error", s.handleTriggerError)
	mux.HandleFunc("/api/test-logs", s.handleTestLogs)
	mux.HandleFunc("/api/simulate", s.handleSimulate)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	html := `<!DOCTYPE html>
<html>
<head><title>logship</title></head>
<body>
	<h1>logship - batching log shipper demo</h1>
	<p>Sink: ` + string(s.config.Sink) + `</p>
	<ul>
		<li>GET  /api/status       - shipper and heartbeat status</li>
		<li>POST /api/trigger-error - emit a test error record</li>
		<li>POST /api/test-logs    - emit one record per level</li>
		<li>POST /api/simulate     - generate burst traffic</li>
		<li>GET  /metrics          - Prometheus metrics</li>
		<li>GET  /health           - health check</li>
	</ul>
</body>
</html>
`
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(html))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.shipper.Stats()
	errorCount, recentErrors := s.sim.Errors()

	writeJSON(w, http.StatusOK, map[string]any{
		"heartbeat":     s.sim.Heartbeat(),
		"error_count":   errorCount,
		"recent_errors": recentErrors,
		"sink": map[string]any{
			"type":    s.config.Sink,
			"service": s.config.Service,
			"env":     s.config.Env,
		},
		"shipper": map[string]any{
			"records_accepted": stats.RecordsAccepted,
			"records_shipped":  stats.RecordsShipped,
			"records_dropped":  stats.RecordsDropped,
			"batches_sent":     stats.BatchesSent,
			"batches_dropped":  stats.BatchesDropped,
			"last_flush":       s.shipper.LastFlush().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleTriggerError(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	message := s.sim.TriggerError()
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "error_triggered",
		"error":  message,
	})
}

func (s *Server) handleTestLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.sim.EmitTestLogs()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "test_completed",
		"message": "One record per level was handed to the shipper",
	})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req := struct {
		Count int `json:"count"`
		Rate  int `json:"rate"`
	}{Count: 1000, Rate: 200}

	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
	}

	// Detached from the request context: the burst outlives the handler.
	go s.sim.Simulate(context.Background(), req.Count, req.Rate)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"status": "simulation started",
		"count":  req.Count,
		"rate":   req.Rate,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
