package newrelic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"logship/internal/logging"
)

// Sink ships batches to the New Relic Logs API, see
// https://docs.newrelic.com/docs/logs/log-api/introduction-log-api/
// Like the Datadog sink it makes a single delivery attempt per batch.
type Sink struct {
	url        string
	apiKey     string
	httpClient *http.Client
}

type Config struct {
	Region string // "US" (default) or "EU"
	APIKey string
}

type logLine struct {
	Timestamp  int64             `json:"timestamp"`
	Message    string            `json:"message"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type block struct {
	Common common    `json:"common"`
	Logs   []logLine `json:"logs"`
}

type common struct {
	Attributes map[string]string `json:"attributes"`
}

func NewSink(config Config) *Sink {
	host := "log-api.newrelic.com"
	if strings.EqualFold(config.Region, "EU") {
		host = "log-api.eu.newrelic.com"
	}

	return &Sink{
		url:    fmt.Sprintf("https://%s/log/v1", host),
		apiKey: config.APIKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *Sink) SendBatch(records []logging.Record) error {
	if len(records) == 0 {
		return nil
	}

	body, err := json.Marshal(s.createPayload(records))
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Api-Key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("newrelic returned status %d: %s", resp.StatusCode, string(responseBody))
	}

	return nil
}

// createPayload builds the common/logs envelope. Service, host and env
// are identical across a batch in practice, so they ride in the common
// attributes of the first record's values.
func (s *Sink) createPayload(records []logging.Record) []block {
	first := records[0]

	lines := make([]logLine, 0, len(records))
	for _, rec := range records {
		attrs := map[string]string{
			"level": string(rec.Level),
		}
		for k, v := range rec.Attrs {
			attrs[k] = v
		}

		lines = append(lines, logLine{
			Timestamp:  rec.Timestamp.UnixMilli(),
			Message:    rec.Message,
			Attributes: attrs,
		})
	}

	return []block{
		{
			Common: common{
				Attributes: map[string]string{
					"service":  first.Service,
					"hostname": first.Host,
					"env":      first.Env,
				},
			},
			Logs: lines,
		},
	}
}
