package datadog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"logship/internal/logging"
)

const DefaultSite = "datadoghq.com"

// Sink ships batches to the Datadog Logs v2 intake API. Each batch gets
// a single delivery attempt; callers own the drop-on-failure policy.
type Sink struct {
	url        string
	apiKey     string
	source     string
	httpClient *http.Client
}

type Config struct {
	Site   string
	APIKey string
	Source string
}

// entry follows Datadog's standard log attributes, see
// https://docs.datadoghq.com/api/latest/logs/#send-logs
type entry struct {
	Source    string `json:"ddsource"`
	Tags      string `json:"ddtags,omitempty"`
	Hostname  string `json:"hostname"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Message   string `json:"message"`
	Service   string `json:"service"`
	Status    string `json:"status"`
}

func NewSink(config Config) *Sink {
	site := config.Site
	if site == "" {
		site = DefaultSite
	}
	source := config.Source
	if source == "" {
		source = "logship"
	}

	return &Sink{
		// The v2 logs intake host is http-intake.logs.{site}, not api.{site}.
		url:    fmt.Sprintf("https://http-intake.logs.%s/api/v2/logs", site),
		apiKey: config.APIKey,
		source: source,
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

	req.Header.Set("DD-API-KEY", s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("datadog returned status %d: %s", resp.StatusCode, string(responseBody))
	}

	return nil
}

// createPayload maps records to the JSON array the v2 API expects.
func (s *Sink) createPayload(records []logging.Record) []entry {
	entries := make([]entry, 0, len(records))

	for _, rec := range records {
		entries = append(entries, entry{
			Source:    s.source,
			Tags:      s.createTags(rec),
			Hostname:  rec.Host,
			Timestamp: rec.Timestamp.UnixMilli(),
			Message:   rec.Message,
			Service:   rec.Service,
			Status:    strings.ToLower(string(rec.Level)),
		})
	}

	return entries
}

func (s *Sink) createTags(rec logging.Record) string {
	tags := []string{
		"env:" + rec.Env,
		"service:" + rec.Service,
		"status:" + strings.ToLower(string(rec.Level)),
	}

	extra := make([]string, 0, len(rec.Attrs))
	for k, v := range rec.Attrs {
		extra = append(extra, k+":"+v)
	}
	sort.Strings(extra)

	return strings.Join(append(tags, extra...), ",")
}
