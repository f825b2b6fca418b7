package datadog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"logship/internal/logging"
)

func TestSink_SendBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/api/v2/logs", r.URL.Path)
		assert.Equal(t, "secret-key", r.Header.Get("DD-API-KEY"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var entries []entry
		err := json.NewDecoder(r.Body).Decode(&entries)
		assert.NoError(t, err)

		assert.Equal(t, 1, len(entries))
		assert.Equal(t, "logship", entries[0].Source)
		assert.Equal(t, "demo-app", entries[0].Service)
		assert.Equal(t, "demo-host", entries[0].Hostname)
		assert.Equal(t, "error", entries[0].Status)
		assert.Equal(t, "something broke", entries[0].Message)

		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sink := NewSink(Config{Site: "us5.datadoghq.com", APIKey: "secret-key"})
	sink.url = server.URL + "/api/v2/logs"

	records := []logging.Record{
		{
			Timestamp: time.Now(),
			Level:     logging.LevelError,
			Message:   "something broke",
			Service:   "demo-app",
			Host:      "demo-host",
			Env:       "demo",
		},
	}

	err := sink.SendBatch(records)
	assert.NoError(t, err)
}

func TestSink_SendBatch_NoRetryOnFailure(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	sink := NewSink(Config{APIKey: "bad-key"})
	sink.url = server.URL + "/api/v2/logs"

	err := sink.SendBatch([]logging.Record{{Message: "m", Timestamp: time.Now()}})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestSink_SendBatch_Empty(t *testing.T) {
	sink := NewSink(Config{APIKey: "k"})
	sink.url = "http://127.0.0.1:1/api/v2/logs"

	assert.NoError(t, sink.SendBatch(nil))
}

func TestSink_CreatePayload(t *testing.T) {
	sink := NewSink(Config{Site: "us5.datadoghq.com", APIKey: "k", Source: "go"})

	now := time.Now()
	records := []logging.Record{
		{
			Timestamp: now,
			Level:     logging.LevelInfo,
			Message:   "message 1",
			Service:   "svc",
			Host:      "host-1",
			Env:       "demo",
			Attrs:     map[string]string{"logger": "main", "error_id": "ERR-1"},
		},
		{
			Timestamp: now.Add(time.Second),
			Level:     logging.LevelWarning,
			Message:   "message 2",
			Service:   "svc",
			Host:      "host-1",
			Env:       "demo",
		},
	}

	entries := sink.createPayload(records)

	assert.Equal(t, 2, len(entries))
	assert.Equal(t, "go", entries[0].Source)
	assert.Equal(t, now.UnixMilli(), entries[0].Timestamp)
	assert.Equal(t, "env:demo,service:svc,status:info,error_id:ERR-1,logger:main", entries[0].Tags)
	assert.Equal(t, "env:demo,service:svc,status:warning", entries[1].Tags)
}

func TestSink_DefaultURL(t *testing.T) {
	sink := NewSink(Config{APIKey: "k"})
	assert.Equal(t, "https://http-intake.logs.datadoghq.com/api/v2/logs", sink.url)

	sink = NewSink(Config{Site: "us5.datadoghq.com", APIKey: "k"})
	assert.Equal(t, "https://http-intake.logs.us5.datadoghq.com/api/v2/logs", sink.url)
}
