package console

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"logship/internal/logging"
)

// Sink writes records as JSON lines. It is the fallback when no remote
// backend is configured.
type Sink struct {
	out io.Writer
}

type line struct {
	Timestamp string            `json:"timestamp"`
	Level     string            `json:"level"`
	Message   string            `json:"message"`
	Service   string            `json:"service"`
	Host      string            `json:"host"`
	Env       string            `json:"env"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

func NewSink(out io.Writer) *Sink {
	if out == nil {
		out = os.Stdout
	}
	return &Sink{out: out}
}

func (s *Sink) SendBatch(records []logging.Record) error {
	for _, rec := range records {
		data, err := json.Marshal(line{
			Timestamp: rec.Timestamp.Format(time.RFC3339),
			Level:     string(rec.Level),
			Message:   rec.Message,
			Service:   rec.Service,
			Host:      rec.Host,
			Env:       rec.Env,
			Attrs:     rec.Attrs,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}

		if _, err := fmt.Fprintln(s.out, string(data)); err != nil {
			return err
		}
	}
	return nil
}
