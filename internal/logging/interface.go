package logging

import (
	"time"
)

type Level string

const (
	LevelDebug    Level = "DEBUG"
	LevelInfo     Level = "INFO"
	LevelWarning  Level = "WARNING"
	LevelError    Level = "ERROR"
	LevelCritical Level = "CRITICAL"
)

// Levels lists every level in increasing severity order.
var Levels = []Level{LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical}

// Record is a single structured log record. Immutable once created.
type Record struct {
	Timestamp time.Time
	Level     Level
	Message   string
	Service   string
	Host      string
	Env       string
	Attrs     map[string]string
}

type Shipper interface {
	Record(rec Record)
	Flush()
	Start()
	Stop()
}

type Sink interface {
	SendBatch(records []Record) error
}

type Config struct {
	MaxBatchSize  int
	FlushInterval time.Duration
}

const (
	DefaultMaxBatchSize  = 10
	DefaultFlushInterval = 5 * time.Second
)

// WithDefaults fills zero fields with the default thresholds.
func (c Config) WithDefaults() Config {
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = DefaultMaxBatchSize
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = DefaultFlushInterval
	}
	return c
}
