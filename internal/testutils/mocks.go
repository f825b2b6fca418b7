package testutils

import (
	"fmt"
	"sync"
	"time"

	"logship/internal/logging"
)

type MockSink struct {
	SentBatches [][]logging.Record
	mu          sync.Mutex
	ShouldFail  bool
	Delay       time.Duration
}

func (m *MockSink) SendBatch(records []logging.Record) error {
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ShouldFail {
		return fmt.Errorf("mock send failed")
	}

	m.SentBatches = append(m.SentBatches, records)
	return nil
}

func (m *MockSink) GetSentBatches() [][]logging.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.SentBatches
}

type MockShipper struct {
	Records     []logging.Record
	mu          sync.Mutex
	RecordCalls int
	FlushCalls  int
	StartCalls  int
	StopCalls   int
}

func (m *MockShipper) Record(rec logging.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, rec)
	m.RecordCalls++
}

func (m *MockShipper) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlushCalls++
}

func (m *MockShipper) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartCalls++
}

func (m *MockShipper) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StopCalls++
}

func (m *MockShipper) GetRecords() []logging.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]logging.Record, len(m.Records))
	copy(out, m.Records)
	return out
}
