package simulator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"logship/internal/logging"
	"logship/internal/testutils"
)

func TestSimulator_TriggerError(t *testing.T) {
	mockShipper := &testutils.MockShipper{}
	sim := New(context.TODO(), Config{Service: "demo-app", Env: "test"}, mockShipper)

	message := sim.TriggerError()
	assert.True(t, strings.HasPrefix(message, "[ManualError]"))
	assert.Contains(t, message, "ERR-MAN-")

	count, recent := sim.Errors()
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, len(recent))
	assert.Equal(t, "ManualError", recent[0].Type)

	records := mockShipper.GetRecords()
	assert.Equal(t, 1, len(records))
	assert.Equal(t, logging.LevelError, records[0].Level)
	assert.Equal(t, "demo-app", records[0].Service)
	assert.Equal(t, recent[0].ID, records[0].Attrs["error_id"])
}

func TestSimulator_RecentErrorsBounded(t *testing.T) {
	mockShipper := &testutils.MockShipper{}
	sim := New(context.TODO(), Config{Service: "demo-app"}, mockShipper)

	for i := 0; i < 25; i++ {
		sim.TriggerError()
	}

	count, recent := sim.Errors()
	assert.Equal(t, 25, count)
	assert.Equal(t, recentErrorsMax, len(recent))
}

func TestSimulator_EmitTestLogs(t *testing.T) {
	mockShipper := &testutils.MockShipper{}
	sim := New(context.TODO(), Config{Service: "demo-app"}, mockShipper)

	sim.EmitTestLogs()

	records := mockShipper.GetRecords()
	assert.Equal(t, len(logging.Levels), len(records))
	for i, level := range logging.Levels {
		assert.Equal(t, level, records[i].Level)
	}
}

func TestSimulator_Simulate(t *testing.T) {
	mockShipper := &testutils.MockShipper{}
	sim := New(context.TODO(), Config{Service: "demo-app"}, mockShipper)

	sim.Simulate(context.Background(), 50, 10000)

	records := mockShipper.GetRecords()
	assert.Equal(t, 50, len(records))
	for _, rec := range records {
		assert.NotEmpty(t, rec.Attrs["request_id"])
	}
}

func TestSimulator_SimulateCancelled(t *testing.T) {
	mockShipper := &testutils.MockShipper{}
	sim := New(context.TODO(), Config{Service: "demo-app"}, mockShipper)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim.Simulate(ctx, 1000, 1)
	assert.LessOrEqual(t, len(mockShipper.GetRecords()), 1)
}

func TestSimulator_Heartbeat(t *testing.T) {
	mockShipper := &testutils.MockShipper{}
	sim := New(context.TODO(), Config{
		Service:           "demo-app",
		HeartbeatInterval: 20 * time.Millisecond,
	}, mockShipper)

	sim.Start()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if sim.Heartbeat().Count >= 2 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	sim.Stop()

	hb := sim.Heartbeat()
	assert.GreaterOrEqual(t, hb.Count, 2)
	assert.False(t, hb.LastHeartbeat.IsZero())

	records := mockShipper.GetRecords()
	assert.GreaterOrEqual(t, len(records), 2)
	assert.Contains(t, records[0].Message, "Heartbeat #1")
}
