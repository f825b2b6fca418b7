package simulator

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"logship/internal/logging"
)

const recentErrorsMax = 10

var errorTypes = []string{
	"DatabaseTimeout",
	"NetworkError",
	"ValidationError",
	"ProcessingError",
	"AuthenticationFailure",
}

// ErrorEvent is one generated or manually triggered error, kept for the
// status API.
type ErrorEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	ID        string    `json:"id"`
}

// HeartbeatStatus is the most recent heartbeat observation.
type HeartbeatStatus struct {
	LastHeartbeat time.Time `json:"last_heartbeat"`
	Count         int       `json:"count"`
}

type Config struct {
	Service           string
	Host              string
	Env               string
	HeartbeatInterval time.Duration // default 30s
	MockErrors        bool
}

// Simulator exercises the shipper: a heartbeat record on a fixed
// interval, a mock error at a random interval, and on-demand bursts.
type Simulator struct {
	config  Config
	shipper logging.Shipper
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu             sync.Mutex
	heartbeatCount int
	lastHeartbeat  time.Time
	errorCount     int
	recentErrors   []ErrorEvent
}

func New(ctx context.Context, config Config, shipper logging.Shipper) *Simulator {
	if config.HeartbeatInterval <= 0 {
		config.HeartbeatInterval = 30 * time.Second
	}

	nCtx, cancel := context.WithCancel(ctx)
	return &Simulator{
		config:  config,
		shipper: shipper,
		ctx:     nCtx,
		cancel:  cancel,
	}
}

func (s *Simulator) Start() {
	s.wg.Add(1)
	go s.heartbeatLoop()

	if s.config.MockErrors {
		s.wg.Add(1)
		go s.errorLoop()
	}
}

func (s *Simulator) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Simulator) heartbeatLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			s.heartbeatCount++
			s.lastHeartbeat = time.Now()
			count := s.heartbeatCount
			s.mu.Unlock()

			s.shipper.Record(s.record(logging.LevelInfo,
				fmt.Sprintf("Heartbeat #%d - Application running normally", count), nil))

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Simulator) errorLoop() {
	defer s.wg.Done()

	for {
		// 45 to 90 seconds between mock errors
		wait := time.Duration(45+rand.Intn(45)) * time.Second

		select {
		case <-time.After(wait):
			errType := errorTypes[rand.Intn(len(errorTypes))]
			s.emitError(errType, fmt.Sprintf("Simulated %s for testing", errType))

		case <-s.ctx.Done():
			return
		}
	}
}

// TriggerError emits an error record on demand and returns its message.
func (s *Simulator) TriggerError() string {
	return s.emitError("ManualError", "User triggered test error")
}

func (s *Simulator) emitError(errType, detail string) string {
	id := fmt.Sprintf("ERR-%s-%s",
		strings.ToUpper(errType[:3]), uuid.New().String()[:8])
	message := fmt.Sprintf("[%s] %s (ID: %s)", errType, detail, id)

	event := ErrorEvent{
		Timestamp: time.Now(),
		Message:   message,
		Type:      errType,
		ID:        id,
	}

	s.mu.Lock()
	s.errorCount++
	s.recentErrors = append(s.recentErrors, event)
	if len(s.recentErrors) > recentErrorsMax {
		s.recentErrors = s.recentErrors[len(s.recentErrors)-recentErrorsMax:]
	}
	s.mu.Unlock()

	s.shipper.Record(s.record(logging.LevelError, message,
		map[string]string{"error_type": errType, "error_id": id}))

	return message
}

// EmitTestLogs ships one record per level, mirroring a manual smoke
// test of the pipeline.
func (s *Simulator) EmitTestLogs() {
	for _, level := range logging.Levels {
		s.shipper.Record(s.record(level,
			fmt.Sprintf("This is a test %s message", level), nil))
	}
}

// Simulate generates count records paced at perSecond. It blocks until
// done or the context is cancelled; callers run it in a goroutine.
func (s *Simulator) Simulate(ctx context.Context, count, perSecond int) {
	if perSecond <= 0 {
		perSecond = 100
	}

	limiter := rate.NewLimiter(rate.Limit(perSecond), perSecond)
	messages := []string{
		"Request processed successfully",
		"Connection timeout",
		"Database query failed",
		"Invalid authentication token",
		"Rate limit exceeded",
		"Memory usage high",
	}
	levels := []logging.Level{
		logging.LevelInfo, logging.LevelInfo, logging.LevelInfo,
		logging.LevelWarning, logging.LevelError,
	}

	start := time.Now()
	for i := 0; i < count; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		s.shipper.Record(s.record(levels[rand.Intn(len(levels))],
			messages[rand.Intn(len(messages))],
			map[string]string{"request_id": uuid.New().String()}))
	}

	log.Printf("Simulation complete: %d records in %.2fs", count, time.Since(start).Seconds())
}

// Heartbeat returns the latest heartbeat observation.
func (s *Simulator) Heartbeat() HeartbeatStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return HeartbeatStatus{
		LastHeartbeat: s.lastHeartbeat,
		Count:         s.heartbeatCount,
	}
}

// Errors returns the total error count and the most recent errors.
func (s *Simulator) Errors() (int, []ErrorEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	recent := make([]ErrorEvent, len(s.recentErrors))
	copy(recent, s.recentErrors)
	return s.errorCount, recent
}

func (s *Simulator) record(level logging.Level, message string, attrs map[string]string) logging.Record {
	return logging.Record{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Service:   s.config.Service,
		Host:      s.config.Host,
		Env:       s.config.Env,
		Attrs:     attrs,
	}
}
