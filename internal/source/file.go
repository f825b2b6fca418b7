package source

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hpcloud/tail"

	"logship/internal/logging"
)

// FileSource tails a fixed list of log files and forwards every new
// line to the shipper as a record.
type FileSource struct {
	config  Config
	shipper logging.Shipper
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

type Config struct {
	Paths   []string
	Service string
	Host    string
	Env     string
	// If > 0, stop tailing a file after this period without new lines
	IdleTimeout time.Duration
}

func New(ctx context.Context, config Config, shipper logging.Shipper) *FileSource {
	nCtx, cancel := context.WithCancel(ctx)
	return &FileSource{
		config:  config,
		shipper: shipper,
		ctx:     nCtx,
		cancel:  cancel,
	}
}

func (f *FileSource) Start() {
	for _, path := range f.config.Paths {
		f.wg.Add(1)
		go f.follow(path)
	}
	if len(f.config.Paths) > 0 {
		log.Printf("File source started, tailing %d file(s)", len(f.config.Paths))
	}
}

func (f *FileSource) Stop() {
	f.cancel()
	f.wg.Wait()
}

func (f *FileSource) follow(path string) {
	defer f.wg.Done()

	t, err := tail.TailFile(path, tail.Config{
		Follow:   true,
		ReOpen:   true,
		Poll:     true,
		Location: &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Logger:   tail.DiscardingLogger,
	})
	if err != nil {
		log.Printf("Failed to tail file %s: %v", path, err)
		return
	}
	defer t.Cleanup()

	checkTicker := time.NewTicker(1 * time.Second)
	defer checkTicker.Stop()

	lastActivity := time.Now()

	for {
		select {
		case line := <-t.Lines:
			if line == nil {
				continue
			}
			if line.Err != nil {
				log.Printf("Error reading from %s: %v", path, line.Err)
				continue
			}

			f.shipper.Record(logging.Record{
				Timestamp: time.Now(),
				Level:     guessLevel(line.Text),
				Message:   line.Text,
				Service:   f.config.Service,
				Host:      f.config.Host,
				Env:       f.config.Env,
				Attrs:     map[string]string{"file": filepath.Base(path)},
			})
			lastActivity = time.Now()

		case <-checkTicker.C:
			// waking up from blocking line reading to check context status and idle timeout
			if f.config.IdleTimeout > 0 && time.Since(lastActivity) > f.config.IdleTimeout {
				return
			}
		case <-f.ctx.Done():
			return
		}
	}
}

// guessLevel infers a severity from the line text, defaulting to INFO.
func guessLevel(text string) logging.Level {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, "CRITICAL"), strings.Contains(upper, "FATAL"):
		return logging.LevelCritical
	case strings.Contains(upper, "ERROR"):
		return logging.LevelError
	case strings.Contains(upper, "WARN"):
		return logging.LevelWarning
	case strings.Contains(upper, "DEBUG"):
		return logging.LevelDebug
	default:
		return logging.LevelInfo
	}
}
