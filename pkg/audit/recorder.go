package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Metrics receives recorder observations. Satisfied by
// telemetry/metrics.AuditMetrics; nil disables recording.
type Metrics interface {
	RecordEvent(category string)
	RecordDropped()
}

// RecorderConfig contains configuration for the async recorder.
type RecorderConfig struct {
	// Enabled enables audit recording. When false, Record is a no-op.
	Enabled bool

	// Buffer is the size of the async write channel.
	// Default: 1000
	Buffer int

	// WriteTimeout is the timeout for writing one event to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// Metrics, when set, counts accepted and dropped events.
	Metrics Metrics
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		Enabled:      true,
		Buffer:       1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder is the async Sink implementation. Events are enqueued on a
// bounded channel and drained by a background worker; a full channel drops
// the event with a log line instead of blocking the pipeline.
type Recorder struct {
	storage Storage
	config  *RecorderConfig
	events  chan *Event
	done    chan struct{}
	wg      sync.WaitGroup
	logger  *slog.Logger

	dropped int64
	mu      sync.Mutex
}

// NewRecorder creates an async recorder over the given storage backend and
// starts its background worker.
func NewRecorder(storage Storage, config *RecorderConfig) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if config.Buffer <= 0 {
		config.Buffer = 1000
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		storage: storage,
		config:  config,
		events:  make(chan *Event, config.Buffer),
		done:    make(chan struct{}),
		logger:  slog.Default().With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder initialized",
		"buffer", config.Buffer,
		"write_timeout", config.WriteTimeout,
	)
	return r
}

// Record implements Sink. It assigns the event an ID and timestamp when
// absent and returns immediately; it never blocks on storage.
func (r *Recorder) Record(ctx context.Context, event *Event) {
	if !r.config.Enabled || event == nil {
		return
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	select {
	case r.events <- event:
		if r.config.Metrics != nil {
			r.config.Metrics.RecordEvent(string(event.Category))
		}
	default:
		if r.config.Metrics != nil {
			r.config.Metrics.RecordDropped()
		}
		r.mu.Lock()
		r.dropped++
		dropped := r.dropped
		r.mu.Unlock()

		r.logger.Warn("audit channel full, dropping event",
			"event_id", event.ID,
			"title", event.Title,
			"dropped_total", dropped,
		)
	}
}

// Dropped returns the number of events dropped because the buffer was full.
func (r *Recorder) Dropped() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Close shuts the recorder down, draining pending events first.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()
	return nil
}

// worker drains the event channel and writes events to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case event := <-r.events:
			r.writeEvent(event)

		case <-r.done:
			for {
				select {
				case event := <-r.events:
					r.writeEvent(event)
				default:
					return
				}
			}
		}
	}
}

// writeEvent writes a single event; failures are logged and discarded, never
// propagated.
func (r *Recorder) writeEvent(event *Event) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, event); err != nil {
		r.logger.Error("failed to store audit event",
			"event_id", event.ID,
			"title", event.Title,
			"error", err,
		)
	}
}
