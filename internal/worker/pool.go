package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/onurcolak/wa-inbound-service/internal/domain"
	"github.com/onurcolak/wa-inbound-service/pkg/events"
	"github.com/onurcolak/wa-inbound-service/pkg/logger"
	"github.com/onurcolak/wa-inbound-service/pkg/queue"
	"github.com/onurcolak/wa-inbound-service/pkg/webhook"
)

// jobSource is the subset of *queue.Queue the pool drives.
type jobSource interface {
	Name() string
	Fetch(ctx context.Context) (*queue.Job, error)
	Complete(ctx context.Context, job *queue.Job) error
	Fail(ctx context.Context, job *queue.Job, cause error) (queue.FailResult, error)
	Postpone(ctx context.Context, job *queue.Job, delay time.Duration, reason string) error
	RequeueStalled(ctx context.Context, olderThan time.Duration) (int, error)
}

type jobHandler interface {
	Handle(ctx context.Context, data []byte) (Result, error)
}

type alertSender interface {
	SendAlert(ctx context.Context, alert webhook.Alert) error
}

type PoolConfig struct {
	Concurrency  int
	PollInterval time.Duration
	StallTimeout time.Duration
}

// Pool runs Concurrency slots, each fetching and handling one job at a time.
type Pool struct {
	source    jobSource
	handler   jobHandler
	alerts    alertSender
	publisher events.Publisher

	concurrency  int
	pollInterval time.Duration
	stallTimeout time.Duration

	// Internal state
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex

	// Statistics
	startedAt       time.Time
	lastJobAt       time.Time
	lastAlertSentAt time.Time
	processed       int64
	skipped         int64
	retried         int64
	postponed       int64
	failed          int64
}

func NewPool(source jobSource, handler jobHandler, alerts alertSender, publisher events.Publisher, cfg PoolConfig) *Pool {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if publisher == nil {
		publisher = events.Nop()
	}

	return &Pool{
		source:       source,
		handler:      handler,
		alerts:       alerts,
		publisher:    publisher,
		concurrency:  cfg.Concurrency,
		pollInterval: cfg.PollInterval,
		stallTimeout: cfg.StallTimeout,
	}
}

func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()

	if p.running {
		p.mu.Unlock()
		logger.Warnf("Worker pool is already running")
		return nil
	}

	p.running = true
	p.startedAt = time.Now()
	p.stopChan = make(chan struct{})
	stopChan := p.stopChan
	p.mu.Unlock()

	logger.Infof("Starting worker pool on queue %s with %d slots", p.source.Name(), p.concurrency)

	for slot := 1; slot <= p.concurrency; slot++ {
		p.wg.Add(1)
		go p.runSlot(ctx, slot, stopChan)
	}

	if p.stallTimeout > 0 {
		p.wg.Add(1)
		go p.runStallReaper(ctx, stopChan)
	}

	return nil
}

// Stop signals every slot and waits for in-flight jobs to finish.
func (p *Pool) Stop() error {
	p.mu.Lock()

	if !p.running {
		p.mu.Unlock()
		logger.Warnf("Worker pool is not running")
		return nil
	}

	p.running = false
	stopChan := p.stopChan
	p.mu.Unlock()

	close(stopChan)
	p.wg.Wait()

	logger.Infof("Worker pool stopped")
	return nil
}

func (p *Pool) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

func (p *Pool) GetStatus() PoolStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return PoolStatus{
		Running:         p.running,
		Queue:           p.source.Name(),
		Concurrency:     p.concurrency,
		StartedAt:       p.startedAt,
		LastJobAt:       p.lastJobAt,
		LastAlertSentAt: p.lastAlertSentAt,
		Processed:       p.processed,
		Skipped:         p.skipped,
		Retried:         p.retried,
		Postponed:       p.postponed,
		Failed:          p.failed,
	}
}

func (p *Pool) runSlot(ctx context.Context, slot int, stopChan <-chan struct{}) {
	defer p.wg.Done()

	logger.Debugf("Worker slot %d started", slot)

	for {
		select {
		case <-stopChan:
			return
		case <-ctx.Done():
			return
		default:
		}

		job, err := p.source.Fetch(ctx)
		if err != nil {
			if !errors.Is(err, queue.ErrNoJob) && ctx.Err() == nil {
				logger.Errorf("Worker slot %d failed to fetch job: %v", slot, err)
			}
			if !p.wait(ctx, stopChan) {
				return
			}
			continue
		}

		// In-flight jobs finish even when shutdown begins.
		p.process(context.WithoutCancel(ctx), job)
	}
}

func (p *Pool) wait(ctx context.Context, stopChan <-chan struct{}) bool {
	timer := time.NewTimer(p.pollInterval)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-stopChan:
		return false
	case <-ctx.Done():
		return false
	}
}

func (p *Pool) process(ctx context.Context, job *queue.Job) {
	result, handleErr := p.handler.Handle(ctx, job.Data)

	p.mu.Lock()
	p.lastJobAt = time.Now()
	p.mu.Unlock()

	if handleErr == nil {
		if err := p.source.Complete(ctx, job); err != nil {
			logger.Errorf("Failed to complete job %s: %v", job.ID, err)
			return
		}

		p.mu.Lock()
		if result.Skipped {
			p.skipped++
		} else {
			p.processed++
		}
		p.mu.Unlock()
		return
	}

	if errors.Is(handleErr, domain.ErrClaimLocked) {
		p.postpone(ctx, job, handleErr)
		return
	}

	res, err := p.source.Fail(ctx, job, handleErr)
	if err != nil {
		logger.Errorf("Failed to record failure of job %s: %v", job.ID, err)
		return
	}

	p.mu.Lock()
	if res.Retrying {
		p.retried++
	} else {
		p.failed++
	}
	p.mu.Unlock()

	p.reportFailure(ctx, job, res, handleErr)
}

// postpone parks a job whose claim is held elsewhere until the holder's lease runs
// out. The job never ran, so no attempt is spent and nothing is reported.
func (p *Pool) postpone(ctx context.Context, job *queue.Job, cause error) {
	delay := p.stallTimeout
	if until, ok := domain.LockedUntil(cause); ok {
		delay = time.Until(until)
	}
	if delay < p.pollInterval {
		delay = p.pollInterval
	}

	if err := p.source.Postpone(ctx, job, delay, cause.Error()); err != nil {
		logger.Errorf("Failed to postpone job %s: %v", job.ID, err)
		return
	}

	p.mu.Lock()
	p.postponed++
	p.mu.Unlock()

	logger.Infof("Job %s postponed for %v, claim is held by another worker", job.ID, delay)
}

func (p *Pool) reportFailure(ctx context.Context, job *queue.Job, res queue.FailResult, cause error) {
	outcome := events.InboundOutcome{
		JobID:    job.ID,
		Outcome:  "failed",
		Attempts: res.AttemptsMade,
		Error:    domain.TruncateError(cause.Error()),
		Retrying: res.Retrying,
	}
	if decoded, err := DecodeJob(job.Data); err == nil {
		outcome.WaAccountID = decoded.WaAccountID
		outcome.WaMessageID = decoded.WaMessageID
	}

	publishOutcome(ctx, p.publisher, events.KeyInboundFailed, outcome)

	if res.Retrying {
		logger.Warnf("Job %s failed on attempt %d, retrying in %v: %v", job.ID, res.AttemptsMade, res.Delay, cause)
		return
	}

	logger.Errorf("Job %s failed permanently after %d attempts: %v", job.ID, res.AttemptsMade, cause)

	if p.alerts == nil {
		return
	}

	alert := webhook.Alert{
		Alert:    webhook.AlertJobFailed,
		Queue:    p.source.Name(),
		JobID:    job.ID,
		Attempts: res.AttemptsMade,
		Error:    outcome.Error,
		Message:  fmt.Sprintf("Job %s failed permanently after %d attempts", job.ID, res.AttemptsMade),
	}
	if err := p.alerts.SendAlert(ctx, alert); err != nil {
		logger.Warnf("Failed to send alert for job %s: %v", job.ID, err)
		return
	}

	p.mu.Lock()
	p.lastAlertSentAt = time.Now()
	p.mu.Unlock()
}

func (p *Pool) runStallReaper(ctx context.Context, stopChan <-chan struct{}) {
	defer p.wg.Done()

	interval := p.stallTimeout / 2
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := p.source.RequeueStalled(ctx, p.stallTimeout)
			if err != nil {
				logger.Errorf("Failed to requeue stalled jobs: %v", err)
				continue
			}
			if n > 0 {
				logger.Warnf("Requeued %d stalled jobs", n)
			}

		case <-stopChan:
			return

		case <-ctx.Done():
			return
		}
	}
}

type PoolStatus struct {
	Running         bool      `json:"running"`
	Queue           string    `json:"queue"`
	Concurrency     int       `json:"concurrency"`
	StartedAt       time.Time `json:"startedAt,omitempty"`
	LastJobAt       time.Time `json:"lastJobAt,omitempty"`
	LastAlertSentAt time.Time `json:"lastAlertSentAt,omitempty"`
	Processed       int64     `json:"processed"`
	Skipped         int64     `json:"skipped"`
	Retried         int64     `json:"retried"`
	Postponed       int64     `json:"postponed"`
	Failed          int64     `json:"failed"`
}
