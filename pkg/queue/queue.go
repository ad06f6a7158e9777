package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/onurcolak/wa-inbound-service/environments"
	"github.com/onurcolak/wa-inbound-service/pkg/logger"
)

// AddResult is the typed outcome of Add.
type AddResult int

const (
	Created AddResult = iota + 1
	AlreadyExists
)

func (r AddResult) String() string {
	switch r {
	case Created:
		return "created"
	case AlreadyExists:
		return "already_exists"
	default:
		return "unknown"
	}
}

// FailResult tells the caller what Fail did with the job.
type FailResult struct {
	Retrying     bool
	Delay        time.Duration
	AttemptsMade int
}

type Options struct {
	// Attempts is the total attempt budget per job, including the first run.
	Attempts int
	// Backoff is the base delay; retry n waits Backoff * 2^(n-1).
	Backoff time.Duration
	// KeepCompleted and KeepFailed bound the terminal sets. Negative keeps everything,
	// zero removes jobs as soon as they finish.
	KeepCompleted int
	KeepFailed    int
}

func OptionsFromConfig(cfg environments.QueueConfig) Options {
	return Options{
		Attempts:      cfg.Attempts,
		Backoff:       cfg.Backoff,
		KeepCompleted: cfg.KeepCompleted,
		KeepFailed:    cfg.KeepFailed,
	}
}

// Job is a fetched job held by a worker slot until Complete or Fail.
type Job struct {
	ID           string
	Data         json.RawMessage
	AttemptsMade int
	MaxAttempts  int
}

// JobInfo is the inspection view of a stored job.
type JobInfo struct {
	ID           string          `json:"id"`
	State        string          `json:"state"`
	Data         json.RawMessage `json:"data"`
	AttemptsMade int             `json:"attemptsMade"`
	MaxAttempts  int             `json:"maxAttempts"`
	FailedReason string          `json:"failedReason,omitempty"`
	CreatedAt    *time.Time      `json:"createdAt,omitempty"`
	ProcessedAt  *time.Time      `json:"processedAt,omitempty"`
	FinishedAt   *time.Time      `json:"finishedAt,omitempty"`
}

type Counts struct {
	Waiting   int64 `json:"waiting"`
	Active    int64 `json:"active"`
	Delayed   int64 `json:"delayed"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// Queue is an at-least-once job queue on Redis with deterministic job ids,
// bounded exponential retries and size-bounded retention of finished jobs.
type Queue struct {
	rdb  *redis.Client
	name string
	opts Options
	now  func() time.Time
}

func NewRedisClient(cfg environments.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Infof("Connected to Redis queue backend")

	return rdb, nil
}

func New(rdb *redis.Client, name string, opts Options) *Queue {
	if opts.Attempts <= 0 {
		opts.Attempts = 1
	}

	return &Queue{
		rdb:  rdb,
		name: name,
		opts: opts,
		now:  time.Now,
	}
}

func (q *Queue) Name() string {
	return q.name
}

func (q *Queue) key(suffix string) string {
	return q.name + ":" + suffix
}

func (q *Queue) jobPrefix() string {
	return q.name + ":job:"
}

func (q *Queue) jobKey(id string) string {
	return q.jobPrefix() + id
}

func (q *Queue) nowMillis() int64 {
	return q.now().UnixMilli()
}

// Add enqueues data under id. A job that still exists under the same id, in any
// state, makes Add a no-op reporting AlreadyExists.
func (q *Queue) Add(ctx context.Context, id string, data any) (AddResult, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal job %s: %w", id, err)
	}

	created, err := addScript.Run(ctx, q.rdb,
		[]string{q.jobKey(id), q.key("wait")},
		id, string(payload), q.opts.Attempts, q.nowMillis(),
	).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to add job %s: %w", id, err)
	}

	if created == 0 {
		return AlreadyExists, nil
	}
	return Created, nil
}

// Fetch moves the next ready job to active. Delayed jobs whose backoff has elapsed
// are promoted first.
func (q *Queue) Fetch(ctx context.Context) (*Job, error) {
	vals, err := fetchScript.Run(ctx, q.rdb,
		[]string{q.key("wait"), q.key("active"), q.key("delayed")},
		q.nowMillis(), q.jobPrefix(),
	).Slice()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoJob
		}
		return nil, fmt.Errorf("failed to fetch job: %w", err)
	}

	if len(vals) != 4 {
		return nil, fmt.Errorf("failed to fetch job: unexpected reply of %d values", len(vals))
	}

	return &Job{
		ID:           toString(vals[0]),
		Data:         json.RawMessage(toString(vals[1])),
		AttemptsMade: toInt(vals[2]),
		MaxAttempts:  toInt(vals[3]),
	}, nil
}

func (q *Queue) Complete(ctx context.Context, job *Job) error {
	res, err := completeScript.Run(ctx, q.rdb,
		[]string{q.key("active"), q.key("completed"), q.jobKey(job.ID)},
		job.ID, q.nowMillis(), q.opts.KeepCompleted, q.jobPrefix(),
	).Int()
	if err != nil {
		return fmt.Errorf("failed to complete job %s: %w", job.ID, err)
	}
	if res < 0 {
		return fmt.Errorf("failed to complete job %s: %w", job.ID, ErrJobNotActive)
	}

	return nil
}

// Fail records cause on the job. Retriable causes within the attempt budget are
// scheduled on the delayed set; fatal causes and exhausted jobs land in failed.
func (q *Queue) Fail(ctx context.Context, job *Job, cause error) (FailResult, error) {
	attemptsMade := job.AttemptsMade + 1
	maxAttempts := job.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = q.opts.Attempts
	}

	retry := !IsFatal(cause) && attemptsMade < maxAttempts
	delay := q.backoff(attemptsMade)

	reason := ""
	if cause != nil {
		reason = cause.Error()
	}

	now := q.now()
	retryFlag := "0"
	if retry {
		retryFlag = "1"
	}

	res, err := failScript.Run(ctx, q.rdb,
		[]string{q.key("active"), q.key("delayed"), q.key("failed"), q.jobKey(job.ID)},
		job.ID, now.UnixMilli(), reason, retryFlag, now.Add(delay).UnixMilli(), q.opts.KeepFailed, q.jobPrefix(),
	).Int()
	if err != nil {
		return FailResult{}, fmt.Errorf("failed to fail job %s: %w", job.ID, err)
	}
	if res < 0 {
		return FailResult{}, fmt.Errorf("failed to fail job %s: %w", job.ID, ErrJobNotActive)
	}

	result := FailResult{Retrying: retry, AttemptsMade: attemptsMade}
	if retry {
		result.Delay = delay
	}

	return result, nil
}

// Postpone moves an active job back to delayed for delay without spending an attempt.
// It is for jobs that could not start, not for jobs that ran and failed.
func (q *Queue) Postpone(ctx context.Context, job *Job, delay time.Duration, reason string) error {
	res, err := postponeScript.Run(ctx, q.rdb,
		[]string{q.key("active"), q.key("delayed"), q.jobKey(job.ID)},
		job.ID, q.now().Add(delay).UnixMilli(), reason,
	).Int()
	if err != nil {
		return fmt.Errorf("failed to postpone job %s: %w", job.ID, err)
	}
	if res < 0 {
		return fmt.Errorf("failed to postpone job %s: %w", job.ID, ErrJobNotActive)
	}

	return nil
}

func (q *Queue) backoff(attemptsMade int) time.Duration {
	if attemptsMade < 1 {
		attemptsMade = 1
	}
	shift := attemptsMade - 1
	if shift > 30 {
		shift = 30
	}
	return q.opts.Backoff * time.Duration(1<<shift)
}

// RetryFailed moves a terminally failed job back to wait with a fresh attempt budget.
func (q *Queue) RetryFailed(ctx context.Context, id string) error {
	res, err := retryFailedScript.Run(ctx, q.rdb,
		[]string{q.key("failed"), q.key("wait"), q.jobKey(id)},
		id,
	).Int()
	if err != nil {
		return fmt.Errorf("failed to retry job %s: %w", id, err)
	}
	if res == 0 {
		return fmt.Errorf("failed job %s: %w", id, ErrJobNotFound)
	}

	return nil
}

// RequeueStalled returns jobs active for longer than olderThan to wait. A slot that
// crashed mid-job leaves its job active forever otherwise.
func (q *Queue) RequeueStalled(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := q.now().Add(-olderThan).UnixMilli()

	n, err := requeueStalledScript.Run(ctx, q.rdb,
		[]string{q.key("active"), q.key("wait")},
		cutoff, q.jobPrefix(),
	).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to requeue stalled jobs: %w", err)
	}

	return n, nil
}

func (q *Queue) Counts(ctx context.Context) (Counts, error) {
	pipe := q.rdb.Pipeline()
	waiting := pipe.LLen(ctx, q.key("wait"))
	active := pipe.ZCard(ctx, q.key("active"))
	delayed := pipe.ZCard(ctx, q.key("delayed"))
	completed := pipe.ZCard(ctx, q.key("completed"))
	failed := pipe.ZCard(ctx, q.key("failed"))

	if _, err := pipe.Exec(ctx); err != nil {
		return Counts{}, fmt.Errorf("failed to count jobs: %w", err)
	}

	return Counts{
		Waiting:   waiting.Val(),
		Active:    active.Val(),
		Delayed:   delayed.Val(),
		Completed: completed.Val(),
		Failed:    failed.Val(),
	}, nil
}

// ListFailed returns failed jobs, most recent first.
func (q *Queue) ListFailed(ctx context.Context, page, pageSize int) ([]JobInfo, int64, error) {
	total, err := q.rdb.ZCard(ctx, q.key("failed")).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count failed jobs: %w", err)
	}

	start := int64((page - 1) * pageSize)
	stop := start + int64(pageSize) - 1

	ids, err := q.rdb.ZRevRange(ctx, q.key("failed"), start, stop).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list failed jobs: %w", err)
	}

	jobs := make([]JobInfo, 0, len(ids))
	for _, id := range ids {
		info, err := q.GetJob(ctx, id)
		if err != nil {
			return nil, 0, err
		}
		if info != nil {
			jobs = append(jobs, *info)
		}
	}

	return jobs, total, nil
}

// GetJob returns nil, nil when the job does not exist (never added, or trimmed).
func (q *Queue) GetJob(ctx context.Context, id string) (*JobInfo, error) {
	fields, err := q.rdb.HGetAll(ctx, q.jobKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	return &JobInfo{
		ID:           fields["id"],
		State:        fields["state"],
		Data:         json.RawMessage(fields["data"]),
		AttemptsMade: toInt(fields["attemptsMade"]),
		MaxAttempts:  toInt(fields["maxAttempts"]),
		FailedReason: fields["failedReason"],
		CreatedAt:    millisToTime(fields["createdAt"]),
		ProcessedAt:  millisToTime(fields["processedOn"]),
		FinishedAt:   millisToTime(fields["finishedOn"]),
	}, nil
}

func (q *Queue) Ping(ctx context.Context) error {
	return q.rdb.Ping(ctx).Err()
}

func (q *Queue) Close() error {
	return q.rdb.Close()
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case int64:
		return strconv.FormatInt(s, 10)
	default:
		return ""
	}
}

func toInt(v any) int {
	n, err := strconv.Atoi(toString(v))
	if err != nil {
		return 0
	}
	return n
}

func millisToTime(v string) *time.Time {
	if v == "" {
		return nil
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}
