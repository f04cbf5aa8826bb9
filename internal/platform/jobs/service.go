package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"hrrecords/internal/platform/metrics"
	"hrrecords/internal/platform/querier"
)

const (
	JobPurgeSessions    = "purge_sessions"
	JobPurgeIdempotency = "purge_idempotency_keys"
)

// Service runs housekeeping jobs on a single worker fed by a bounded queue.
type Service struct {
	DB             querier.Querier
	Interval       time.Duration
	IdempotencyTTL time.Duration
	Metrics        *metrics.Collector
	Log            zerolog.Logger

	queue chan job
	now   func() time.Time
}

type job struct {
	Type string
	Run  func(context.Context) (int64, error)
}

func New(db querier.Querier, interval, idempotencyTTL time.Duration, collector *metrics.Collector, logger zerolog.Logger) *Service {
	return &Service{
		DB:             db,
		Interval:       interval,
		IdempotencyTTL: idempotencyTTL,
		Metrics:        collector,
		Log:            logger,
		queue:          make(chan job, 16),
		now:            time.Now,
	}
}

// Start launches the worker and, when Interval is positive, the scheduler.
// Both stop when ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Interval > 0 {
		go s.schedule(ctx, s.Interval)
	}
}

func (s *Service) Enqueue(jobType string, run func(context.Context) (int64, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		s.Log.Warn().Str("job_type", jobType).Msg("job queue full")
	}
}

// RunNow executes every housekeeping job synchronously and returns the rows
// removed per job.
func (s *Service) RunNow(ctx context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, j := range s.housekeeping() {
		n, err := s.runJob(ctx, j)
		if err != nil {
			return out, err
		}
		out[j.Type] = n
	}
	return out, nil
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				s.Log.Warn().Err(err).Str("job_type", j.Type).Msg("job run failed")
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (int64, error) {
	started := s.now()
	n, err := j.Run(ctx)
	s.Metrics.RecordOperation("job."+j.Type, err != nil)
	if err == nil {
		s.Log.Debug().Str("job_type", j.Type).Int64("removed", n).
			Dur("duration", s.now().Sub(started)).Msg("job completed")
	}
	return n, err
}

func (s *Service) schedule(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, j := range s.housekeeping() {
				s.Enqueue(j.Type, j.Run)
			}
		}
	}
}

func (s *Service) housekeeping() []job {
	return []job{
		{Type: JobPurgeSessions, Run: s.purgeSessions},
		{Type: JobPurgeIdempotency, Run: s.purgeIdempotencyKeys},
	}
}

func (s *Service) purgeSessions(ctx context.Context) (int64, error) {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM sessions
    WHERE expires_at < $1 OR revoked_at IS NOT NULL
  `, s.now())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Service) purgeIdempotencyKeys(ctx context.Context) (int64, error) {
	if s.IdempotencyTTL <= 0 {
		return 0, nil
	}
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM idempotency_keys
    WHERE created_at < $1
  `, s.now().Add(-s.IdempotencyTTL))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
