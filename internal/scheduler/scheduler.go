// Package scheduler runs the periodic maintenance jobs on cron specs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sharath018/church-notification-backend/metrics"
	"go.uber.org/zap"
)

type Job func(ctx context.Context) error

type jobDef struct {
	name    string
	spec    string
	timeout time.Duration
	run     Job
}

// Service owns one cron instance. Jobs are registered before Start; a run
// that is still going when its next tick arrives causes that tick to be
// skipped.
type Service struct {
	mu      sync.Mutex
	log     *zap.Logger
	loc     *time.Location
	parser  cron.Parser
	c       *cron.Cron
	defs    []jobDef
	baseCtx context.Context
	cancel  context.CancelFunc
}

func New(loc *time.Location, log *zap.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		log:    log.Named("scheduler"),
		loc:    loc,
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

// Add registers a job. The spec is validated immediately.
func (s *Service) Add(name, spec string, timeout time.Duration, run Job) error {
	if _, err := s.parser.Parse(spec); err != nil {
		return fmt.Errorf("job %s: invalid spec %q: %w", name, spec, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return errors.New("scheduler already started")
	}
	s.defs = append(s.defs, jobDef{name: name, spec: spec, timeout: timeout, run: run})
	return nil
}

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil
	}

	s.baseCtx, s.cancel = context.WithCancel(ctx)
	s.c = cron.New(
		cron.WithParser(s.parser),
		cron.WithLocation(s.loc),
		cron.WithChain(cron.Recover(cronLogger{s.log}), cron.SkipIfStillRunning(cronLogger{s.log})),
	)
	for _, d := range s.defs {
		d := d
		if _, err := s.c.AddFunc(d.spec, func() { s.runJob(d) }); err != nil {
			return fmt.Errorf("job %s: %w", d.name, err)
		}
	}
	s.c.Start()
	s.log.Info("⏱️ Scheduler started", zap.Int("jobs", len(s.defs)), zap.String("tz", s.loc.String()))
	return nil
}

// Stop cancels running jobs and waits for them to return or ctx to expire.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.c
	cancel := s.cancel
	s.c = nil
	s.mu.Unlock()
	if c == nil {
		return
	}

	done := c.Stop().Done()
	cancel()
	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn("⚠️ Scheduler stop timed out")
	}
	s.log.Info("🛑 Scheduler stopped")
}

// ErrUnknownJob is returned by RunNow for names that were never added.
var ErrUnknownJob = errors.New("unknown job")

// RunNow executes a registered job synchronously, outside its schedule.
func (s *Service) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	var def *jobDef
	for i := range s.defs {
		if s.defs[i].name == name {
			def = &s.defs[i]
			break
		}
	}
	s.mu.Unlock()
	if def == nil {
		return fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}
	return s.execute(ctx, *def)
}

func (s *Service) runJob(d jobDef) {
	s.mu.Lock()
	ctx := s.baseCtx
	s.mu.Unlock()
	if err := s.execute(ctx, d); err != nil {
		s.log.Error("❌ Scheduled job failed", zap.String("job", d.name), zap.Error(err))
	}
}

func (s *Service) execute(ctx context.Context, d jobDef) error {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	start := time.Now()
	err := d.run(ctx)
	took := time.Since(start)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.JobDuration.WithLabelValues(d.name, status).Observe(took.Seconds())
	s.log.Debug("job finished", zap.String("job", d.name), zap.Duration("took", took), zap.Error(err))
	return err
}

// cronLogger adapts zap to the cron.Logger interface.
type cronLogger struct {
	log *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
