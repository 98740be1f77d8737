package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/damoang/tourlog-backend/internal/common"
)

// Handler runs one invocation of an interval task
type Handler func(ctx context.Context) error

// Locker guards a task across processes. ok is false when another
// instance currently holds the lock.
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (release func(context.Context) error, ok bool, err error)
}

// Task 등록된 주기적 작업
type Task struct {
	Name      string
	Interval  time.Duration
	Handler   Handler
	LastRun   time.Time
	NextRun   time.Time
	RunCount  int64
	LastError error

	running sync.Mutex
}

// Scheduler in-process interval scheduler
type Scheduler struct {
	tasks        []*Task
	mu           sync.RWMutex
	logger       zerolog.Logger
	locker       Locker
	tickInterval time.Duration
	leaseTTL     time.Duration
	now          func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option scheduler 옵션
type Option func(*Scheduler)

// WithLocker 다중 인스턴스 배포 시 분산 락 사용
func WithLocker(l Locker) Option {
	return func(s *Scheduler) { s.locker = l }
}

// WithTickInterval 체크 주기 (기본 30초)
func WithTickInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.tickInterval = d }
}

// WithClock 테스트용 시계
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// NewScheduler 스케줄러 생성
func NewScheduler(logger zerolog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:       logger,
		tickInterval: 30 * time.Second,
		leaseTTL:     10 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register 주기적 작업 등록. 첫 실행은 interval 경과 후
func (s *Scheduler) Register(name string, interval time.Duration, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = append(s.tasks, &Task{
		Name:     name,
		Interval: interval,
		Handler:  handler,
		NextRun:  s.now().Add(interval),
	})

	s.logger.Info().Str("interval", name).Dur("every", interval).Msg("scheduled task registered")
}

// Start 스케줄러 시작 (백그라운드 goroutine)
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.tickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx, s.now())
			}
		}
	}()
	s.logger.Info().Dur("tick", s.tickInterval).Msg("scheduler started")
}

// Stop 스케줄러 중지. 실행 중인 작업이 끝날 때까지 대기
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info().Msg("scheduler stopped")
}

// tick 실행 대상 작업 체크 및 실행
func (s *Scheduler) tick(ctx context.Context, now time.Time) {
	s.mu.RLock()
	tasks := make([]*Task, len(s.tasks))
	copy(tasks, s.tasks)
	s.mu.RUnlock()

	for _, task := range tasks {
		s.mu.RLock()
		due := !now.Before(task.NextRun)
		s.mu.RUnlock()
		if !due {
			continue
		}

		// 실패해도 다음 주기에 다시 시도
		_ = s.run(ctx, task)

		s.mu.Lock()
		task.NextRun = now.Add(task.Interval)
		s.mu.Unlock()
	}
}

// Trigger runs the named task now, outside its schedule.
func (s *Scheduler) Trigger(ctx context.Context, name string) error {
	task := s.find(name)
	if task == nil {
		return common.ErrUnknownInterval
	}
	return s.run(ctx, task)
}

func (s *Scheduler) find(name string) *Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func (s *Scheduler) run(ctx context.Context, task *Task) error {
	log := s.logger.With().Str("interval", task.Name).Logger()

	if !task.running.TryLock() {
		log.Warn().Msg("previous run still in progress, skipping")
		return common.ErrSweepInProgress
	}
	defer task.running.Unlock()

	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, "sweep:"+task.Name, s.leaseTTL)
		switch {
		case err != nil:
			// 락 저장소 장애 시에도 sweep은 멱등이므로 그대로 진행
			log.Warn().Err(err).Msg("lease unavailable, running unguarded")
		case !ok:
			log.Info().Msg("lease held by another instance, skipping")
			sweepRuns.WithLabelValues(task.Name, "skipped").Inc()
			return common.ErrSweepInProgress
		default:
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					log.Warn().Err(err).Msg("lease release failed")
				}
			}()
		}
	}

	start := s.now()
	log.Info().Msg("running scheduled task")
	err := task.Handler(ctx)
	elapsed := time.Since(start)
	sweepDuration.WithLabelValues(task.Name).Observe(elapsed.Seconds())

	s.mu.Lock()
	task.LastRun = start
	task.RunCount++
	task.LastError = err
	s.mu.Unlock()

	if err != nil {
		sweepRuns.WithLabelValues(task.Name, "error").Inc()
		log.Error().Err(err).Msg("scheduled task failed")
		return err
	}
	sweepRuns.WithLabelValues(task.Name, "ok").Inc()
	log.Info().Dur("elapsed", elapsed).Msg("scheduled task finished")
	return nil
}

// GetTasks 등록된 작업 목록 조회 (모니터링용)
func (s *Scheduler) GetTasks() []TaskInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]TaskInfo, 0, len(s.tasks))
	for _, t := range s.tasks {
		info := TaskInfo{
			Name:     t.Name,
			Interval: t.Interval.String(),
			LastRun:  t.LastRun,
			NextRun:  t.NextRun,
			RunCount: t.RunCount,
		}
		if t.LastError != nil {
			errMsg := t.LastError.Error()
			info.LastError = &errMsg
		}
		result = append(result, info)
	}
	return result
}

// TaskInfo 작업 정보 (JSON 응답용)
type TaskInfo struct {
	Name      string    `json:"name"`
	Interval  string    `json:"interval"`
	LastRun   time.Time `json:"last_run"`
	NextRun   time.Time `json:"next_run"`
	RunCount  int64     `json:"run_count"`
	LastError *string   `json:"last_error,omitempty"`
}
