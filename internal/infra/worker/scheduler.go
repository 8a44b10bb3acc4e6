package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xavierca1/ligue-crm/internal/logger"
)

const defaultJobTimeout = 2 * time.Minute

// Job é uma tarefa periódica; o contexto tem timeout por execução.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler agenda Jobs no robfig/cron. Execuções sobrepostas do mesmo job
// são puladas.
type Scheduler struct {
	cron       *cron.Cron
	log        logger.Logger
	jobTimeout time.Duration
}

func NewScheduler(log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		cron:       cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger))),
		log:        log.With("component", "scheduler"),
		jobTimeout: defaultJobTimeout,
	}
}

// Add registra o job na expressão cron ("@every 15m", "0 2 * * *", ...).
func (s *Scheduler) Add(schedule string, job Job) error {
	wrapped := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		s.RunNow(context.Background(), job)
	}))

	if _, err := s.cron.AddJob(schedule, wrapped); err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", schedule, job.Name(), err)
	}
	s.log.Info("job scheduled", "job", job.Name(), "schedule", schedule)
	return nil
}

// RunNow executa o job imediatamente, com o mesmo timeout e log do agendamento.
func (s *Scheduler) RunNow(ctx context.Context, job Job) error {
	ctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	start := time.Now()
	err := job.Run(ctx)
	if err != nil {
		s.log.Error("job failed", "job", job.Name(), "error", err)
		return err
	}
	s.log.Debug("job finished", "job", job.Name(), "elapsed", time.Since(start).String())
	return nil
}

func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop espera os jobs em andamento ou até ctx acabar.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}
