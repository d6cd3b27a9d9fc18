package scheduler

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"poolratio/internal/notifier"
	"poolratio/internal/pipeline"
	"poolratio/internal/recorder"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Messenger posts plain text replies.
type Messenger interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler re-renders the chart on a cron schedule and answers chat commands.
type Scheduler struct {
	Cron      *cron.Cron
	Pipeline  *pipeline.Pipeline
	Messenger Messenger
	Recorder  recorder.Recorder
	Logger    zerolog.Logger
	Ctx       context.Context
	Now       func() time.Time

	running sync.Mutex

	mu   sync.RWMutex
	last *pipeline.Result
}

// NewScheduler creates a new Scheduler. msg may be nil.
func NewScheduler(ctx context.Context, p *pipeline.Pipeline, msg Messenger, rec recorder.Recorder, logger zerolog.Logger) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Pipeline:  p,
		Messenger: msg,
		Recorder:  rec,
		Logger:    logger,
		Ctx:       ctx,
		Now:       time.Now,
	}
}

// Register adds the chart task under a six-field cron expression.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.chartTask); err != nil {
		return fmt.Errorf("register chart task %q: %w", spec, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info().Msg("scheduler stopped")
}

// RunNow executes the chart task immediately.
func (s *Scheduler) RunNow() {
	s.chartTask()
}

// Last returns the result of the most recent successful run.
func (s *Scheduler) Last() *pipeline.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

func (s *Scheduler) chartTask() {
	if !s.running.TryLock() {
		s.Logger.Warn().Msg("previous chart run still in progress, skipping")
		return
	}
	defer s.running.Unlock()

	s.Logger.Info().Msg("running chart task")
	res, err := s.Pipeline.Run(s.Ctx)
	if err != nil {
		s.Logger.Error().Err(err).Msg("chart task")
		s.trySend(notifier.FormatFailure(s.Now(), err))
		return
	}

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(_ context.Context, command string) string {
	switch strings.TrimSpace(command) {
	case "/chart":
		s.chartTask()
		return ""
	case "/ratio":
		res := s.Last()
		if res == nil {
			return "No chart has been rendered yet. Send /chart to run one now."
		}
		pair := res.Snapshot.Pair
		return notifier.FormatRatioSummary(pair.A.Label, pair.B.Label, res.Stats)
	case "/history":
		runs, err := s.Recorder.RecentRuns(5)
		if err != nil {
			s.Logger.Error().Err(err).Msg("recent runs")
			return "History is unavailable."
		}
		return formatHistory(runs)
	default:
		return "Available commands:\n• /chart  render and send the chart now\n• /ratio  latest relative price\n• /history  recent runs"
	}
}

func formatHistory(runs []recorder.RunSummary) string {
	if len(runs) == 0 {
		return "No runs recorded."
	}
	var sb strings.Builder
	sb.WriteString("<b>Recent runs</b>\n")
	for _, r := range runs {
		sb.WriteString(fmt.Sprintf("%s  %s/%s  %.4f  (%d rows)\n",
			r.RecordedAt.UTC().Format("2006-01-02 15:04"), html.EscapeString(r.LabelA), html.EscapeString(r.LabelB), r.LatestRatio, r.Rows))
	}
	return sb.String()
}

func (s *Scheduler) trySend(text string) {
	if s.Messenger == nil {
		return
	}
	if err := s.Messenger.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Logger.Error().Err(err).Msg("send notification")
	}
}
