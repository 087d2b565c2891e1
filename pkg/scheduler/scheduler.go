package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"dailybrief/pkg/domain"
	"dailybrief/pkg/pipeline"
)

// Runner executes one pipeline run for a request
type Runner interface {
	Run(ctx context.Context, req domain.RequestDescriptor) (pipeline.Outcome, error)
}

// Scheduler constructs request descriptors and invokes the pipelines
// synchronously. It performs no pipeline logic itself.
type Scheduler struct {
	text      Runner
	chart     Runner
	dailySpec string

	now func() time.Time
}

// New creates a scheduler over the text and chart pipelines.
// dailySpec is a cron expression for the cadence trigger.
func New(text, chart Runner, dailySpec string) *Scheduler {
	return &Scheduler{
		text:      text,
		chart:     chart,
		dailySpec: dailySpec,
		now:       time.Now,
	}
}

// RunDaily fires the cadence trigger once: the daily text pipeline for
// today's day and month.
func (s *Scheduler) RunDaily(ctx context.Context) (pipeline.Outcome, error) {
	req := domain.NewDailyTextRequest(s.now())
	return s.text.Run(ctx, req)
}

// RunChart fires the on-demand trigger for a chart render. startDate and
// endDate may be empty; the renderer then defaults to a 2-year lookback.
func (s *Scheduler) RunChart(ctx context.Context, symbol, startDate, endDate string) (pipeline.Outcome, error) {
	if symbol == "" {
		return "", fmt.Errorf("symbol is required")
	}
	req := domain.NewChartRequest(symbol, startDate, endDate)
	return s.chart.Run(ctx, req)
}

// Serve runs the cadence schedule in the foreground until ctx is cancelled.
// Each firing is an independent short-lived run; a failed run is reported
// and the schedule keeps going.
func (s *Scheduler) Serve(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc(s.dailySpec, func() {
		outcome, err := s.RunDaily(ctx)
		if err != nil {
			log.Printf("Scheduler: daily run failed: %v", err)
			return
		}
		log.Printf("Scheduler: daily run %s", outcome)
	})
	if err != nil {
		return fmt.Errorf("invalid daily schedule %q: %w", s.dailySpec, err)
	}

	log.Printf("Scheduler: serving daily schedule %q", s.dailySpec)
	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	return ctx.Err()
}
