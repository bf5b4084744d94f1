// Package heartbeat drives the hub's dispatcher on a periodic tick,
// standing in for the IC actor runtime's built-in heartbeat. It uses
// robfig/cron's "@every" scheduling, which needs no calendar semantics --
// the engine only requires a periodic callback.
package heartbeat

import (
	"context"

	"github.com/robfig/cron/v3"
)

// Tick is called once per heartbeat; ordinarily hub.Dispatcher.SendEvents.
type Tick func(ctx context.Context)

// Scheduler wraps a cron.Cron configured with a single "@every <interval>"
// entry.
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
}

// New builds a Scheduler that calls tick every interval (an "@every"
// duration spec, e.g. "@every 1s"), running tick calls under ctx. cron
// rounds an interval below one second up to one second and drops any
// sub-second remainder, so ticks are never closer than one second apart.
func New(ctx context.Context, interval string, tick Tick) (*Scheduler, error) {
	c := cron.New()
	if _, err := c.AddFunc(interval, func() { tick(ctx) }); err != nil {
		return nil, err
	}
	return &Scheduler{cron: c, ctx: ctx}, nil
}

// Start begins running the scheduler in the background. Non-blocking.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler, waiting for any in-flight tick to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
