package loops

import (
	"context"
	"fmt"
	"sync"

	"github.com/patchgarden/gardener/internal/runstate"
	"github.com/pixil98/go-log"
)

// Canonical loop names, used in config, run-state snapshots and logs.
const (
	LoopFeeder    = "feeder"
	LoopHatcher   = "hatcher"
	LoopHarvester = "harvester"
	LoopBuyer     = "buyer"
)

// LoopFunc runs one loop until ctx is canceled.
type LoopFunc func(ctx context.Context, options map[string]any)

// Controller owns the loop lifecycle: a registry of named loops, start and
// stop with per-loop cancellation, and a run-state snapshot persisted on
// every transition so a restart resumes where it left off.
type Controller struct {
	keeper    *runstate.Keeper
	autostart map[string]map[string]any

	mu      sync.Mutex
	ctx     context.Context
	loops   map[string]LoopFunc
	cancels map[string]context.CancelFunc
	snap    *runstate.Snapshot
	wg      sync.WaitGroup
}

// NewController builds a controller. autostart lists loops to start on boot
// regardless of the snapshot; a restored snapshot adds whatever else was
// running last time.
func NewController(keeper *runstate.Keeper, autostart map[string]map[string]any) *Controller {
	return &Controller{
		keeper:    keeper,
		autostart: autostart,
		loops:     map[string]LoopFunc{},
		cancels:   map[string]context.CancelFunc{},
	}
}

// Register adds a named loop. Must be called before Start.
func (c *Controller) Register(name string, fn LoopFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loops[name] = fn
}

// Start resumes persisted loops, then blocks until ctx cancellation and
// waits for every loop goroutine to exit.
func (c *Controller) Start(ctx context.Context) error {
	logger := log.GetLogger(ctx)

	snap, err := c.keeper.Load()
	if err != nil {
		return fmt.Errorf("loading run state: %w", err)
	}

	c.mu.Lock()
	c.ctx = ctx
	c.snap = snap

	for name, options := range c.autostart {
		if err := c.startLocked(name, options); err != nil {
			logger.WithError(err).Warnf("starting loop %q", name)
		}
	}
	for name, state := range snap.Loops {
		if !state.Running || c.cancels[name] != nil {
			continue
		}
		if err := c.startLocked(name, state.Options); err != nil {
			logger.WithError(err).Warnf("resuming loop %q", name)
		}
	}
	c.persistLocked(ctx)
	c.mu.Unlock()

	<-ctx.Done()

	c.mu.Lock()
	for _, cancel := range c.cancels {
		cancel()
	}
	c.mu.Unlock()
	c.wg.Wait()
	return nil
}

// StartLoop starts a registered loop with the given options. Starting a
// loop that is already running is a no-op.
func (c *Controller) StartLoop(name string, options map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx == nil {
		return fmt.Errorf("controller not started")
	}
	if err := c.startLocked(name, options); err != nil {
		return err
	}
	c.persistLocked(c.ctx)
	return nil
}

// StopLoop cancels a running loop. The in-flight tick finishes; no further
// ticks are scheduled.
func (c *Controller) StopLoop(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cancel, ok := c.cancels[name]
	if !ok {
		return fmt.Errorf("loop %q not running", name)
	}
	cancel()
	delete(c.cancels, name)
	if c.snap != nil {
		state := c.snap.Loops[name]
		c.snap.Mark(name, false, state.Options)
	}
	c.persistLocked(c.ctx)
	return nil
}

// Running reports whether the named loop is currently started.
func (c *Controller) Running(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancels[name] != nil
}

func (c *Controller) startLocked(name string, options map[string]any) error {
	fn, ok := c.loops[name]
	if !ok {
		return fmt.Errorf("unknown loop %q", name)
	}
	if c.cancels[name] != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(c.ctx)
	c.cancels[name] = cancel
	c.snap.Mark(name, true, options)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		log.GetLogger(loopCtx).Infof("loop %q started", name)
		fn(loopCtx, options)
		log.GetLogger(loopCtx).Infof("loop %q stopped", name)
	}()
	return nil
}

func (c *Controller) persistLocked(ctx context.Context) {
	if c.snap == nil {
		return
	}
	if err := c.keeper.Save(c.snap); err != nil {
		log.GetLogger(ctx).WithError(err).Warn("persisting run state")
	}
}
