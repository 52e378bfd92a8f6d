// Package pool manages agent lifecycle and orchestration.
package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"crowdsim/internal/config"
	"crowdsim/internal/core"
	"crowdsim/internal/ratelimit"
)

// phaseTickInterval is how often the phase runner checks for transitions
// and adjusts agent counts.
const phaseTickInterval = 100 * time.Millisecond

// Runner is one simulated visitor executing until its context is cancelled.
type Runner interface {
	Run(ctx context.Context)
}

// Factory builds a Runner for a newly assigned agent ID.
type Factory func(id int) Runner

// Pool spawns and manages agent goroutines. Agents never block on each
// other; the pool only tracks membership and shutdown.
type Pool struct {
	factory  Factory
	reporter core.Reporter

	nextID  atomic.Int64
	wg      sync.WaitGroup
	active  atomic.Int32
	mu      sync.Mutex
	cancels []context.CancelFunc
}

// New creates a Pool. The reporter receives an AgentFatal event when an
// agent goroutine panics.
func New(factory Factory, reporter core.Reporter) *Pool {
	if reporter == nil {
		reporter = core.NullReporter
	}
	return &Pool{factory: factory, reporter: reporter}
}

// Spawn starts n agents. Each gets its own Runner and a context cancelled
// either by ctx or by a pool-side stop.
func (p *Pool) Spawn(ctx context.Context, n int) {
	for i := 0; i < n; i++ {
		p.spawnOne(ctx)
	}
}

func (p *Pool) spawnOne(ctx context.Context) {
	id := int(p.nextID.Add(1))
	agentCtx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	p.cancels = append(p.cancels, cancel)
	p.mu.Unlock()

	p.active.Add(1)
	p.wg.Add(1)
	go func() {
		defer func() {
			p.wg.Done()
			p.active.Add(-1)
			cancel()
		}()
		defer p.recoverPanic(id)
		p.factory(id).Run(agentCtx)
	}()
}

// recoverPanic reports agent goroutine panics as fatal events so a
// misbehaving agent never takes the run down.
func (p *Pool) recoverPanic(id int) {
	if r := recover(); r != nil {
		p.reporter.Report(core.AgentFatal{
			AgentID:   id,
			Timestamp: time.Now(),
			Reason:    fmt.Sprintf("panic: %v", r),
		})
	}
}

// Active returns the number of currently running agents.
func (p *Pool) Active() int {
	return int(p.active.Load())
}

// Wait blocks until all spawned agents have exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) stopAgents(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n > len(p.cancels) {
		n = len(p.cancels)
	}
	for i := 0; i < n; i++ {
		p.cancels[i]()
	}
	p.cancels = p.cancels[n:]
}

// StopAll cancels every running agent.
func (p *Pool) StopAll() {
	p.mu.Lock()
	cancels := p.cancels
	p.cancels = nil
	p.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

// RunPhases drives the pool through a phased load profile, ramping the live
// agent count toward each phase's target and applying its RPS cap through
// the limiter. Returns when all phases complete or ctx is cancelled.
func (p *Pool) RunPhases(ctx context.Context, profile *config.LoadProfile, limiter *ratelimit.Limiter, printf func(format string, args ...any)) {
	if printf == nil {
		printf = func(string, ...any) {}
	}

	pm := ratelimit.NewPhaseManager(profile.Phases)
	printf("Starting load profile with %d phases, total duration: %v",
		len(profile.Phases), profile.TotalDuration())

	currentPhase := -1
	ticker := time.NewTicker(phaseTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.StopAll()
			return
		case <-ticker.C:
			if pm.IsComplete() {
				p.StopAll()
				return
			}
			if idx := pm.CurrentPhaseIndex(); idx != currentPhase {
				currentPhase = idx
				if phase := pm.CurrentPhase(); phase != nil {
					printf("Phase: %s (duration: %v, target agents: %d, rps: %d)",
						phase.Name, phase.Duration, pm.TargetAgents(), phase.RPS)
				}
			}
			target := pm.TargetAgents()
			current := p.Active()
			if current < target {
				p.Spawn(ctx, target-current)
			} else if current > target {
				p.stopAgents(current - target)
			}
			if limiter != nil {
				limiter.SetRate(pm.CurrentRPS())
			}
		}
	}
}
