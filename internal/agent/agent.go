package agent

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"crowdsim/internal/core"
	"crowdsim/internal/profile"
	"crowdsim/internal/ratelimit"
	"crowdsim/internal/schedule"
)

// defaultRefreshInterval is how often an agent compares its bound profile
// against the source's current value.
const defaultRefreshInterval = 30 * time.Second

// Config assembles one agent's collaborators and parameters.
type Config struct {
	ID        int
	Source    *profile.Source
	Behavior  profile.Behavior
	Mode      profile.Mode
	Archetype profile.Archetype
	Executor  core.Executor
	Reporter  core.Reporter
	Limiter   *ratelimit.Limiter // optional pool-wide pacing cap
	Seed      int64              // per-agent RNG seed; 0 derives from time
	Clock     core.Clock
	RefreshInterval time.Duration
	Logf            func(format string, args ...any) // optional
}

// Agent is one simulated visitor session. Not safe for concurrent use; each
// agent runs in its own goroutine with its own RNG.
type Agent struct {
	id       int
	rng      *rand.Rand
	src      *profile.Source
	behavior profile.Behavior
	mode     profile.Mode
	weights  map[string]int
	exec     core.Executor
	rep      core.Reporter
	limiter  *ratelimit.Limiter
	clock    core.Clock
	refresh  time.Duration
	headers  map[string]string
	logf     func(format string, args ...any)

	tasks    []taskDef
	state    State
	prof     *profile.Target
	scheds   map[Page]*schedule.Scheduler
	noSearch map[Page]*schedule.Scheduler
}

// New creates an Agent. Profile validity is checked when Run binds the
// current profile, so a bad profile surfaces as an AgentFatal event rather
// than a construction error racing pool startup.
func New(cfg Config) *Agent {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano() + int64(cfg.ID)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = core.RealClock{}
	}
	refresh := cfg.RefreshInterval
	if refresh == 0 {
		refresh = defaultRefreshInterval
	}
	rep := cfg.Reporter
	if rep == nil {
		rep = core.NullReporter
	}
	logf := cfg.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}

	var headers map[string]string
	if cfg.Archetype.UserAgent != "" {
		headers = map[string]string{"User-Agent": cfg.Archetype.UserAgent}
	}

	return &Agent{
		id:       cfg.ID,
		rng:      rand.New(rand.NewSource(seed)),
		src:      cfg.Source,
		behavior: cfg.Behavior,
		mode:     cfg.Mode,
		weights:  cfg.Archetype.TaskWeights,
		exec:     cfg.Executor,
		rep:      rep,
		limiter:  cfg.Limiter,
		clock:    clock,
		refresh:  refresh,
		headers:  headers,
		logf:     logf,
		tasks:    taskTable(),
	}
}

// State returns a copy of the agent's current state record.
func (a *Agent) State() State { return a.state }

// Run executes visit cycles until ctx is cancelled or a fatal condition
// terminates the agent. Request-level failures never stop the agent; they
// become failed events.
func (a *Agent) Run(ctx context.Context) {
	now := a.clock.Now()
	a.state = State{Page: PageStart, SessionStart: now, LastProfileCheck: now}

	if err := a.bind(a.src.Current()); err != nil {
		a.fatal(err)
		a.state.Page = PageStop
		return
	}

	for ctx.Err() == nil {
		if err := a.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, schedule.ErrNoEligibleTask) {
				// Skip the cycle. Pause so a persistent zero-weight
				// set cannot spin.
				a.logf("agent %d: no eligible task on %s, skipping cycle", a.id, a.state.Page)
				if core.SleepCtx(ctx, a.behavior.WaitPause(a.rng)) != nil {
					break
				}
				continue
			}
			a.fatal(err)
			break
		}
	}

	a.state.Page = PageStop
}

// cycle is one iteration of the visit loop: refresh the profile binding if
// due, select a task, pace, execute, report, and move state.
func (a *Agent) cycle(ctx context.Context) error {
	// Profile hot-swap check. The replacement is a complete immutable
	// profile; the reference switch is atomic in the source.
	if a.clock.Since(a.state.LastProfileCheck) >= a.refresh {
		a.state.LastProfileCheck = a.clock.Now()
		if cur := a.src.Current(); cur != a.prof {
			if err := a.bind(cur); err != nil {
				return err
			}
		}
	}

	// One snapshot for the whole cycle: either fully the old or fully the
	// new profile, never a mix.
	prof := a.prof

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	td, err := a.selectTask()
	if err != nil {
		return err
	}

	if td.navPause {
		if err := a.pause(ctx, a.behavior.NavigationPause(a.rng)); err != nil {
			return err
		}
	}

	if evt := td.run(ctx, a, prof); evt != nil {
		a.rep.Report(evt)
	}
	a.state.Page = td.to
	a.state.RequestCount++

	pauseAfter := a.behavior.WaitPause(a.rng)
	if td.readPause {
		pauseAfter = a.behavior.ReadingPause(a.rng)
	}
	return a.pause(ctx, pauseAfter)
}

// pause sleeps for d unless the run is in stress mode, where human pacing
// is dropped and the rate limiter alone governs throughput.
func (a *Agent) pause(ctx context.Context, d time.Duration) error {
	if a.mode == profile.ModeStress {
		return ctx.Err()
	}
	return core.SleepCtx(ctx, d)
}

// selectTask picks the next task for the current page. A selected search
// task runs only when the search probability gate opens; otherwise the
// cycle silently falls through to the next eligible task.
func (a *Agent) selectTask() (*taskDef, error) {
	s := a.scheds[a.state.Page]
	if s == nil {
		return nil, schedule.ErrNoEligibleTask
	}
	name, err := s.Select(a.rng)
	if err != nil {
		return nil, err
	}
	if name == TaskSearch && a.rng.Float64() >= a.behavior.SearchProbability {
		ns := a.noSearch[a.state.Page]
		if ns == nil {
			return nil, schedule.ErrNoEligibleTask
		}
		if name, err = ns.Select(a.rng); err != nil {
			return nil, err
		}
	}
	return a.taskByName(name)
}

func (a *Agent) taskByName(name string) (*taskDef, error) {
	for i := range a.tasks {
		if a.tasks[i].name == name {
			return &a.tasks[i], nil
		}
	}
	return nil, fmt.Errorf("unknown task %q", name)
}

// bind attaches a profile and rebuilds the per-page weight tables. Tasks
// whose data is missing from the profile get weight zero; a profile an
// agent cannot proceed with at all is a fatal error.
func (a *Agent) bind(t *profile.Target) error {
	if t == nil || strings.TrimSpace(t.BaseURL) == "" {
		return fmt.Errorf("target profile missing base_url")
	}

	scheds := make(map[Page]*schedule.Scheduler, len(livePages))
	noSearch := make(map[Page]*schedule.Scheduler, len(livePages))

	for _, page := range livePages {
		var items, nonSearch []schedule.Weighted
		for i := range a.tasks {
			td := &a.tasks[i]
			if !td.eligibleFrom(page) {
				continue
			}
			w := a.weights[td.name]
			if td.available != nil && !td.available(t) {
				w = 0
			}
			items = append(items, schedule.Weighted{Name: td.name, Weight: w})
			if td.name != TaskSearch {
				nonSearch = append(nonSearch, schedule.Weighted{Name: td.name, Weight: w})
			}
		}
		scheds[page] = schedule.New(items)
		noSearch[page] = schedule.New(nonSearch)
	}

	a.prof = t
	a.scheds = scheds
	a.noSearch = noSearch
	return nil
}

// fatal reports the one-shot termination event for this agent.
func (a *Agent) fatal(err error) {
	a.logf("agent %d: fatal: %v", a.id, err)
	a.rep.Report(core.AgentFatal{
		AgentID:   a.id,
		Timestamp: a.clock.Now(),
		Reason:    err.Error(),
	})
}
