// Command crowdsim runs a website visitor simulation against a target
// profile and reports aggregated request metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"crowdsim/internal/agent"
	"crowdsim/internal/aggregate"
	"crowdsim/internal/config"
	"crowdsim/internal/core"
	"crowdsim/internal/export"
	"crowdsim/internal/httpexec"
	"crowdsim/internal/metrics"
	"crowdsim/internal/pool"
	"crowdsim/internal/profile"
	"crowdsim/internal/progress"
	"crowdsim/internal/ratelimit"
	"crowdsim/internal/sink"
)

const (
	ExitSuccess         = 0
	ExitThresholdFailed = 1
	ExitError           = 2
)

// profileWatchInterval is how often the profiles file is polled for
// changes during a run.
const profileWatchInterval = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "path to YAML config file (required)")
	agents := flag.Int("agents", 0, "number of agents (overrides config)")
	duration := flag.Duration("duration", 0, "run duration (overrides config)")
	mode := flag.String("mode", "", "run mode: realistic, stress (overrides config)")
	output := flag.String("output", "text", "output format: text, json")
	quiet := flag.Bool("quiet", false, "suppress progress output during the run")
	verbose := flag.Bool("verbose", false, "log per-agent diagnostics to stderr")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "error: --config is required")
		flag.Usage()
		os.Exit(ExitError)
	}
	if *output != "text" && *output != "json" {
		fmt.Fprintf(os.Stderr, "error: --output must be 'text' or 'json', got %q\n", *output)
		os.Exit(ExitError)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}
	if *agents > 0 {
		cfg.Agents = *agents
	}
	if *duration > 0 {
		cfg.Duration = *duration
	}
	if *mode != "" {
		cfg.Mode = *mode
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	runMode, err := profile.ParseMode(cfg.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	target, err := profile.LoadTarget(cfg.ProfilesFile, cfg.ActiveProfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}
	src := profile.NewSource(target)

	behaviors := profile.DefaultBehaviors()
	if cfg.BehaviorsFile != "" {
		behaviors, err = profile.LoadBehaviors(cfg.BehaviorsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(ExitError)
		}
	}

	archetypes := profile.BuiltinArchetypes()
	assign, err := archetypeAssigner(cfg.ArchetypeMix, archetypes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}

	events := sink.New()
	var reporter core.Reporter = events

	var metricsServer interface{ Close() error }
	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		m = metrics.New()
		reporter = m.Instrument(events)
		metricsServer = m.Serve(cfg.MetricsAddr, func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		})
	}

	var store *export.Store
	if cfg.EventsDB != "" {
		runID := time.Now().Format("20060102-150405")
		store, err = export.OpenStore(cfg.EventsDB, runID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(ExitError)
		}
		defer store.Close()
	}

	executor := httpexec.New(cfg.RequestTimeout)
	if *verbose {
		executor.SetDebug(httpexec.NewDebugLogger(os.Stderr))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	interrupted := false
	go func() {
		<-sigCh
		interrupted = true
		if !*quiet {
			fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		}
		cancel()
	}()

	go src.Watch(ctx, cfg.ProfilesFile, cfg.ActiveProfile, profileWatchInterval)

	var limiter *ratelimit.Limiter
	if cfg.LoadProfile != nil {
		for _, phase := range cfg.LoadProfile.Phases {
			if phase.RPS > 0 {
				limiter = ratelimit.NewLimiter(phase.RPS)
				break
			}
		}
	}

	var logf func(format string, args ...any)
	if *verbose {
		logf = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}

	factory := func(id int) pool.Runner {
		arch := assign(id)
		behavior, ok := behaviors[arch.Behavior]
		if !ok {
			behavior = behaviors[cfg.ActiveBehavior]
		}
		var seed int64
		if cfg.Seed != 0 {
			seed = cfg.Seed + int64(id)
		}
		return agent.New(agent.Config{
			ID:        id,
			Source:    src,
			Behavior:  behavior,
			Mode:      runMode,
			Archetype: arch,
			Executor:  executor,
			Reporter:  reporter,
			Limiter:   limiter,
			Seed:      seed,
			Logf:      logf,
		})
	}

	p := pool.New(factory, reporter)

	prog := progress.New(events, p.Active, *quiet)
	if m != nil {
		go watchActiveAgents(ctx, m, p)
	}

	if cfg.LoadProfile != nil && len(cfg.LoadProfile.Phases) > 0 {
		runPhased(ctx, cfg, p, limiter, prog)
	} else {
		runSteady(ctx, cfg, p, prog, runMode)
	}

	prog.Stop()
	events.Close()
	if metricsServer != nil {
		metricsServer.Close()
	}

	all := events.Drain()
	summary := aggregate.Compute(all, events.Duration())

	var thresholdResults *aggregate.ThresholdResults
	if cfg.Thresholds != nil {
		thresholdResults = cfg.Thresholds.Check(summary)
	}

	if *output == "json" {
		if err := aggregate.FormatJSON(os.Stdout, summary, thresholdResults); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(ExitError)
		}
	} else {
		aggregate.FormatText(os.Stdout, summary, thresholdResults)
	}

	if cfg.OutputDir != "" {
		start := time.Now().Add(-events.Duration())
		if _, err := export.WriteFiles(cfg.OutputDir, start, all); err != nil {
			fmt.Fprintf(os.Stderr, "error writing exports: %v\n", err)
			os.Exit(ExitError)
		}
	}
	if store != nil {
		if err := store.Append(all); err != nil {
			fmt.Fprintf(os.Stderr, "error writing events db: %v\n", err)
			os.Exit(ExitError)
		}
	}

	if interrupted {
		os.Exit(ExitSuccess)
	}
	if thresholdResults != nil && !thresholdResults.Passed {
		if *output == "text" {
			fmt.Fprintln(os.Stderr, "\nThreshold check failed!")
		}
		os.Exit(ExitThresholdFailed)
	}
	os.Exit(ExitSuccess)
}

// runSteady spawns a flat agent count for the configured duration.
func runSteady(ctx context.Context, cfg *config.Config, p *pool.Pool, prog *progress.Progress, mode profile.Mode) {
	prog.Printf("crowdsim starting: %d agents, duration %v, profile %q, mode %s",
		cfg.Agents, cfg.Duration, cfg.ActiveProfile, mode)

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	prog.Start()
	p.Spawn(ctx, cfg.Agents)
	p.Wait()
}

// runPhased drives the pool through the configured load profile phases.
func runPhased(ctx context.Context, cfg *config.Config, p *pool.Pool, limiter *ratelimit.Limiter, prog *progress.Progress) {
	lp := cfg.LoadProfile
	prog.Printf("crowdsim starting with load profile, profile %q", cfg.ActiveProfile)

	// Grace period for the last phase's agents to wind down.
	ctx, cancel := context.WithTimeout(ctx, lp.TotalDuration()+5*time.Second)
	defer cancel()

	prog.Start()
	p.RunPhases(ctx, lp, limiter, prog.Printf)
	p.Wait()
}

// watchActiveAgents mirrors the pool's live agent count into the gauge.
func watchActiveAgents(ctx context.Context, m *metrics.Metrics, p *pool.Pool) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.ActiveAgents.Set(float64(p.Active()))
		}
	}
}

// archetypeAssigner builds a deterministic agent-ID-to-archetype mapping
// from the configured mix. An empty mix assigns every agent "normal".
func archetypeAssigner(mix map[string]int, archetypes map[string]profile.Archetype) (func(id int) profile.Archetype, error) {
	if len(mix) == 0 {
		normal := archetypes["normal"]
		return func(int) profile.Archetype { return normal }, nil
	}

	names := make([]string, 0, len(mix))
	for name := range mix {
		if _, ok := archetypes[name]; !ok {
			return nil, fmt.Errorf("unknown archetype %q in archetype_mix", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var slots []profile.Archetype
	for _, name := range names {
		for i := 0; i < mix[name]; i++ {
			slots = append(slots, archetypes[name])
		}
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("archetype_mix assigns no agents")
	}
	return func(id int) profile.Archetype {
		return slots[(id-1)%len(slots)]
	}, nil
}
