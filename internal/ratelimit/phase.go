package ratelimit

import (
	"time"

	"crowdsim/internal/config"
	"crowdsim/internal/core"
)

// PhaseManager tracks which load phase is active and how many agents it
// targets, interpolating linearly through ramp phases.
type PhaseManager struct {
	phases    []config.Phase
	startTime time.Time
	clock     core.Clock
}

// NewPhaseManager creates a PhaseManager with a real clock.
func NewPhaseManager(phases []config.Phase) *PhaseManager {
	return NewPhaseManagerWithClock(phases, core.RealClock{})
}

// NewPhaseManagerWithClock creates a PhaseManager with a custom clock (for testing).
func NewPhaseManagerWithClock(phases []config.Phase, clock core.Clock) *PhaseManager {
	return &PhaseManager{
		phases:    phases,
		startTime: clock.Now(),
		clock:     clock,
	}
}

// Elapsed returns the time since the phase schedule started.
func (pm *PhaseManager) Elapsed() time.Duration {
	return pm.clock.Since(pm.startTime)
}

// locate finds the active phase index and how far into it the schedule is.
// When every phase has elapsed, the index equals len(phases).
func (pm *PhaseManager) locate() (idx int, intoPhase time.Duration) {
	remaining := pm.Elapsed()
	for i, p := range pm.phases {
		if remaining < p.Duration {
			return i, remaining
		}
		remaining -= p.Duration
	}
	return len(pm.phases), 0
}

// CurrentPhaseIndex returns the active phase index, or len(phases) when the
// schedule is complete.
func (pm *PhaseManager) CurrentPhaseIndex() int {
	idx, _ := pm.locate()
	return idx
}

// CurrentPhase returns the active phase, or nil when complete.
func (pm *PhaseManager) CurrentPhase() *config.Phase {
	idx, _ := pm.locate()
	if idx >= len(pm.phases) {
		return nil
	}
	return &pm.phases[idx]
}

// IsComplete reports whether all phases have elapsed.
func (pm *PhaseManager) IsComplete() bool {
	idx, _ := pm.locate()
	return idx >= len(pm.phases)
}

// TargetAgents returns how many agents the active phase wants right now.
// Flat phases use Agents; ramp phases interpolate between StartAgents and
// EndAgents over the phase duration.
func (pm *PhaseManager) TargetAgents() int {
	idx, intoPhase := pm.locate()
	if idx >= len(pm.phases) {
		return 0
	}
	phase := &pm.phases[idx]

	if phase.Agents > 0 {
		return phase.Agents
	}
	if phase.StartAgents == phase.EndAgents {
		return phase.StartAgents
	}

	progress := float64(intoPhase) / float64(phase.Duration)
	if progress > 1 {
		progress = 1
	}
	delta := float64(phase.EndAgents-phase.StartAgents) * progress
	return phase.StartAgents + int(delta)
}

// CurrentRPS returns the active phase's request rate cap, 0 for unlimited.
func (pm *PhaseManager) CurrentRPS() int {
	if phase := pm.CurrentPhase(); phase != nil {
		return phase.RPS
	}
	return 0
}
