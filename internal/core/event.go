// Package core defines the fundamental interfaces and types for crowdsim.
package core

import "time"

// Event is one observed outcome of a simulated interaction. Events are
// immutable once created; ownership transfers to the sink on Report.
type Event interface {
	When() time.Time
	event()
}

// RequestOutcome records a single page request made by an agent.
type RequestOutcome struct {
	AgentID    int
	Timestamp  time.Time
	Task       string        // task that produced the request, e.g. "category"
	Endpoint   string        // endpoint label, e.g. "Category: Deutsch"
	Latency    time.Duration
	StatusCode int
	Success    bool
	BodySize   int64
}

// SearchOutcome records a single search query made by an agent.
type SearchOutcome struct {
	AgentID     int
	Timestamp   time.Time
	Term        string
	Latency     time.Duration
	ResultCount int
	Success     bool
}

// AgentFatal reports the one-shot termination of an agent that cannot
// proceed (e.g. a profile missing required fields). It is distinct from
// request failures, which are recorded as failed RequestOutcomes.
type AgentFatal struct {
	AgentID   int
	Timestamp time.Time
	Reason    string
}

func (e RequestOutcome) When() time.Time { return e.Timestamp }
func (e SearchOutcome) When() time.Time  { return e.Timestamp }
func (e AgentFatal) When() time.Time     { return e.Timestamp }

func (RequestOutcome) event() {}
func (SearchOutcome) event()  {}
func (AgentFatal) event()     {}
