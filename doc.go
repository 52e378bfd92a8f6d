// Package crowdsim simulates realistic website visitor traffic. A pool of
// concurrent agents walks a target site the way humans do: weighted page
// selection, reading pauses, occasional searches. Every request becomes a
// metric event, aggregated into latency and failure statistics at the end
// of a run.
//
// The cmd/crowdsim command wires the pieces together; cmd/testserver runs a
// local simulated course site to test against.
package crowdsim
