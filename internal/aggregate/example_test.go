package aggregate_test

import (
	"fmt"
	"time"

	"crowdsim/internal/aggregate"
)

func ExamplePercentile() {
	latencies := []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		30 * time.Millisecond,
		40 * time.Millisecond,
		50 * time.Millisecond,
		60 * time.Millisecond,
		70 * time.Millisecond,
		80 * time.Millisecond,
		90 * time.Millisecond,
		100 * time.Millisecond,
	}

	fmt.Println(aggregate.Percentile(latencies, 0.50))
	fmt.Println(aggregate.Percentile(latencies, 0.95))
	// Output:
	// 60ms
	// 100ms
}
