package profile

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"
)

// Behavior holds the timing and probability parameters of one visitor
// personality. All times are seconds; probabilities are in [0,1].
// Immutable for the duration of a run.
type Behavior struct {
	Name               string  `json:"name"`
	WaitTimeMin        float64 `json:"wait_time_min"`
	WaitTimeMax        float64 `json:"wait_time_max"`
	ReadingTimeMin     float64 `json:"reading_time_min"`
	ReadingTimeMax     float64 `json:"reading_time_max"`
	NavigationPauseMin float64 `json:"navigation_pause_min"`
	NavigationPauseMax float64 `json:"navigation_pause_max"`
	SearchProbability  float64 `json:"search_probability"`
}

// Validate checks ranges and fills documented defaults for omitted fields.
func (b *Behavior) Validate() error {
	if b.WaitTimeMax == 0 && b.WaitTimeMin == 0 {
		b.WaitTimeMin, b.WaitTimeMax = 1, 5
	}
	if b.ReadingTimeMax == 0 && b.ReadingTimeMin == 0 {
		b.ReadingTimeMin, b.ReadingTimeMax = 2, 8
	}
	if b.NavigationPauseMax == 0 && b.NavigationPauseMin == 0 {
		b.NavigationPauseMin, b.NavigationPauseMax = 0.5, 1.5
	}
	if b.WaitTimeMin < 0 || b.ReadingTimeMin < 0 || b.NavigationPauseMin < 0 {
		return fmt.Errorf("behavior %q: pause times must be >= 0", b.Name)
	}
	if b.WaitTimeMax < b.WaitTimeMin {
		return fmt.Errorf("behavior %q: wait_time_max < wait_time_min", b.Name)
	}
	if b.ReadingTimeMax < b.ReadingTimeMin {
		return fmt.Errorf("behavior %q: reading_time_max < reading_time_min", b.Name)
	}
	if b.NavigationPauseMax < b.NavigationPauseMin {
		return fmt.Errorf("behavior %q: navigation_pause_max < navigation_pause_min", b.Name)
	}
	if b.SearchProbability < 0 || b.SearchProbability > 1 {
		return fmt.Errorf("behavior %q: search_probability must be in [0,1], got %v", b.Name, b.SearchProbability)
	}
	return nil
}

func uniform(r *rand.Rand, min, max float64) time.Duration {
	if max <= min {
		return time.Duration(min * float64(time.Second))
	}
	s := min + r.Float64()*(max-min)
	return time.Duration(s * float64(time.Second))
}

// WaitPause draws a uniform between-cycle pause.
func (b Behavior) WaitPause(r *rand.Rand) time.Duration {
	return uniform(r, b.WaitTimeMin, b.WaitTimeMax)
}

// ReadingPause draws a uniform reading pause, applied after content-bearing
// tasks.
func (b Behavior) ReadingPause(r *rand.Rand) time.Duration {
	return uniform(r, b.ReadingTimeMin, b.ReadingTimeMax)
}

// NavigationPause draws the shorter pause applied before category and
// subcategory clicks.
func (b Behavior) NavigationPause(r *rand.Rand) time.Duration {
	return uniform(r, b.NavigationPauseMin, b.NavigationPauseMax)
}

// DefaultBehaviors returns the builtin visitor behavior set.
func DefaultBehaviors() map[string]Behavior {
	return map[string]Behavior{
		"normal_user": {
			Name: "normal_user", WaitTimeMin: 2, WaitTimeMax: 5,
			ReadingTimeMin: 3, ReadingTimeMax: 8,
			NavigationPauseMin: 0.5, NavigationPauseMax: 1.5,
			SearchProbability: 0.3,
		},
		"active_user": {
			Name: "active_user", WaitTimeMin: 1, WaitTimeMax: 3,
			ReadingTimeMin: 2, ReadingTimeMax: 5,
			NavigationPauseMin: 0.3, NavigationPauseMax: 1,
			SearchProbability: 0.5,
		},
		"power_user": {
			Name: "power_user", WaitTimeMin: 0.5, WaitTimeMax: 2,
			ReadingTimeMin: 1, ReadingTimeMax: 3,
			NavigationPauseMin: 0.2, NavigationPauseMax: 0.8,
			SearchProbability: 0.7,
		},
	}
}

type behaviorsFile struct {
	Behaviors map[string]*Behavior `json:"behaviors"`
}

// LoadBehaviors reads a JSON behaviors file and merges it over the builtin
// set, so a file only needs to define what it changes.
func LoadBehaviors(path string) (map[string]Behavior, error) {
	out := DefaultBehaviors()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading behaviors file: %w", err)
	}
	var f behaviorsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing behaviors file: %w", err)
	}
	for name, b := range f.Behaviors {
		if b.Name == "" {
			b.Name = name
		}
		if err := b.Validate(); err != nil {
			return nil, err
		}
		out[name] = *b
	}
	return out, nil
}
