package profile

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestBehaviorValidate(t *testing.T) {
	tests := []struct {
		name     string
		behavior Behavior
		wantErr  string
	}{
		{
			name:     "defaults on zero pairs",
			behavior: Behavior{Name: "empty"},
		},
		{
			name: "valid explicit",
			behavior: Behavior{
				Name: "fast", WaitTimeMin: 0.1, WaitTimeMax: 0.5,
				ReadingTimeMin: 0.2, ReadingTimeMax: 1,
				NavigationPauseMin: 0.1, NavigationPauseMax: 0.2,
				SearchProbability: 0.4,
			},
		},
		{
			name:     "negative wait",
			behavior: Behavior{Name: "neg", WaitTimeMin: -1, WaitTimeMax: 2},
			wantErr:  "must be >= 0",
		},
		{
			name:     "inverted wait range",
			behavior: Behavior{Name: "inv", WaitTimeMin: 5, WaitTimeMax: 2},
			wantErr:  "wait_time_max < wait_time_min",
		},
		{
			name:     "inverted reading range",
			behavior: Behavior{Name: "inv", ReadingTimeMin: 8, ReadingTimeMax: 3},
			wantErr:  "reading_time_max < reading_time_min",
		},
		{
			name:     "probability above one",
			behavior: Behavior{Name: "p", SearchProbability: 1.5},
			wantErr:  "search_probability",
		},
		{
			name:     "probability below zero",
			behavior: Behavior{Name: "p", SearchProbability: -0.1},
			wantErr:  "search_probability",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.behavior.Validate()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestBehaviorValidateFillsDefaults(t *testing.T) {
	b := Behavior{Name: "empty"}
	if err := b.Validate(); err != nil {
		t.Fatal(err)
	}
	if b.WaitTimeMin != 1 || b.WaitTimeMax != 5 {
		t.Errorf("wait defaults: got %v-%v", b.WaitTimeMin, b.WaitTimeMax)
	}
	if b.ReadingTimeMin != 2 || b.ReadingTimeMax != 8 {
		t.Errorf("reading defaults: got %v-%v", b.ReadingTimeMin, b.ReadingTimeMax)
	}
	if b.NavigationPauseMin != 0.5 || b.NavigationPauseMax != 1.5 {
		t.Errorf("navigation defaults: got %v-%v", b.NavigationPauseMin, b.NavigationPauseMax)
	}
}

func TestPausesStayInRange(t *testing.T) {
	b := Behavior{
		WaitTimeMin: 2, WaitTimeMax: 5,
		ReadingTimeMin: 3, ReadingTimeMax: 8,
		NavigationPauseMin: 0.5, NavigationPauseMax: 1.5,
	}
	r := rand.New(rand.NewSource(7))

	check := func(name string, draw func(*rand.Rand) time.Duration, min, max float64) {
		for i := 0; i < 1000; i++ {
			d := draw(r).Seconds()
			if d < min || d > max {
				t.Fatalf("%s pause %vs outside [%v, %v]", name, d, min, max)
			}
		}
	}
	check("wait", b.WaitPause, 2, 5)
	check("reading", b.ReadingPause, 3, 8)
	check("navigation", b.NavigationPause, 0.5, 1.5)
}

func TestPauseDegenerateRange(t *testing.T) {
	b := Behavior{WaitTimeMin: 3, WaitTimeMax: 3}
	r := rand.New(rand.NewSource(1))
	if got := b.WaitPause(r); got != 3*time.Second {
		t.Errorf("equal min/max should yield the fixed value, got %v", got)
	}

	var zero Behavior
	if got := zero.WaitPause(r); got != 0 {
		t.Errorf("all-zero behavior should pause 0, got %v", got)
	}
}

func TestDefaultBehaviors(t *testing.T) {
	defs := DefaultBehaviors()
	for _, name := range []string{"normal_user", "active_user", "power_user"} {
		b, ok := defs[name]
		if !ok {
			t.Fatalf("missing builtin behavior %q", name)
		}
		if err := b.Validate(); err != nil {
			t.Errorf("builtin %q fails validation: %v", name, err)
		}
	}
	if defs["normal_user"].SearchProbability >= defs["power_user"].SearchProbability {
		t.Error("power users should search more often than normal users")
	}
}

func TestLoadBehaviorsMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "behaviors.json")
	content := `{
  "behaviors": {
    "normal_user": {"wait_time_min": 10, "wait_time_max": 20, "search_probability": 0.1},
    "kiosk": {"wait_time_min": 30, "wait_time_max": 60}
  }
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadBehaviors(path)
	if err != nil {
		t.Fatal(err)
	}
	if got["normal_user"].WaitTimeMin != 10 {
		t.Errorf("file should override builtin normal_user, got wait min %v", got["normal_user"].WaitTimeMin)
	}
	if _, ok := got["power_user"]; !ok {
		t.Error("builtins not named in the file must survive the merge")
	}
	kiosk, ok := got["kiosk"]
	if !ok {
		t.Fatal("new behavior from file missing")
	}
	if kiosk.Name != "kiosk" {
		t.Errorf("behavior name should default to its key, got %q", kiosk.Name)
	}
	if kiosk.ReadingTimeMin != 2 || kiosk.ReadingTimeMax != 8 {
		t.Errorf("omitted pair should get defaults, got %v-%v", kiosk.ReadingTimeMin, kiosk.ReadingTimeMax)
	}
}

func TestLoadBehaviorsRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "behaviors.json")
	content := `{"behaviors": {"bad": {"wait_time_min": 5, "wait_time_max": 1}}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadBehaviors(path); err == nil {
		t.Fatal("expected validation error for inverted range")
	}
}
