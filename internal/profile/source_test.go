package profile

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeRealistic, false},
		{"realistic", ModeRealistic, false},
		{"stress", ModeStress, false},
		{"chaos", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMode(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestSourceSwap(t *testing.T) {
	a := &Target{Name: "a", BaseURL: "http://a.test"}
	b := &Target{Name: "b", BaseURL: "http://b.test"}

	src := NewSource(a)
	if src.Current() != a {
		t.Fatal("source should publish its initial profile")
	}
	src.Swap(b)
	if src.Current() != b {
		t.Fatal("Swap should publish the replacement")
	}
}

// Readers racing a writer must only ever observe complete profiles, never a
// torn one.
func TestSourceConcurrentReadersSeeWholeProfiles(t *testing.T) {
	mk := func(name string) *Target {
		return &Target{Name: name, BaseURL: "http://" + name + ".test"}
	}
	src := NewSource(mk("p0"))

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				cur := src.Current()
				want := "http://" + cur.Name + ".test"
				if cur.BaseURL != want {
					t.Errorf("torn profile: name %q with base URL %q", cur.Name, cur.BaseURL)
					return
				}
			}
		}()
	}

	for i := 1; i <= 1000; i++ {
		src.Swap(mk("p" + string(rune('a'+i%26))))
	}
	close(done)
	wg.Wait()
}

func TestWatchPublishesChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.json")

	write := func(base string) {
		t.Helper()
		content := `{"profiles": {"site": {"base_url": "` + base + `"}}}`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("http://old.test")

	initial, err := LoadTarget(path, "site")
	if err != nil {
		t.Fatal(err)
	}
	src := NewSource(initial)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go src.Watch(ctx, path, "site", 10*time.Millisecond)

	// Bump mtime past filesystem timestamp granularity.
	time.Sleep(20 * time.Millisecond)
	write("http://new.test")
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		if src.Current().BaseURL == "http://new.test" {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("watch never published the new profile, still %q", src.Current().BaseURL)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestWatchKeepsCurrentOnBadReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.json")
	good := `{"profiles": {"site": {"base_url": "http://good.test"}}}`
	if err := os.WriteFile(path, []byte(good), 0o644); err != nil {
		t.Fatal(err)
	}

	initial, err := LoadTarget(path, "site")
	if err != nil {
		t.Fatal(err)
	}
	src := NewSource(initial)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go src.Watch(ctx, path, "site", 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`{"profiles": {`), 0o644); err != nil {
		t.Fatal(err)
	}
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	time.Sleep(100 * time.Millisecond)
	if got := src.Current().BaseURL; got != "http://good.test" {
		t.Fatalf("bad reload must keep the current profile, got %q", got)
	}
}

func TestBuiltinArchetypes(t *testing.T) {
	arch := BuiltinArchetypes()
	for _, name := range []string{"normal", "active", "power", "browser", "mobile"} {
		a, ok := arch[name]
		if !ok {
			t.Fatalf("missing builtin archetype %q", name)
		}
		if len(a.TaskWeights) == 0 {
			t.Errorf("archetype %q has no task weights", name)
		}
		if a.Behavior == "" {
			t.Errorf("archetype %q names no behavior", name)
		}
	}
	if arch["mobile"].UserAgent == "" {
		t.Error("mobile archetype must carry a user agent")
	}
	if arch["normal"].UserAgent != "" {
		t.Error("desktop archetypes must not override the user agent")
	}
}
