package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTargetValidate(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		wantErr string
		check   func(t *testing.T, tgt *Target)
	}{
		{
			name:    "missing base URL",
			target:  Target{Name: "bad"},
			wantErr: "base_url is required",
		},
		{
			name:    "blank base URL",
			target:  Target{Name: "bad", BaseURL: "   "},
			wantErr: "base_url is required",
		},
		{
			name:   "defaults filled",
			target: Target{Name: "minimal", BaseURL: "http://example.test"},
			check: func(t *testing.T, tgt *Target) {
				if got := tgt.Endpoints["search"]; got != "/suche" {
					t.Errorf("search endpoint default: got %q", got)
				}
				if got := tgt.Endpoints["homepage"]; got != "/" {
					t.Errorf("homepage endpoint default: got %q", got)
				}
				if tgt.SubcategoryPrefix != "/kurse" {
					t.Errorf("subcategory prefix default: got %q", tgt.SubcategoryPrefix)
				}
				if len(tgt.StaticPages) == 0 || len(tgt.SearchTerms) == 0 {
					t.Error("static pages and search terms must have defaults")
				}
			},
		},
		{
			name: "trailing slash stripped",
			target: Target{
				Name:    "slash",
				BaseURL: "http://example.test/",
			},
			check: func(t *testing.T, tgt *Target) {
				if tgt.BaseURL != "http://example.test" {
					t.Errorf("base URL: got %q", tgt.BaseURL)
				}
			},
		},
		{
			name: "explicit endpoints kept",
			target: Target{
				Name:      "custom",
				BaseURL:   "http://example.test",
				Endpoints: map[string]string{"search": "/search", "homepage": "/home"},
			},
			check: func(t *testing.T, tgt *Target) {
				if tgt.Endpoints["search"] != "/search" {
					t.Errorf("custom search endpoint overwritten: %q", tgt.Endpoints["search"])
				}
			},
		},
		{
			name: "categories without URL dropped",
			target: Target{
				Name:    "cats",
				BaseURL: "http://example.test",
				Categories: []Category{
					{Name: "good", URL: "/kurse/good"},
					{Name: "broken"},
					{Name: "also-good", URL: "/kurse/also"},
				},
			},
			check: func(t *testing.T, tgt *Target) {
				if len(tgt.Categories) != 2 {
					t.Fatalf("expected 2 categories, got %d", len(tgt.Categories))
				}
				for _, c := range tgt.Categories {
					if c.URL == "" {
						t.Errorf("category %q kept without URL", c.Name)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, &tt.target)
			}
		})
	}
}

func TestSubcategoryHelpers(t *testing.T) {
	tgt := Target{
		BaseURL: "http://example.test",
		Categories: []Category{
			{Name: "a", URL: "/a", Subcategories: []string{"a1", "a2"}},
			{Name: "b", URL: "/b"},
			{Name: "c", URL: "/c", Subcategories: []string{"c1"}},
		},
	}
	if err := tgt.Validate(); err != nil {
		t.Fatal(err)
	}

	ids := tgt.SubcategoryIDs()
	if len(ids) != 3 {
		t.Errorf("SubcategoryIDs: got %v", ids)
	}
	withSubs := tgt.CategoriesWithSubs()
	if len(withSubs) != 2 {
		t.Errorf("CategoriesWithSubs: got %d categories", len(withSubs))
	}
	for _, c := range withSubs {
		if len(c.Subcategories) == 0 {
			t.Errorf("category %q has no subcategories", c.Name)
		}
	}
}

const sampleProfiles = `{
  "profiles": {
    "site": {
      "base_url": "http://site.test",
      "categories": [
        {"name": "Sprachen", "url": "/kurse/sprachen", "subcategories": ["englisch-a1"]}
      ],
      "search_terms": ["kurs"]
    },
    "other": {
      "base_url": "http://other.test/"
    }
  }
}`

func writeProfileFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTargets(t *testing.T) {
	path := writeProfileFile(t, sampleProfiles)

	profiles, err := LoadTargets(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	site := profiles["site"]
	if site.Name != "site" {
		t.Errorf("profile name should default to its key, got %q", site.Name)
	}
	if len(site.SearchTerms) != 1 || site.SearchTerms[0] != "kurs" {
		t.Errorf("explicit search terms replaced: %v", site.SearchTerms)
	}
	if profiles["other"].BaseURL != "http://other.test" {
		t.Errorf("trailing slash not stripped on load: %q", profiles["other"].BaseURL)
	}
}

func TestLoadTargetsErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"invalid JSON", `{"profiles": {`, "parsing profiles file"},
		{"empty set", `{"profiles": {}}`, "defines no profiles"},
		{"missing base URL", `{"profiles": {"x": {"name": "x"}}}`, "base_url is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeProfileFile(t, tt.content)
			_, err := LoadTargets(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadTargets(filepath.Join(t.TempDir(), "nope.json")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}

func TestLoadTargetsSearchTermsFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "terms.json"), []byte(`["yoga", "excel"]`), 0o644); err != nil {
		t.Fatal(err)
	}
	content := `{
  "profiles": {
    "site": {
      "base_url": "http://site.test",
      "search_terms_file": "terms.json"
    }
  }
}`
	path := filepath.Join(dir, "profiles.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	profiles, err := LoadTargets(path)
	if err != nil {
		t.Fatal(err)
	}
	got := profiles["site"].SearchTerms
	if len(got) != 2 || got[0] != "yoga" || got[1] != "excel" {
		t.Errorf("terms from file: %v", got)
	}

	// A broken term file fails the load.
	if err := os.WriteFile(filepath.Join(dir, "terms.json"), []byte(`{}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTargets(path); err == nil {
		t.Error("expected error for malformed term file")
	}
}

func TestLoadTarget(t *testing.T) {
	path := writeProfileFile(t, sampleProfiles)

	if _, err := LoadTarget(path, "site"); err != nil {
		t.Fatalf("load existing profile: %v", err)
	}
	_, err := LoadTarget(path, "missing")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if !strings.Contains(err.Error(), "site") {
		t.Errorf("not-found error should list available profiles: %v", err)
	}
}
