// Package profile loads and validates target site and visitor behavior
// configuration. Profiles are immutable once loaded; agents share them
// read-only and swap references atomically on refresh.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"crowdsim/internal/data"
)

// Default endpoint paths applied when a profile omits them.
const (
	defaultSearchEndpoint    = "/suche"
	defaultSubcategoryPrefix = "/kurse"
)

var defaultStaticPages = []string{
	"/kontakt",
	"/impressum",
	"/ueber-uns",
	"/datenschutzerklaerung",
	"/agb",
}

var defaultSearchTerms = []string{
	"schule", "unterricht", "lehrer", "student", "abitur", "klausur",
	"ferien", "termine", "anmeldung", "kontakt", "impressum", "news",
}

// Category is one entry in the target site's category tree.
type Category struct {
	Name          string   `json:"name"`
	URL           string   `json:"url"`
	Subcategories []string `json:"subcategories"`
}

// Target describes the site under test: base URL, endpoint templates,
// category tree, and search vocabulary. Malformed profiles are rejected at
// load time, not at use time.
type Target struct {
	Name              string            `json:"name"`
	BaseURL           string            `json:"base_url"`
	Endpoints         map[string]string `json:"endpoints"`
	Categories        []Category        `json:"categories"`
	SearchTerms       []string          `json:"search_terms"`
	SearchTermsFile   string            `json:"search_terms_file,omitempty"`
	StaticPages       []string          `json:"static_pages"`
	SubcategoryPrefix string            `json:"subcategory_prefix"`
}

// Validate checks required fields and fills documented defaults.
// A missing base URL is unrecoverable; everything else has a default.
func (t *Target) Validate() error {
	if strings.TrimSpace(t.BaseURL) == "" {
		return fmt.Errorf("profile %q: base_url is required", t.Name)
	}
	t.BaseURL = strings.TrimRight(t.BaseURL, "/")
	if t.Endpoints == nil {
		t.Endpoints = map[string]string{}
	}
	if _, ok := t.Endpoints["search"]; !ok {
		t.Endpoints["search"] = defaultSearchEndpoint
	}
	if _, ok := t.Endpoints["homepage"]; !ok {
		t.Endpoints["homepage"] = "/"
	}
	if t.SubcategoryPrefix == "" {
		t.SubcategoryPrefix = defaultSubcategoryPrefix
	}
	if len(t.StaticPages) == 0 {
		t.StaticPages = append([]string(nil), defaultStaticPages...)
	}
	if len(t.SearchTerms) == 0 {
		t.SearchTerms = append([]string(nil), defaultSearchTerms...)
	}
	// Drop categories without a URL; they cannot be visited.
	kept := t.Categories[:0]
	for _, c := range t.Categories {
		if c.URL != "" {
			kept = append(kept, c)
		}
	}
	t.Categories = kept
	return nil
}

// Endpoint returns the path template registered under name.
func (t *Target) Endpoint(name string) (string, bool) {
	p, ok := t.Endpoints[name]
	return p, ok
}

// SubcategoryIDs flattens the category tree into subcategory identifiers.
func (t *Target) SubcategoryIDs() []string {
	var ids []string
	for _, c := range t.Categories {
		ids = append(ids, c.Subcategories...)
	}
	return ids
}

// CategoriesWithSubs returns only categories that have subcategories.
func (t *Target) CategoriesWithSubs() []Category {
	var out []Category
	for _, c := range t.Categories {
		if len(c.Subcategories) > 0 {
			out = append(out, c)
		}
	}
	return out
}

type targetsFile struct {
	Profiles map[string]*Target `json:"profiles"`
}

// LoadTargets reads a JSON profiles file mapping profile names to targets.
// Every profile is validated; a single malformed profile fails the load.
func LoadTargets(path string) (map[string]*Target, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles file: %w", err)
	}
	var f targetsFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parsing profiles file: %w", err)
	}
	if len(f.Profiles) == 0 {
		return nil, fmt.Errorf("profiles file %s defines no profiles", path)
	}
	baseDir := filepath.Dir(path)
	for name, t := range f.Profiles {
		if t.Name == "" {
			t.Name = name
		}
		if t.SearchTermsFile != "" && len(t.SearchTerms) == 0 {
			terms, err := data.LoadTerms(t.SearchTermsFile, baseDir)
			if err != nil {
				return nil, fmt.Errorf("profile %q: %w", name, err)
			}
			t.SearchTerms = terms
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Profiles, nil
}

// LoadTarget loads one named profile from a profiles file.
func LoadTarget(path, name string) (*Target, error) {
	profiles, err := LoadTargets(path)
	if err != nil {
		return nil, err
	}
	t, ok := profiles[name]
	if !ok {
		names := make([]string, 0, len(profiles))
		for n := range profiles {
			names = append(names, n)
		}
		return nil, fmt.Errorf("profile %q not found (available: %s)", name, strings.Join(names, ", "))
	}
	return t, nil
}
