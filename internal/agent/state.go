// Package agent implements the simulated visitor: a state machine that
// selects weighted tasks, executes them against the target, emits metric
// events, and paces itself like a human reader.
package agent

import "time"

// Page is the agent's current logical location on the target site.
type Page int

const (
	PageStart Page = iota
	PageHomepage
	PageCategory
	PageSubcategory
	PageSearchResults
	PageCourseDetail
	PageStatic
	PageStop
)

var pageNames = map[Page]string{
	PageStart:         "start",
	PageHomepage:      "homepage",
	PageCategory:      "category",
	PageSubcategory:   "subcategory",
	PageSearchResults: "search_results",
	PageCourseDetail:  "course_detail",
	PageStatic:        "static",
	PageStop:          "stop",
}

func (p Page) String() string {
	if n, ok := pageNames[p]; ok {
		return n
	}
	return "unknown"
}

// livePages are the states an agent selects tasks from.
var livePages = []Page{
	PageStart, PageHomepage, PageCategory, PageSubcategory,
	PageSearchResults, PageCourseDetail, PageStatic,
}

// State is the per-agent mutable record. Owned exclusively by its agent,
// never shared.
type State struct {
	Page             Page
	SessionStart     time.Time
	RequestCount     int
	LastProfileCheck time.Time
}
