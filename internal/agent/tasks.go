package agent

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"crowdsim/internal/core"
	"crowdsim/internal/profile"
)

// Task names. Archetype weight tables key on these.
const (
	TaskHomepage     = "homepage"
	TaskCategory     = "category"
	TaskSubcategory  = "subcategory"
	TaskCourseDetail = "course_detail"
	TaskSearch       = "search"
	TaskStaticPage   = "static_page"
)

// taskDef describes one named operation: where it may run from, where it
// leads, how it paces, and the behavior closure that produces its event.
// The transition table is data, never archetype-specific code.
type taskDef struct {
	name      string
	from      []Page
	to        Page
	navPause  bool // navigation pause before the click
	readPause bool // reading pause after content-bearing tasks
	available func(t *profile.Target) bool
	run       func(ctx context.Context, a *Agent, prof *profile.Target) core.Event
}

func (td *taskDef) eligibleFrom(p Page) bool {
	for _, f := range td.from {
		if f == p {
			return true
		}
	}
	return false
}

// taskTable returns the task set in stable order. Every state may lead back
// to the homepage; the middle states branch per the site's navigation graph.
func taskTable() []taskDef {
	return []taskDef{
		{
			name:      TaskHomepage,
			from:      livePages,
			to:        PageHomepage,
			readPause: true,
			run:       runHomepage,
		},
		{
			name:      TaskCategory,
			from:      []Page{PageHomepage},
			to:        PageCategory,
			navPause:  true,
			readPause: true,
			available: func(t *profile.Target) bool { return len(t.Categories) > 0 },
			run:       runCategory,
		},
		{
			name:      TaskSearch,
			from:      []Page{PageHomepage},
			to:        PageSearchResults,
			readPause: true,
			available: func(t *profile.Target) bool { return len(t.SearchTerms) > 0 },
			run:       runSearch,
		},
		{
			name:      TaskStaticPage,
			from:      []Page{PageHomepage},
			to:        PageStatic,
			available: func(t *profile.Target) bool { return len(t.StaticPages) > 0 },
			run:       runStaticPage,
		},
		{
			name:      TaskSubcategory,
			from:      []Page{PageCategory, PageSearchResults, PageStatic},
			to:        PageSubcategory,
			navPause:  true,
			available: func(t *profile.Target) bool { return len(t.CategoriesWithSubs()) > 0 },
			run:       runSubcategory,
		},
		{
			name:      TaskCourseDetail,
			from:      []Page{PageCategory, PageSearchResults, PageStatic},
			to:        PageCourseDetail,
			readPause: true,
			run:       runCourseDetail,
		},
	}
}

func runHomepage(ctx context.Context, a *Agent, prof *profile.Target) core.Event {
	path, _ := prof.Endpoint("homepage")
	return a.get(ctx, TaskHomepage, "Homepage", prof.BaseURL+path, false)
}

func runCategory(ctx context.Context, a *Agent, prof *profile.Target) core.Event {
	cat := prof.Categories[a.rng.Intn(len(prof.Categories))]
	return a.get(ctx, TaskCategory, "Category: "+cat.Name, prof.BaseURL+cat.URL, false)
}

func runSubcategory(ctx context.Context, a *Agent, prof *profile.Target) core.Event {
	cats := prof.CategoriesWithSubs()
	cat := cats[a.rng.Intn(len(cats))]
	sub := cat.Subcategories[a.rng.Intn(len(cat.Subcategories))]
	u := prof.BaseURL + prof.SubcategoryPrefix + "/" + sub
	return a.get(ctx, TaskSubcategory, "Subcategory: "+sub, u, false)
}

// runCourseDetail samples a synthetic course URL. The URL does not exist by
// design, so a 404 counts as success.
func runCourseDetail(ctx context.Context, a *Agent, prof *profile.Target) core.Event {
	id := strconv.Itoa(1000 + a.rng.Intn(999000))
	path, ok := prof.Endpoint("course_detail")
	switch {
	case ok && strings.Contains(path, "{id}"):
		path = strings.ReplaceAll(path, "{id}", id)
	case ok:
		// fixed template, use as-is
	default:
		path = prof.SubcategoryPrefix + "/kurs-" + id
	}
	return a.get(ctx, TaskCourseDetail, "Course Details", prof.BaseURL+path, true)
}

func runStaticPage(ctx context.Context, a *Agent, prof *profile.Target) core.Event {
	page := prof.StaticPages[a.rng.Intn(len(prof.StaticPages))]
	return a.get(ctx, TaskStaticPage, "Static: "+page, prof.BaseURL+page, false)
}

func runSearch(ctx context.Context, a *Agent, prof *profile.Target) core.Event {
	term := prof.SearchTerms[a.rng.Intn(len(prof.SearchTerms))]
	endpoint, _ := prof.Endpoint("search")

	// Cache buster keeps intermediaries from answering for the target.
	cb := strconv.Itoa(100 + a.rng.Intn(999900))
	u := prof.BaseURL + endpoint + "?q=" + url.QueryEscape(term) + "&cb=" + cb

	res := a.exec.Execute(ctx, http.MethodGet, u, a.headers)
	success := res.Err == nil && res.StatusCode == http.StatusOK

	count := 0
	if success {
		count = parseResultCount(res.Body)
	}

	return core.SearchOutcome{
		AgentID:     a.id,
		Timestamp:   a.clock.Now(),
		Term:        term,
		Latency:     res.Latency,
		ResultCount: count,
		Success:     success,
	}
}

// parseResultCount extracts the result count from a JSON search response.
// Non-JSON bodies yield 0; success is governed by status alone.
func parseResultCount(body []byte) int {
	if !gjson.ValidBytes(body) {
		return 0
	}
	for _, path := range []string{"total", "result_count", "results.#"} {
		if v := gjson.GetBytes(body, path); v.Exists() {
			return int(v.Int())
		}
	}
	return 0
}

// get executes one GET request and classifies the outcome. Transport errors
// and timeouts become failed events, never lost.
func (a *Agent) get(ctx context.Context, task, label, u string, allow404 bool) core.Event {
	res := a.exec.Execute(ctx, http.MethodGet, u, a.headers)
	success := res.Err == nil &&
		(res.StatusCode == http.StatusOK || (allow404 && res.StatusCode == http.StatusNotFound))
	return core.RequestOutcome{
		AgentID:    a.id,
		Timestamp:  a.clock.Now(),
		Task:       task,
		Endpoint:   label,
		Latency:    res.Latency,
		StatusCode: res.StatusCode,
		Success:    success,
		BodySize:   res.BodySize,
	}
}
