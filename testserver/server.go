// Package testserver provides a simulated course catalog website for
// exercising the visitor simulation without touching a real target.
package testserver

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// Category is one section of the simulated course catalog.
type Category struct {
	Name string
	Slug string
	Subs []string
}

// defaultCatalog mirrors the shape of a typical adult education site.
var defaultCatalog = []Category{
	{Name: "Sprachen", Slug: "sprachen", Subs: []string{"englisch-a1", "englisch-b2", "spanisch-a1", "deutsch-daf"}},
	{Name: "Gesundheit", Slug: "gesundheit", Subs: []string{"yoga", "rueckenfit", "ernaehrung"}},
	{Name: "Kultur", Slug: "kultur", Subs: []string{"malerei", "fotografie"}},
	{Name: "IT und Beruf", Slug: "it-beruf", Subs: []string{"excel-grundlagen", "python-einstieg"}},
}

var staticPages = []string{"kontakt", "impressum", "ueber-uns", "datenschutzerklaerung", "agb"}

// Server simulates a course catalog site: a homepage, category and
// subcategory pages, a JSON search endpoint, and static info pages.
// Course detail URLs intentionally 404, matching a catalog whose deep
// links rotate faster than any crawl.
type Server struct {
	mux      *http.ServeMux
	catalog  []Category
	latency  time.Duration // per-request artificial latency
	failRate int           // percentage of requests failed with 500
	requests atomic.Int64
}

// Option configures a Server.
type Option func(*Server)

// WithLatency adds a fixed artificial delay to every response.
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.latency = d }
}

// WithFailRate makes the server fail the given percentage of requests
// with a 500.
func WithFailRate(pct int) Option {
	return func(s *Server) { s.failRate = pct }
}

// New creates a test server over the default catalog.
func New(opts ...Option) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		catalog: defaultCatalog,
	}
	for _, o := range opts {
		o(s)
	}
	s.registerHandlers()
	return s
}

// Handler returns the http.Handler for the server.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		if s.latency > 0 {
			time.Sleep(s.latency)
		}
		if s.failRate > 0 && rand.Intn(100) < s.failRate {
			http.Error(w, "simulated server error", http.StatusInternalServerError)
			return
		}
		s.mux.ServeHTTP(w, r)
	})
}

// Requests returns the number of requests served so far.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

func (s *Server) registerHandlers() {
	s.mux.HandleFunc("/", s.handleHomepage)
	s.mux.HandleFunc("/kurse/", s.handleCourses)
	s.mux.HandleFunc("/suche", s.handleSearch)
	for _, page := range staticPages {
		page := page
		s.mux.HandleFunc("/"+page, func(w http.ResponseWriter, r *http.Request) {
			s.renderPage(w, page, "Informationen: "+page)
		})
	}
	s.mux.HandleFunc("/health", s.handleHealth)
}

// handleHomepage renders the landing page with category links. Any path
// not registered elsewhere also lands here, so it 404s everything but /.
func (s *Server) handleHomepage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	var b strings.Builder
	b.WriteString("<h1>Kursprogramm</h1><ul>")
	for _, c := range s.catalog {
		fmt.Fprintf(&b, `<li><a href="/kurse/%s">%s</a></li>`, c.Slug, c.Name)
	}
	b.WriteString("</ul>")
	s.renderPage(w, "Startseite", b.String())
}

// handleCourses serves category and subcategory pages under /kurse/.
// Unknown slugs, including synthetic course detail URLs like
// /kurse/kurs-123456, return 404.
func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimPrefix(r.URL.Path, "/kurse/")
	slug = strings.TrimSuffix(slug, "/")
	if slug == "" {
		s.renderPage(w, "Kurse", "Alle Kursbereiche")
		return
	}

	for _, c := range s.catalog {
		if c.Slug == slug {
			var b strings.Builder
			fmt.Fprintf(&b, "<h1>%s</h1><ul>", c.Name)
			for _, sub := range c.Subs {
				fmt.Fprintf(&b, `<li><a href="/kurse/%s">%s</a></li>`, sub, sub)
			}
			b.WriteString("</ul>")
			s.renderPage(w, c.Name, b.String())
			return
		}
		for _, sub := range c.Subs {
			if sub == slug {
				s.renderPage(w, sub, "Kursliste: "+sub)
				return
			}
		}
	}
	http.NotFound(w, r)
}

// handleSearch answers a JSON result list for ?q=term. The result count is
// derived from the term so repeated queries are stable.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	if term == "" {
		http.Error(w, "missing query parameter q", http.StatusBadRequest)
		return
	}

	count := resultCountFor(term)
	results := make([]map[string]string, 0, count)
	for i := 0; i < count; i++ {
		results = append(results, map[string]string{
			"title": fmt.Sprintf("%s Kurs %d", term, i+1),
			"url":   "/kurse/kurs-" + strconv.Itoa(100000+i),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"query":   term,
		"total":   count,
		"results": results,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}

func (s *Server) renderPage(w http.ResponseWriter, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>%s</title></head><body>%s</body></html>", title, body)
}

// resultCountFor maps a search term to a stable pseudo-random result count
// in [0, 30).
func resultCountFor(term string) int {
	var h uint32
	for _, c := range term {
		h = h*31 + uint32(c)
	}
	return int(h % 30)
}
