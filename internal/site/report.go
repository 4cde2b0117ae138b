package site

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/mdsite/internal/metrics"
)

// PageError records a page that failed to build.
type PageError struct {
	Source string
	Err    error
}

func (e PageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e PageError) Unwrap() error { return e.Err }

// Report summarizes one build.
type Report struct {
	BuildID     string
	StartedAt   time.Time
	Duration    time.Duration
	Outcome     metrics.BuildOutcome
	OutputDir   string
	Rendered    int
	Unchanged   int
	Drafts      int
	Assets      int
	StaticFiles int
	Failed      []PageError
}

// Pages is the number of Markdown sources the build considered.
func (r *Report) Pages() int {
	return r.Rendered + r.Unchanged + r.Drafts + len(r.Failed)
}
