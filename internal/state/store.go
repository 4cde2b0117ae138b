package state

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("state store closed")

// PageRecord describes the last successful render of one content page.
type PageRecord struct {
	Source      string // content-relative path of the Markdown file
	Output      string // output-relative path of the HTML file
	Fingerprint string
	BuildID     string
	UpdatedAt   time.Time
}

// BuildRecord summarizes one finished build.
type BuildRecord struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Outcome   string
	Rendered  int
	Unchanged int
	Drafts    int
	Failed    int
}

// Store records page fingerprints and build history. Implementations must be safe for
// concurrent use by page workers.
type Store interface {
	// PageFingerprint returns the fingerprint recorded for source, if any.
	PageFingerprint(ctx context.Context, source string) (string, bool, error)
	// RecordPage inserts or replaces the record for rec.Source.
	RecordPage(ctx context.Context, rec PageRecord) error
	// ForgetPage drops the record for source so the next build renders it.
	ForgetPage(ctx context.Context, source string) error
	RecordBuild(ctx context.Context, rec BuildRecord) error
	// LastBuild returns the most recently started build.
	LastBuild(ctx context.Context) (*BuildRecord, bool, error)
	Close() error
}
