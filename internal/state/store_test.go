package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

func storeImplementations() map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "state.db"))
			require.NoError(t, err)
			return s
		},
	}
}

func TestStorePages(t *testing.T) {
	for name, open := range storeImplementations() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			defer func() { _ = s.Close() }()

			_, ok, err := s.PageFingerprint(ctx, "index.md")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.RecordPage(ctx, PageRecord{Source: "index.md", Output: "index.html", Fingerprint: "a", BuildID: "b1"}))
			require.NoError(t, s.RecordPage(ctx, PageRecord{Source: "index.md", Output: "index.html", Fingerprint: "b", BuildID: "b2"}))

			fp, ok, err := s.PageFingerprint(ctx, "index.md")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "b", fp)

			require.NoError(t, s.ForgetPage(ctx, "index.md"))
			_, ok, err = s.PageFingerprint(ctx, "index.md")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStoreBuilds(t *testing.T) {
	for name, open := range storeImplementations() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)
			defer func() { _ = s.Close() }()

			_, ok, err := s.LastBuild(ctx)
			require.NoError(t, err)
			assert.False(t, ok)

			start := time.Unix(1_700_000_000, 0)
			require.NoError(t, s.RecordBuild(ctx, BuildRecord{ID: "first", StartedAt: start, Duration: time.Second, Outcome: "success", Rendered: 2}))
			require.NoError(t, s.RecordBuild(ctx, BuildRecord{ID: "second", StartedAt: start.Add(time.Minute), Duration: 1500 * time.Millisecond, Outcome: "warning", Rendered: 1, Failed: 1}))

			last, ok, err := s.LastBuild(ctx)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "second", last.ID)
			assert.Equal(t, "warning", last.Outcome)
			assert.Equal(t, 1500*time.Millisecond, last.Duration)
			assert.Equal(t, 1, last.Failed)
			assert.True(t, last.StartedAt.Equal(start.Add(time.Minute)))
		})
	}
}

func TestSQLiteStorePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.RecordPage(ctx, PageRecord{Source: "a.md", Output: "a.html", Fingerprint: "fp", BuildID: "b"}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	fp, ok, err := s.PageFingerprint(ctx, "a.md")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fp", fp)
}

func TestMemoryStoreClosed(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Close())
	_, _, err := s.PageFingerprint(context.Background(), "x")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSQLiteStoreErrorsAreClassified(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, _, err = s.PageFingerprint(ctx, "a.md")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryStore))

	err = s.RecordBuild(ctx, BuildRecord{ID: "b", StartedAt: time.Now()})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryStore))
}

func TestSQLiteStoreStateDirUnderFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	_, err := NewSQLiteStore(filepath.Join(blocker, "state.db"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
}
