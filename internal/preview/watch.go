package preview

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
	"git.home.luguber.info/inful/mdsite/internal/workspace"
)

// watchSet decides which filesystem events are source changes.
type watchSet struct {
	dirs   []string        // watched recursively
	files  map[string]bool // watched through their parent directory
	ignore []string        // never relevant, even when nested in dirs
}

func newWatchSet() *watchSet {
	return &watchSet{files: map[string]bool{}}
}

func (ws *watchSet) addDir(dir string) {
	if dir == "" {
		return
	}
	if abs, err := filepath.Abs(dir); err == nil {
		ws.dirs = append(ws.dirs, abs)
	}
}

func (ws *watchSet) addFile(file string) {
	if file == "" {
		return
	}
	if abs, err := filepath.Abs(file); err == nil {
		ws.files[abs] = true
	}
}

func (ws *watchSet) addIgnore(dir string) {
	if dir == "" {
		return
	}
	if abs, err := filepath.Abs(dir); err == nil {
		ws.ignore = append(ws.ignore, abs)
	}
}

// relevant reports whether a change to path should trigger a rebuild.
func (ws *watchSet) relevant(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if ws.files[abs] {
		return true
	}
	if shouldIgnoreEvent(abs) || ws.ignored(abs) {
		return false
	}
	for _, dir := range ws.dirs {
		if within(dir, abs) {
			return true
		}
	}
	return false
}

func (ws *watchSet) ignored(abs string) bool {
	for _, dir := range ws.ignore {
		if within(dir, abs) {
			return true
		}
	}
	for _, part := range strings.Split(filepath.ToSlash(abs), "/") {
		if strings.HasPrefix(part, workspace.StagingPrefix) {
			return true
		}
	}
	return false
}

// watch registers every directory of the set with w.
func (ws *watchSet) watch(w *fsnotify.Watcher) error {
	for _, dir := range ws.dirs {
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			slog.Debug("Watch root missing, skipping", logfields.Path(dir))
			continue
		}
		if err := ws.addDirsRecursive(w, dir); err != nil {
			return err
		}
	}
	parents := map[string]bool{}
	for file := range ws.files {
		parents[filepath.Dir(file)] = true
	}
	for dir := range parents {
		if err := w.Add(dir); err != nil {
			return ferrors.RuntimeError("failed to watch template directory").WithCause(err).
				WithContext("dir", dir).
				Build()
		}
	}
	return nil
}

func (ws *watchSet) addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || ws.ignored(path)) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// handleEvent extends the watch to new directories and reports whether ev is a source change.
func (ws *watchSet) handleEvent(w *fsnotify.Watcher, ev fsnotify.Event) bool {
	if !ws.relevant(ev.Name) {
		return false
	}
	if ev.Op.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = ws.addDirsRecursive(w, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	return true
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	// Ignore hidden files
	if strings.HasPrefix(base, ".") {
		return true
	}

	// Ignore editor temp/swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db"
}
