package site

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// Source is one discovered file in the content tree.
type Source struct {
	Path    string // filesystem path of the file
	Rel     string // slash-separated path relative to the content directory
	Output  string // slash-separated path relative to the output directory
	IsAsset bool   // copied verbatim instead of rendered
}

// Discover walks contentDir and returns every visible file not matched by an exclude
// glob. Markdown files map to ".html" outputs at the same relative location; anything
// else is an asset kept under its own name.
func Discover(contentDir string, exclude []string) ([]Source, error) {
	info, err := os.Stat(contentDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ferrors.NotFoundError("content directory not found").
				WithContext("dir", contentDir).
				Build()
		}
		return nil, ferrors.FileSystemError("failed to stat content directory").WithCause(err).
			WithContext("dir", contentDir).
			Build()
	}
	if !info.IsDir() {
		return nil, ferrors.ValidationError("content path is not a directory").
			WithContext("dir", contentDir).
			Build()
	}

	var sources []Source
	err = filepath.WalkDir(contentDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == contentDir {
			return nil
		}

		// Skip hidden files and directories
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(contentDir, p)
		if err != nil {
			return err
		}
		rel := filepath.ToSlash(relPath)

		if pattern, ok := excluded(rel, exclude); ok {
			slog.Debug("Excluded content file", logfields.File(rel), slog.String("pattern", pattern))
			return nil
		}

		src := Source{Path: p, Rel: rel, Output: rel, IsAsset: !isMarkdownFile(rel)}
		if !src.IsAsset {
			src.Output = OutputPath(rel)
		}
		sources = append(sources, src)
		return nil
	})
	if err != nil {
		return nil, ferrors.FileSystemError("failed to walk content directory").WithCause(err).
			WithContext("dir", contentDir).
			Build()
	}

	slog.Debug("Content discovered", logfields.Path(contentDir), logfields.Count(len(sources)))
	return sources, nil
}

// OutputPath maps a slash-separated Markdown path to its HTML output path.
func OutputPath(rel string) string {
	return strings.TrimSuffix(rel, path.Ext(rel)) + ".html"
}

func excluded(rel string, patterns []string) (string, bool) {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return pattern, true
		}
	}
	return "", false
}

// isMarkdownFile checks if a file is a markdown file
func isMarkdownFile(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".md" || ext == ".markdown"
}
