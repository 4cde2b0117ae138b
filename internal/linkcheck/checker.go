package linkcheck

import (
	"context"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// Broken is an internal link whose target does not exist in the output tree.
type Broken struct {
	Page string // slash-separated page path relative to the output directory
	Link Link
}

// Check parses every HTML file under outputDir and returns the internal links that
// resolve to no file. Results are ordered by page, then by document order.
func Check(ctx context.Context, outputDir string) ([]Broken, error) {
	var broken []Broken
	pages := 0

	err := filepath.WalkDir(outputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(p), ".html") {
			return nil
		}

		rel, err := filepath.Rel(outputDir, p)
		if err != nil {
			return err
		}
		pageRel := filepath.ToSlash(rel)

		found, err := checkPage(outputDir, p, pageRel)
		if err != nil {
			return err
		}
		pages++
		broken = append(broken, found...)
		return nil
	})
	if err != nil {
		return nil, ferrors.FileSystemError("link check failed").WithCause(err).
			WithContext("dir", outputDir).
			Build()
	}

	sort.SliceStable(broken, func(i, j int) bool { return broken[i].Page < broken[j].Page })
	slog.Debug("Link check complete",
		logfields.Path(outputDir),
		logfields.Count(pages),
		slog.Int("broken", len(broken)))
	return broken, nil
}

func checkPage(root, file, pageRel string) ([]Broken, error) {
	f, err := os.Open(filepath.Clean(file))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	links, err := ExtractLinks(f)
	if err != nil {
		return nil, err
	}

	var broken []Broken
	for _, link := range links {
		if !ShouldVerifyLink(link) {
			continue
		}
		if !exists(root, resolve(pageRel, link.URL)) {
			broken = append(broken, Broken{Page: pageRel, Link: link})
		}
	}
	return broken, nil
}

// resolve turns a link on page into a slash-separated path relative to the site root.
func resolve(page, link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	target := u.Path
	if target == "" {
		return page
	}
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimPrefix(target, "/"))
	}
	return path.Join(path.Dir(page), target)
}

// exists accepts a file, a directory with an index.html, or an extensionless path
// whose ".html" sibling exists.
func exists(root, rel string) bool {
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return false
	}
	full := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err == nil {
		if !info.IsDir() {
			return true
		}
		_, err = os.Stat(filepath.Join(full, "index.html"))
		return err == nil
	}
	if path.Ext(rel) == "" {
		_, err = os.Stat(full + ".html")
		return err == nil
	}
	return false
}
