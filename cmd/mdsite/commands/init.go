package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/mdsite/internal/config"
	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/page"
)

const (
	scaffoldIndex = `# Welcome

This site is built by **mdsite**. Edit ` + "`content/index.md`" + ` and rebuild.

- Write one Markdown file per page
- Put images and styles in ` + "`static/`" + `
`
	scaffoldCSS = `body { max-width: 48rem; margin: 2rem auto; font-family: sans-serif; line-height: 1.5; }
pre { background: #f4f4f4; padding: 1rem; overflow-x: auto; }
blockquote { border-left: 4px solid #ccc; margin-left: 0; padding-left: 1rem; color: #555; }
`
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force    bool `help:"Overwrite existing files"`
	Scaffold bool `default:"true" negatable:"" help:"Also create the page template, a first page and a stylesheet"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	return RunInit(g.Out, root.Config, i.Force, i.Scaffold)
}

// RunInit writes the example configuration and, with scaffold, a starter site next to it.
func RunInit(out io.Writer, configPath string, force, scaffold bool) error {
	_, _ = fmt.Fprintln(out, "Initializing mdsite project")
	_, _ = fmt.Fprintf(out, "Writing configuration to %s\n", configPath)
	if err := config.Init(configPath, force); err != nil {
		_, _ = fmt.Fprintln(out, "Initialization failed")
		return err
	}

	if scaffold {
		base := filepath.Dir(configPath)
		files := []struct {
			rel     string
			content string
		}{
			{"template.html", page.DefaultTemplate},
			{filepath.Join("content", "index.md"), scaffoldIndex},
			{filepath.Join("static", "index.css"), scaffoldCSS},
		}
		for _, f := range files {
			path := filepath.Join(base, f.rel)
			written, err := writeScaffold(path, f.content, force)
			if err != nil {
				return err
			}
			if written {
				_, _ = fmt.Fprintf(out, "Created %s\n", path)
			} else {
				_, _ = fmt.Fprintf(out, "Kept existing %s\n", path)
			}
		}
	}

	_, _ = fmt.Fprintln(out, "initialized successfully")
	return nil
}

// writeScaffold creates path unless it exists and force is false.
func writeScaffold(path, content string, force bool) (bool, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return false, ferrors.FileSystemError("failed to create directory").WithCause(err).
			WithContext("path", filepath.Dir(path)).
			Build()
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, ferrors.FileSystemError("failed to write file").WithCause(err).
			WithContext("path", path).
			Build()
	}
	return true, nil
}
