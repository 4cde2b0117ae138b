package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/frontmatter"
	"git.home.luguber.info/inful/mdsite/internal/markdown"
	"git.home.luguber.info/inful/mdsite/internal/page"
)

// RenderCmd implements the 'render' command. It needs no configuration file.
type RenderCmd struct {
	File     string `arg:"" help:"Markdown file to render ('-' reads standard input)"`
	Template string `short:"t" help:"Page template file (defaults to the built-in template)"`
	Fragment bool   `short:"f" help:"Print only the HTML fragment of the body"`
	Engine   string `short:"e" help:"Markdown engine (native|commonmark)" default:"native"`
}

func (r *RenderCmd) Run(g *Global) error {
	source, err := r.read(g.In)
	if err != nil {
		return err
	}
	engine, err := markdown.ParseEngine(r.Engine)
	if err != nil {
		return err
	}

	html, err := r.render(source, engine)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(g.Out, html)
	return err
}

func (r *RenderCmd) read(stdin io.Reader) ([]byte, error) {
	if r.File == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, ferrors.FileSystemError("failed to read standard input").WithCause(err).Build()
		}
		return data, nil
	}

	data, err := os.ReadFile(filepath.Clean(r.File))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.NotFoundError("markdown file not found").
				WithCause(err).
				WithContext("path", r.File).
				Build()
		}
		return nil, ferrors.FileSystemError("failed to read markdown file").WithCause(err).
			WithContext("path", r.File).
			Build()
	}
	return data, nil
}

func (r *RenderCmd) render(source []byte, engine markdown.Engine) (string, error) {
	if r.Fragment {
		_, body, err := frontmatter.Split(source)
		if err != nil {
			return "", err
		}
		return markdown.NewConverter(engine).Convert(string(body))
	}

	tmpl, err := page.LoadTemplate(r.Template)
	if err != nil {
		return "", err
	}
	p, err := page.NewRenderer(tmpl, engine).Render(source)
	if err != nil {
		return "", err
	}
	return p.HTML, nil
}
