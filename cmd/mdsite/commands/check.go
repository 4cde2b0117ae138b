package commands

import (
	"context"
	"fmt"
	"io"

	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdsite/internal/linkcheck"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Dir string `arg:"" optional:"" help:"Site directory to check (defaults to output.dir)"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	dir := c.Dir
	if dir == "" {
		cfg, err := loadConfig(g, root)
		if err != nil {
			return err
		}
		dir = cfg.Output.Dir
	}

	ctx, cancel := signalContext()
	defer cancel()
	return RunCheck(ctx, g.Out, dir)
}

// RunCheck reports broken internal links under dir. Any broken link fails the command.
func RunCheck(ctx context.Context, out io.Writer, dir string) error {
	broken, err := linkcheck.Check(ctx, dir)
	if err != nil {
		return err
	}
	if len(broken) == 0 {
		_, _ = fmt.Fprintf(out, "No broken links in %s\n", dir)
		return nil
	}

	for _, b := range broken {
		_, _ = fmt.Fprintf(out, "%s: broken %s %s=%q\n", b.Page, b.Link.Tag, b.Link.Attribute, b.Link.URL)
	}
	return ferrors.ValidationError("broken internal links found").
		WithContext("count", len(broken)).
		WithContext("dir", dir).
		Build()
}
