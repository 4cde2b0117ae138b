package page

import (
	"errors"
	"strings"

	ferrors "git.home.luguber.info/inful/mdsite/internal/foundation/errors"
)

// ErrNoTitle indicates a document without a "# " line.
var ErrNoTitle = errors.New("no title heading found")

// ExtractTitle returns the text of the first line that starts with "# " once leading
// whitespace is ignored. The scan is over raw lines and does not consult block structure.
func ExtractTitle(markdown string) (string, error) {
	for _, line := range strings.Split(markdown, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimLeft(line, " \t"), "# "); ok {
			return strings.TrimRight(rest, " \t\r"), nil
		}
	}
	return "", ferrors.MarkdownError("document has no level one heading").WithCause(ErrNoTitle).Build()
}
