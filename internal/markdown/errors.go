package markdown

import "errors"

var (
	// ErrUnbalancedDelimiter indicates an inline code, bold or italic delimiter without a closing partner.
	ErrUnbalancedDelimiter = errors.New("unbalanced inline delimiter")

	// ErrMalformedBlock indicates a line that does not fit the block its first line committed to.
	ErrMalformedBlock = errors.New("malformed block")

	// ErrInvalidHeadingLevel indicates a heading whose '#' run is outside 1-6.
	ErrInvalidHeadingLevel = errors.New("invalid heading level")

	// ErrUnknownBlockType indicates a block type the compiler has no rule for.
	ErrUnknownBlockType = errors.New("unknown block type")

	// ErrUnknownSpanKind indicates a span kind with no HTML mapping.
	ErrUnknownSpanKind = errors.New("unknown span kind")
)
