package reply

import (
	"errors"
	"fmt"
)

// ErrMalformedReply means a multi-bot response did not follow the
// "Name: content" segment grammar.
var ErrMalformedReply = errors.New("malformed reply")

// GenerationError wraps any failure to obtain a usable reply.
type GenerationError struct {
	Backend string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation via %s failed: %v", e.Backend, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// ErrorText renders a failure as the in-band message persisted in place of a reply.
func ErrorText(err error) string {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		err = genErr.Err
	}
	return fmt.Sprintf("(Error: %v)", err)
}
