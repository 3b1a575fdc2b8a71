package pedlog

import (
	"fmt"

	"github.com/pedlog/pedlog-go/internal/logfinder"
)

// Sentinel errors returned by this package.
var (
	// ErrChatLogNotFound is returned when the Entropia Universe chat
	// log cannot be found or accessed.
	ErrChatLogNotFound = logfinder.ErrChatLogNotFound
)

// ParseError reports a line that matched an event pattern but carried
// malformed data.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing line %q: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
