package offline

import (
	"errors"
	"fmt"
)

// ErrFileAnalysis marks a recoverable file-mode failure. The caller still
// receives the realtime fallback result alongside it.
var ErrFileAnalysis = errors.New("offline: file analysis failed")

// Stage names where file analysis can fail.
const (
	StageFetch   = "fetch"
	StageDecode  = "decode"
	StageAnalyze = "analyze"
)

// Error describes a failed file-mode stage.
type Error struct {
	Stage string
	URI   string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("offline %s %q: %v", e.Stage, e.URI, e.Cause)
}

func (e *Error) Unwrap() []error {
	return []error{ErrFileAnalysis, e.Cause}
}
