package sheet

import "fmt"

// Sentinel errors callers match with errors.Is, or errors.As against
// *StageError for the failing stage name.
var (
	ErrImageDecode        = fmt.Errorf("scoreforge: image decode failed")
	ErrImageTooSmall      = fmt.Errorf("scoreforge: image smaller than 50px on a side")
	ErrNoStavesDetected   = fmt.Errorf("scoreforge: no staves detected")
	ErrModelUnavailable   = fmt.Errorf("scoreforge: classifier model unavailable")
	ErrSoundFontParse     = fmt.Errorf("scoreforge: soundfont parse failed")
	ErrSoundFontZoneEmpty = fmt.Errorf("scoreforge: active preset has zero zones")
	ErrNoPlayableEvents   = fmt.Errorf("scoreforge: score has no notes to render")
	ErrCancellation       = fmt.Errorf("scoreforge: cancellation requested")
	ErrInvariantViolated  = fmt.Errorf("scoreforge: internal invariant violated")
)

// StageError wraps a sentinel error with the stage that raised it and
// optional free-form context, favoring a plain fmt.Errorf-based error
// style over a custom error-code enum.
type StageError struct {
	Stage   string
	Err     error
	Context string
}

func (e *StageError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %v (%s)", e.Stage, e.Err, e.Context)
}

func (e *StageError) Unwrap() error { return e.Err }

// Stage wraps err as a StageError tagged with stage, passing err
// through unchanged if it is already nil.
func Stage(stage string, err error, context string) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err, Context: context}
}
