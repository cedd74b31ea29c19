// Package neural wraps three opaque neural classifiers treated as
// pure functions (OCR, key-signature type, key-signature digit), plus
// the confidence-gate decision logic and the hand-curated OCR label
// table.
//
// Model loading mechanics are explicitly out of scope: callers
// provide already-loaded Classifiers, an injected handle in place of
// a global ModelService singleton.
package neural

// OCRInput is a 24x24 single-channel patch, row-major, normalized to
// [0,1], zero-mean/unit-variance.
type OCRInput [24 * 24]float32

// KeyTypeInput is a 30x15 single-channel patch normalized to [0,1].
type KeyTypeInput [30 * 15]float32

// KeyDigitInput is a 30x27 single-channel patch normalized to [0,1].
type KeyDigitInput [30 * 27]float32

// Classifiers groups the three pre-trained opaque classifiers the
// pipeline calls. Each behaves as a pure function over its input
// patch, returning a class-probability vector (softmax output).
type Classifiers struct {
	// OCR classifies a notehead/rest candidate patch into 71 classes.
	OCR func(OCRInput) ([71]float32, error)

	// KeyType classifies the key-signature thumbnail into
	// {None, Sharps, Flats}.
	KeyType func(KeyTypeInput) ([3]float32, error)

	// KeyDigit classifies a key-signature accidental count into 0..10.
	KeyDigit func(KeyDigitInput) ([11]float32, error)
}

// Available reports whether c is non-nil. It does not inspect the
// function fields; callers check the specific field they use. With no
// usable classifier, key-signature detection falls back to {None, 0}
// and the OCR gate passes every candidate through unfiltered.
func (c *Classifiers) Available() bool {
	return c != nil
}
