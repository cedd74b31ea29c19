package neural

import "scoreforge/internal/sheet"

// ClassifyKeySignature runs the two-stage key-signature classifier:
// K1 decides {None, Sharps, Flats} from a small thumbnail; if not
// None, K2 decides the accidental count from a second crop. digitCrop
// is only invoked when K1's argmax is not None, since cropping it
// requires knowing where the accidentals end.
//
// A nil/unavailable Classifiers means ModelUnavailable:
// the key signature stage returns {None, 0} without error.
func ClassifyKeySignature(c *Classifiers, typeCrop KeyTypeInput, digitCrop func() KeyDigitInput) (sheet.KeySignature, error) {
	if !c.Available() || c.KeyType == nil {
		return sheet.KeySignature{Type: sheet.KeyNone, Count: 0}, nil
	}

	typeProbs, err := c.KeyType(typeCrop)
	if err != nil {
		return sheet.KeySignature{}, err
	}

	kind := argmax3(typeProbs)
	ksType := sheet.KeyNone
	switch kind {
	case 1:
		ksType = sheet.KeySharps
	case 2:
		ksType = sheet.KeyFlats
	}
	if ksType == sheet.KeyNone {
		return sheet.KeySignature{Type: sheet.KeyNone, Count: 0}, nil
	}

	if c.KeyDigit == nil {
		return sheet.KeySignature{Type: sheet.KeyNone, Count: 0}, nil
	}
	digitProbs, err := c.KeyDigit(digitCrop())
	if err != nil {
		return sheet.KeySignature{}, err
	}
	count := argmax11(digitProbs)
	if count > 7 {
		count = 7
	}
	return sheet.KeySignature{Type: ksType, Count: count}, nil
}

func argmax3(p [3]float32) int {
	best, bi := p[0], 0
	for i := 1; i < 3; i++ {
		if p[i] > best {
			best, bi = p[i], i
		}
	}
	return bi
}

func argmax11(p [11]float32) int {
	best, bi := p[0], 0
	for i := 1; i < 11; i++ {
		if p[i] > best {
			best, bi = p[i], i
		}
	}
	return bi
}
