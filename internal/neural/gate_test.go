package neural

import "testing"

func uniform71() [71]float32 {
	var p [71]float32
	for i := range p {
		p[i] = 1.0 / 71.0
	}
	return p
}

func TestEvaluateRejectsNearUniform(t *testing.T) {
	res := Evaluate(uniform71())
	if res.Keep {
		t.Fatal("near-uniform distribution should be rejected as noise")
	}
}

func TestEvaluateKeepsConfidentNote(t *testing.T) {
	p := uniform71()
	p[5] = 0.9 // a note-class index, per buildLabelTable grouping
	for i := range p {
		if i != 5 {
			p[i] = 0.1 / 70
		}
	}
	res := Evaluate(p)
	if !res.Keep {
		t.Fatal("expected a confident note prediction to be kept")
	}
	if res.Category != CategoryNote {
		t.Fatalf("expected CategoryNote, got %v", res.Category)
	}
	if res.LowConf {
		t.Fatal("0.9 confidence should not be flagged low-confidence")
	}
}

func TestEvaluateRejectsConfidentRest(t *testing.T) {
	p := uniform71()
	restIdx := 40 // within the rest block per buildLabelTable grouping
	for i := range p {
		p[i] = 0
	}
	p[restIdx] = 0.95
	p[0] = 0.05
	res := Evaluate(p)
	if res.Keep {
		t.Fatal("a confident rest prediction must be rejected by the notehead gate")
	}
}

func TestClassifyKeySignatureWithoutModel(t *testing.T) {
	ks, err := ClassifyKeySignature(nil, KeyTypeInput{}, func() KeyDigitInput { return KeyDigitInput{} })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ks.Count != 0 {
		t.Fatalf("expected {None,0} fallback, got %+v", ks)
	}
}
