package sf2

import "math"

// Zone is one instrument zone after generator merging, with sample
// addressing, tuning, and envelope parameters resolved to natural
// units.
type Zone struct {
	KeyLo, KeyHi int
	VelLo, VelHi int

	SampleID    int
	HasSampleID bool
	RootKey     int
	FineTuneCt  int // cents
	CoarseTune  int // semitones
	SampleModes int // 0 no loop, 1 continuous, 3 loop-then-release

	AttackTc  int
	DecayTc   int
	SustainCb int
	ReleaseTc int

	StartOffset     int32
	EndOffset       int32
	StartLoopOffset int32
	EndLoopOffset   int32

	// Resolved sample fields, filled in by resolveSample once the
	// referenced shdr record is known.
	Start, End, StartLoop, EndLoop uint32
	SampleRate                     uint32
	SampleType                     uint16
}

// defaultZone mirrors the SF2 specification's default generator
// values for fields this parser cares about.
func defaultZone() Zone {
	return Zone{
		KeyLo: 0, KeyHi: 127,
		VelLo: 0, VelHi: 127,
		RootKey:   -1, // -1 means "use the sample's own original pitch"
		SustainCb: 0,
		AttackTc:  -12000, // ~0s
		DecayTc:   -12000,
		ReleaseTc: -12000,
	}
}

// buildInstrumentZones constructs an instrument's zones: the first bag
// with no sampleID generator is the instrument's global
// zone, whose generators become defaults merged under every other
// zone's own values.
func buildInstrumentZones(bags []bag, gens []generator, bagLo, bagHi int) []Zone {
	if bagHi > len(bags) {
		bagHi = len(bags)
	}
	if bagLo >= bagHi {
		return nil
	}

	genRangeFor := func(i int) (int, int) {
		lo := int(bags[i].genIndex)
		hi := len(gens)
		if i+1 < len(bags) {
			hi = int(bags[i+1].genIndex)
		}
		if hi > len(gens) {
			hi = len(gens)
		}
		return lo, hi
	}

	base := defaultZone()
	start := bagLo
	if lo, hi := genRangeFor(bagLo); lo < hi {
		if !containsSampleID(gens[lo:hi]) {
			applyGenerators(&base, gens[lo:hi])
			start = bagLo + 1
		}
	}

	var zones []Zone
	for i := start; i < bagHi; i++ {
		z := base
		lo, hi := genRangeFor(i)
		if lo >= hi {
			continue
		}
		applyGenerators(&z, gens[lo:hi])
		if z.HasSampleID {
			zones = append(zones, z)
		}
	}
	return zones
}

func containsSampleID(gens []generator) bool {
	for _, g := range gens {
		if g.op == genSampleID {
			return true
		}
	}
	return false
}

func applyGenerators(z *Zone, gens []generator) {
	for _, g := range gens {
		switch g.op {
		case genKeyRange:
			z.KeyLo, z.KeyHi = int(g.amount&0xFF), int((g.amount>>8)&0xFF)
		case genVelRange:
			z.VelLo, z.VelHi = int(g.amount&0xFF), int((g.amount>>8)&0xFF)
		case genSampleID:
			z.SampleID = int(g.uAmt)
			z.HasSampleID = true
		case genOverridingRoot:
			z.RootKey = int(g.amount)
		case genFineTune:
			z.FineTuneCt = int(g.amount)
		case genCoarseTune:
			z.CoarseTune = int(g.amount)
		case genSampleModes:
			z.SampleModes = int(g.amount)
		case genVolAttack:
			z.AttackTc = int(g.amount)
		case genVolDecay:
			z.DecayTc = int(g.amount)
		case genVolSustain:
			z.SustainCb = int(g.amount)
		case genVolRelease:
			z.ReleaseTc = int(g.amount)
		case genStartAddrOffset:
			z.StartOffset += int32(g.amount)
		case genEndAddrOffset:
			z.EndOffset += int32(g.amount)
		case genStartLoopAddrOffset:
			z.StartLoopOffset += int32(g.amount)
		case genEndLoopAddrOffset:
			z.EndLoopOffset += int32(g.amount)
		case genStartAddrCoarse:
			z.StartOffset += int32(g.amount) * 32768
		case genEndAddrCoarse:
			z.EndOffset += int32(g.amount) * 32768
		case genStartLoopAddrCoarse:
			z.StartLoopOffset += int32(g.amount) * 32768
		case genEndLoopAddrCoarse:
			z.EndLoopOffset += int32(g.amount) * 32768
		}
	}
}

// resolveSample applies a zone's address offsets over its referenced
// shdr record and fills the resolved sample-pool window.
func resolveSample(z *Zone, sh sampleHeader) {
	z.Start = addOffset(sh.start, z.StartOffset)
	z.End = addOffset(sh.end, z.EndOffset)
	z.StartLoop = addOffset(sh.startLoop, z.StartLoopOffset)
	z.EndLoop = addOffset(sh.endLoop, z.EndLoopOffset)
	z.SampleRate = sh.sampleRate
	z.SampleType = sh.sampleType
	if z.RootKey < 0 {
		z.RootKey = int(sh.originalKey)
	}
	z.FineTuneCt += int(sh.correction)
}

func addOffset(base uint32, off int32) uint32 {
	v := int64(base) + int64(off)
	if v < 0 {
		return 0
	}
	return uint32(v)
}

// AttackSeconds converts the zone's volume-envelope attack timecents
// to seconds: t = 2^(tc/1200).
func (z Zone) AttackSeconds() float64  { return timecentsToSeconds(z.AttackTc) }
func (z Zone) DecaySeconds() float64   { return timecentsToSeconds(z.DecayTc) }
func (z Zone) ReleaseSeconds() float64 { return timecentsToSeconds(z.ReleaseTc) }

// SustainLevel converts the zone's sustain attenuation (centibels) to
// a linear gain: level = max(0, 1 - cB/1000).
func (z Zone) SustainLevel() float64 {
	level := 1 - float64(z.SustainCb)/1000.0
	if level < 0 {
		return 0
	}
	return level
}

func timecentsToSeconds(tc int) float64 {
	return math.Pow(2, float64(tc)/1200.0)
}

// Loopable reports whether the zone's loop region is usable: loop mode
// enabled, span >= 32 samples, and bounds inside the resolved sample
// window.
func (z Zone) Loopable() bool {
	if z.SampleModes != 1 && z.SampleModes != 3 {
		return false
	}
	if z.EndLoop <= z.StartLoop || z.EndLoop-z.StartLoop < 32 {
		return false
	}
	return z.StartLoop >= z.Start && z.EndLoop <= z.End
}
