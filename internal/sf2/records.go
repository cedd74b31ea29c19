package sf2

import "encoding/binary"

// Fixed record sizes.
const (
	shdrRecordSize = 46
	instRecordSize = 22
	bagRecordSize  = 4
	genRecordSize  = 4
	phdrRecordSize = 38
)

// sampleHeader is one shdr record.
type sampleHeader struct {
	name       string
	start      uint32
	end        uint32
	startLoop  uint32
	endLoop    uint32
	sampleRate uint32
	originalKey uint8
	correction  int8
	sampleType  uint16
}

func parseSampleHeaders(data []byte) []sampleHeader {
	n := len(data) / shdrRecordSize
	out := make([]sampleHeader, 0, n)
	for i := 0; i < n; i++ {
		r := data[i*shdrRecordSize : (i+1)*shdrRecordSize]
		if string(r[0:3]) == "EOS" {
			break
		}
		out = append(out, sampleHeader{
			name:        cString(r[0:20]),
			start:       binary.LittleEndian.Uint32(r[20:24]),
			end:         binary.LittleEndian.Uint32(r[24:28]),
			startLoop:   binary.LittleEndian.Uint32(r[28:32]),
			endLoop:     binary.LittleEndian.Uint32(r[32:36]),
			sampleRate:  binary.LittleEndian.Uint32(r[36:40]),
			originalKey: r[40],
			correction:  int8(r[41]),
			sampleType:  binary.LittleEndian.Uint16(r[44:46]),
		})
	}
	return out
}

// instHeader is one inst record: a name and a bag-index into ibag.
type instHeader struct {
	name     string
	bagIndex uint16
}

func parseInstHeaders(data []byte) []instHeader {
	n := len(data) / instRecordSize
	out := make([]instHeader, 0, n)
	for i := 0; i < n; i++ {
		r := data[i*instRecordSize : (i+1)*instRecordSize]
		out = append(out, instHeader{name: cString(r[0:20]), bagIndex: binary.LittleEndian.Uint16(r[20:22])})
	}
	return out
}

// bag is one ibag/pbag record: the starting index into igen/pgen.
type bag struct {
	genIndex uint16
}

func parseBags(data []byte) []bag {
	n := len(data) / bagRecordSize
	out := make([]bag, 0, n)
	for i := 0; i < n; i++ {
		r := data[i*bagRecordSize : (i+1)*bagRecordSize]
		out = append(out, bag{genIndex: binary.LittleEndian.Uint16(r[0:2])})
	}
	return out
}

// generator is one igen/pgen record: an operator and its amount.
type generator struct {
	op     uint16
	amount int16
	uAmt   uint16 // unsigned view, used by range/sampleID operators
}

func parseGenerators(data []byte) []generator {
	n := len(data) / genRecordSize
	out := make([]generator, 0, n)
	for i := 0; i < n; i++ {
		r := data[i*genRecordSize : (i+1)*genRecordSize]
		amt := binary.LittleEndian.Uint16(r[2:4])
		out = append(out, generator{op: binary.LittleEndian.Uint16(r[0:2]), amount: int16(amt), uAmt: amt})
	}
	return out
}

// presetHeader is one phdr record.
type presetHeader struct {
	name         string
	preset       uint16
	bank         uint16
	presetBagIdx uint16
}

// parsePresetHeaders parses every phdr record, including the trailing
// terminator ("EOP"): callers need its presetBagIdx as the upper bag
// boundary for the last real preset, the same way inst records keep
// their EOI terminator.
func parsePresetHeaders(data []byte) []presetHeader {
	n := len(data) / phdrRecordSize
	out := make([]presetHeader, 0, n)
	for i := 0; i < n; i++ {
		r := data[i*phdrRecordSize : (i+1)*phdrRecordSize]
		out = append(out, presetHeader{
			name:         cString(r[0:20]),
			preset:       binary.LittleEndian.Uint16(r[20:22]),
			bank:         binary.LittleEndian.Uint16(r[22:24]),
			presetBagIdx: binary.LittleEndian.Uint16(r[24:26]),
		})
	}
	return out
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// Generator operator constants recognized.
const (
	genKeyRange         = 43
	genVelRange         = 44
	genSampleID         = 53
	genOverridingRoot   = 58
	genFineTune         = 52
	genCoarseTune       = 51
	genSampleModes      = 54
	genVolAttack        = 34
	genVolDecay         = 36
	genVolSustain       = 37
	genVolRelease       = 38
	genInstrument       = 41
	genStartAddrOffset      = 0
	genEndAddrOffset        = 1
	genStartLoopAddrOffset  = 2
	genEndLoopAddrOffset    = 3
	genStartAddrCoarse      = 4
	genStartLoopAddrCoarse  = 45
	genEndAddrCoarse        = 12
	genEndLoopAddrCoarse    = 50
)
