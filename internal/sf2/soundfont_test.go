package sf2

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// writeChunk frames body as a RIFF sub-chunk: 4-byte id, little-endian
// size, body, and a padding byte if body is odd-length.
func writeChunk(id string, body []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString(id)
	binary.Write(&buf, binary.LittleEndian, uint32(len(body)))
	buf.Write(body)
	if len(body)%2 == 1 {
		buf.WriteByte(0)
	}
	return buf.Bytes()
}

func writeList(listType string, subChunks ...[]byte) []byte {
	var body bytes.Buffer
	body.WriteString(listType)
	for _, c := range subChunks {
		body.Write(c)
	}
	return writeChunk("LIST", body.Bytes())
}

func padName(name string) []byte {
	b := make([]byte, 20)
	copy(b, name)
	return b
}

// buildMinimalSF2 constructs a single-sample, single-instrument,
// single-preset SF2 file in memory, exercising the RIFF/chunk walker
// end to end. presetInstRef is the instrument index written into the
// preset's genInstrument generator; pass 0 to link it to the real
// instrument, or an out-of-range index to simulate a broken link.
func buildMinimalSF2(t *testing.T, presetInstRef uint16) []byte {
	t.Helper()

	const sampleLen = 100
	sampleBody := make([]byte, sampleLen*2)
	for i := 0; i < sampleLen; i++ {
		binary.LittleEndian.PutUint16(sampleBody[i*2:], uint16(int16(i*100-5000)))
	}
	smpl := writeChunk("smpl", sampleBody)
	sdta := writeList("sdta", smpl)

	var shdrBody bytes.Buffer
	shdrBody.Write(padName("TestSine"))
	binary.Write(&shdrBody, binary.LittleEndian, uint32(0))  // start
	binary.Write(&shdrBody, binary.LittleEndian, uint32(100)) // end
	binary.Write(&shdrBody, binary.LittleEndian, uint32(10))  // startLoop
	binary.Write(&shdrBody, binary.LittleEndian, uint32(90))  // endLoop
	binary.Write(&shdrBody, binary.LittleEndian, uint32(44100))
	shdrBody.WriteByte(60) // originalKey
	shdrBody.WriteByte(0)  // correction
	binary.Write(&shdrBody, binary.LittleEndian, uint16(0)) // sampleLink
	binary.Write(&shdrBody, binary.LittleEndian, uint16(1)) // sampleType = mono
	// EOS terminator record
	shdrBody.Write(padName("EOS"))
	shdrBody.Write(make([]byte, 26))
	shdr := writeChunk("shdr", shdrBody.Bytes())

	var instBody bytes.Buffer
	instBody.Write(padName("Inst0"))
	binary.Write(&instBody, binary.LittleEndian, uint16(0))
	instBody.Write(padName("EOI"))
	binary.Write(&instBody, binary.LittleEndian, uint16(1))
	inst := writeChunk("inst", instBody.Bytes())

	var ibagBody bytes.Buffer
	binary.Write(&ibagBody, binary.LittleEndian, uint16(0)) // genIndex for zone 0
	binary.Write(&ibagBody, binary.LittleEndian, uint16(0)) // modIndex (unused)
	binary.Write(&ibagBody, binary.LittleEndian, uint16(3)) // terminator genIndex
	binary.Write(&ibagBody, binary.LittleEndian, uint16(0))
	ibag := writeChunk("ibag", ibagBody.Bytes())

	var igenBody bytes.Buffer
	binary.Write(&igenBody, binary.LittleEndian, uint16(genKeyRange))
	igenBody.WriteByte(0)   // keyLo
	igenBody.WriteByte(127) // keyHi
	binary.Write(&igenBody, binary.LittleEndian, uint16(genSampleModes))
	binary.Write(&igenBody, binary.LittleEndian, uint16(1)) // continuous loop
	binary.Write(&igenBody, binary.LittleEndian, uint16(genSampleID))
	binary.Write(&igenBody, binary.LittleEndian, uint16(0))
	igen := writeChunk("igen", igenBody.Bytes())

	var phdrBody bytes.Buffer
	phdrBody.Write(padName("Piano"))
	binary.Write(&phdrBody, binary.LittleEndian, uint16(0)) // preset
	binary.Write(&phdrBody, binary.LittleEndian, uint16(0)) // bank
	binary.Write(&phdrBody, binary.LittleEndian, uint16(0)) // presetBagIdx
	binary.Write(&phdrBody, binary.LittleEndian, uint32(0)) // library
	binary.Write(&phdrBody, binary.LittleEndian, uint32(0)) // genre
	binary.Write(&phdrBody, binary.LittleEndian, uint32(0)) // morphology
	phdrBody.Write(padName("EOP"))
	binary.Write(&phdrBody, binary.LittleEndian, uint16(0))
	binary.Write(&phdrBody, binary.LittleEndian, uint16(0))
	binary.Write(&phdrBody, binary.LittleEndian, uint16(1))
	binary.Write(&phdrBody, binary.LittleEndian, uint32(0))
	binary.Write(&phdrBody, binary.LittleEndian, uint32(0))
	binary.Write(&phdrBody, binary.LittleEndian, uint32(0))
	phdr := writeChunk("phdr", phdrBody.Bytes())

	var pbagBody bytes.Buffer
	binary.Write(&pbagBody, binary.LittleEndian, uint16(0))
	binary.Write(&pbagBody, binary.LittleEndian, uint16(0))
	binary.Write(&pbagBody, binary.LittleEndian, uint16(1))
	binary.Write(&pbagBody, binary.LittleEndian, uint16(0))
	pbag := writeChunk("pbag", pbagBody.Bytes())

	var pgenBody bytes.Buffer
	binary.Write(&pgenBody, binary.LittleEndian, uint16(genInstrument))
	binary.Write(&pgenBody, binary.LittleEndian, presetInstRef)
	pgen := writeChunk("pgen", pgenBody.Bytes())

	pdta := writeList("pdta", phdr, pbag, pgen, inst, ibag, igen, shdr)

	var riffBody bytes.Buffer
	riffBody.WriteString("sfbk")
	riffBody.Write(sdta)
	riffBody.Write(pdta)

	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(riffBody.Len()))
	out.Write(riffBody.Bytes())
	return out.Bytes()
}

func TestLoadParsesMinimalSoundFont(t *testing.T) {
	data := buildMinimalSF2(t, 0)
	sf, err := Load(data, nil, "test-run")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sf.PresetCount() != 1 {
		t.Fatalf("expected 1 preset, got %d", sf.PresetCount())
	}
	if len(sf.Samples()) != 100 {
		t.Fatalf("expected 100 samples, got %d", len(sf.Samples()))
	}

	z, ok := sf.FindZone(60, 80)
	if !ok {
		t.Fatal("expected to find a zone for note 60")
	}
	if z.RootKey != 60 {
		t.Fatalf("expected rootKey 60 from shdr originalKey, got %d", z.RootKey)
	}
	if !z.Loopable() {
		t.Fatalf("expected loop region [10,90) to be loopable, got %+v", z)
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	if _, err := Load([]byte("not a soundfont"), nil, "test-run"); err == nil {
		t.Fatal("expected an error for invalid RIFF data")
	}
}

func TestSelectPresetRebuildsFromAllInstrumentsOnEmptyZoneSet(t *testing.T) {
	data := buildMinimalSF2(t, 99) // preset links to a nonexistent instrument
	sf, err := Load(data, nil, "test-run")
	if err != nil {
		t.Fatalf("expected Load to fall back instead of failing, got %v", err)
	}
	if sf.PresetCount() != 1 {
		t.Fatalf("expected 1 preset, got %d", sf.PresetCount())
	}

	z, ok := sf.FindZone(60, 80)
	if !ok {
		t.Fatal("expected the fallback zone set to still resolve a zone for note 60")
	}
	if z.RootKey != 60 {
		t.Fatalf("expected rootKey 60 from the rebuilt zone, got %d", z.RootKey)
	}
}
