package sf2

import (
	"scoreforge/internal/diag"
	"scoreforge/internal/sheet"
)

// SoundFont is a parsed SF2 file: the sample pool plus the zone lists
// needed to render notes.
type SoundFont struct {
	samples []int16 // copied smpl pool, 16-bit signed PCM

	sampleHeaders []sampleHeader
	instruments   []instHeader
	instBags      []bag
	instGens      []generator
	presets       []presetHeader
	presetBags    []bag
	presetGens    []generator

	zoneCache map[int]Zone // active-preset MIDI note -> best zone (velocity 80)
	active    []Zone        // active preset's full zone list
}

// Load parses an SF2 file end to end: RIFF validation, sdta/pdta
// extraction, sample-pool copy, and construction of instrument zones.
// It selects preset 0 (conventionally Grand Piano) as active.
func Load(data []byte, logger *diag.Logger, runID string) (*SoundFont, error) {
	top, err := walkRIFF(data)
	if err != nil {
		return nil, err
	}

	var sdta, pdta []chunk
	for _, c := range top {
		if c.id != "LIST" {
			continue
		}
		listType, subs := listChunks(c.data)
		switch listType {
		case "sdta":
			sdta = subs
		case "pdta":
			pdta = subs
		}
	}

	smplRaw, _ := findChunk(sdta, "smpl")
	samples := copySamplePool(smplRaw)

	shdrRaw, ok := findChunk(pdta, "shdr")
	if !ok {
		return nil, sheet.Stage("sf2", sheet.ErrSoundFontParse, "missing shdr chunk")
	}
	instRaw, ok := findChunk(pdta, "inst")
	if !ok {
		return nil, sheet.Stage("sf2", sheet.ErrSoundFontParse, "missing inst chunk")
	}
	ibagRaw, ok := findChunk(pdta, "ibag")
	if !ok {
		return nil, sheet.Stage("sf2", sheet.ErrSoundFontParse, "missing ibag chunk")
	}
	igenRaw, ok := findChunk(pdta, "igen")
	if !ok {
		return nil, sheet.Stage("sf2", sheet.ErrSoundFontParse, "missing igen chunk")
	}
	phdrRaw, ok := findChunk(pdta, "phdr")
	if !ok {
		return nil, sheet.Stage("sf2", sheet.ErrSoundFontParse, "missing phdr chunk")
	}
	pbagRaw, ok := findChunk(pdta, "pbag")
	if !ok {
		return nil, sheet.Stage("sf2", sheet.ErrSoundFontParse, "missing pbag chunk")
	}
	pgenRaw, ok := findChunk(pdta, "pgen")
	if !ok {
		return nil, sheet.Stage("sf2", sheet.ErrSoundFontParse, "missing pgen chunk")
	}

	sf := &SoundFont{
		samples:       samples,
		sampleHeaders: parseSampleHeaders(shdrRaw),
		instruments:   parseInstHeaders(instRaw),
		instBags:      parseBags(ibagRaw),
		instGens:      parseGenerators(igenRaw),
		presets:       parsePresetHeaders(phdrRaw),
		presetBags:    parseBags(pbagRaw),
		presetGens:    parseGenerators(pgenRaw),
	}

	if sf.realPresetCount() == 0 {
		return nil, sheet.Stage("sf2", sheet.ErrSoundFontParse, "soundfont has no presets")
	}
	if err := sf.SelectPreset(0, logger, runID); err != nil {
		return nil, err
	}
	return sf, nil
}

// realPresetCount excludes the trailing EOP terminator record kept in
// sf.presets for bag-boundary math.
func (sf *SoundFont) realPresetCount() int {
	n := len(sf.presets)
	if n > 0 && sf.presets[n-1].name == "EOP" {
		return n - 1
	}
	return n
}

// copySamplePool copies the smpl chunk into a freshly allocated,
// alignment-safe buffer before reinterpreting it as 16-bit signed PCM:
// the chunk's offset into the RIFF buffer is not guaranteed to be
// 2-byte aligned, so reinterpreting the raw slice in place would be
// unsafe.
func copySamplePool(raw []byte) []int16 {
	n := len(raw) / 2
	buf := make([]byte, n*2)
	copy(buf, raw[:n*2])
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(uint16(buf[2*i]) | uint16(buf[2*i+1])<<8)
	}
	return out
}

// instrumentZones returns the resolved zones of instrument i.
func (sf *SoundFont) instrumentZones(i int) []Zone {
	if i < 0 || i >= len(sf.instruments) {
		return nil
	}
	bagLo := int(sf.instruments[i].bagIndex)
	bagHi := len(sf.instBags)
	if i+1 < len(sf.instruments) {
		bagHi = int(sf.instruments[i+1].bagIndex)
	}
	zones := buildInstrumentZones(sf.instBags, sf.instGens, bagLo, bagHi)
	var out []Zone
	for _, z := range zones {
		if z.SampleID < 0 || z.SampleID >= len(sf.sampleHeaders) {
			continue
		}
		sh := sf.sampleHeaders[z.SampleID]
		if sh.sampleType > 1 {
			continue // ROM samples or linked stereo halves are skipped
		}
		resolveSample(&z, sh)
		out = append(out, z)
	}
	return out
}

// presetInstrumentIndices collects the instrument indices (generator
// op 41) referenced by preset p's zones, skipping its global zone.
func (sf *SoundFont) presetInstrumentIndices(p int) []int {
	bagLo := int(sf.presets[p].presetBagIdx)
	bagHi := len(sf.presetBags)
	if p+1 < len(sf.presets) {
		bagHi = int(sf.presets[p+1].presetBagIdx)
	}
	if bagHi > len(sf.presetBags) {
		bagHi = len(sf.presetBags)
	}

	genRangeFor := func(i int) (int, int) {
		lo := int(sf.presetBags[i].genIndex)
		hi := len(sf.presetGens)
		if i+1 < len(sf.presetBags) {
			hi = int(sf.presetBags[i+1].genIndex)
		}
		if hi > len(sf.presetGens) {
			hi = len(sf.presetGens)
		}
		return lo, hi
	}

	start := bagLo
	if bagLo < bagHi {
		lo, hi := genRangeFor(bagLo)
		if lo < hi && !containsInstrumentGen(sf.presetGens[lo:hi]) {
			start = bagLo + 1
		}
	}

	var indices []int
	for i := start; i < bagHi; i++ {
		lo, hi := genRangeFor(i)
		for _, g := range sf.presetGens[lo:hi] {
			if g.op == genInstrument {
				indices = append(indices, int(g.uAmt))
			}
		}
	}
	return indices
}

func containsInstrumentGen(gens []generator) bool {
	for _, g := range gens {
		if g.op == genInstrument {
			return true
		}
	}
	return false
}

// SelectPreset filters the instrument zone lists down to the zones of
// the selected preset's instruments, then rebuilds the MIDI-note ->
// best-zone cache by iterating every note at velocity 80 through
// findZone. If the preset resolves to no zones (a malformed or
// oddly-authored preset/instrument link), it falls back to the zones
// of every instrument in the font and logs a warning rather than
// failing the render.
func (sf *SoundFont) SelectPreset(index int, logger *diag.Logger, runID string) error {
	if index < 0 || index >= sf.realPresetCount() {
		return sheet.Stage("sf2", sheet.ErrSoundFontParse, "preset index out of range")
	}

	var zones []Zone
	for _, instIdx := range sf.presetInstrumentIndices(index) {
		zones = append(zones, sf.instrumentZones(instIdx)...)
	}
	if len(zones) == 0 {
		zones = sf.allInstrumentZones()
		if logger != nil {
			logger.Logf(diag.StageSF2, diag.LevelWarn, runID, "preset %d has an empty zone set, rebuilding from all %d instruments", index, len(sf.instruments))
		}
	}
	if len(zones) == 0 {
		return sheet.ErrSoundFontZoneEmpty
	}

	sf.active = zones
	sf.zoneCache = make(map[int]Zone, 128)
	for note := 0; note <= 127; note++ {
		if z, ok := findZone(zones, note, 80); ok {
			sf.zoneCache[note] = z
		}
	}
	return nil
}

// allInstrumentZones collects the resolved zones of every instrument
// in the font, used as the SelectPreset fallback when a preset's own
// instrument links resolve to nothing.
func (sf *SoundFont) allInstrumentZones() []Zone {
	var zones []Zone
	for i := range sf.instruments {
		zones = append(zones, sf.instrumentZones(i)...)
	}
	return zones
}

// FindZone returns the best zone for (note, velocity) from the active
// preset's cache, falling back to a direct scan for velocities other
// than the cached 80.
func (sf *SoundFont) FindZone(note, velocity int) (Zone, bool) {
	if velocity == 80 {
		z, ok := sf.zoneCache[note]
		return z, ok
	}
	return findZone(sf.active, note, velocity)
}

// PresetCount reports how many presets the font defines.
func (sf *SoundFont) PresetCount() int { return sf.realPresetCount() }

// Samples exposes the copied 16-bit PCM sample pool for the
// synthesizer's render loop.
func (sf *SoundFont) Samples() []int16 { return sf.samples }

// findZone looks up the best zone for (note, vel): prefer a zone whose
// keyRange and velRange both contain (note, vel), minimizing
// |note-rootKey|; otherwise pick the zone whose key-range midpoint is
// closest to note.
func findZone(zones []Zone, note, vel int) (Zone, bool) {
	if len(zones) == 0 {
		return Zone{}, false
	}

	bestIdx := -1
	bestDist := 1 << 30
	for i, z := range zones {
		if note < z.KeyLo || note > z.KeyHi || vel < z.VelLo || vel > z.VelHi {
			continue
		}
		dist := note - z.RootKey
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			bestDist = dist
			bestIdx = i
		}
	}
	if bestIdx >= 0 {
		return zones[bestIdx], true
	}

	bestIdx = 0
	bestDist = 1 << 30
	for i, z := range zones {
		mid := (z.KeyLo + z.KeyHi) / 2
		dist := note - mid
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			bestDist = dist
			bestIdx = i
		}
	}
	return zones[bestIdx], true
}
