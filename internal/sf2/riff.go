// Package sf2 parses SoundFont2 binary data into zone lists usable by
// the sample synthesizer: RIFF/chunk walking, sample-pool extraction,
// and zone construction with global-zone generator merging.
package sf2

import (
	"encoding/binary"

	"scoreforge/internal/sheet"
)

type chunk struct {
	id   string
	data []byte
}

// walkRIFF validates the top-level RIFF/sfbk header and returns the
// list of immediate child chunks of the RIFF form (the INFO, sdta and
// pdta LIST chunks),
// matching the little-endian chunk-length framing used throughout the
// format.
func walkRIFF(data []byte) ([]chunk, error) {
	if len(data) < 12 {
		return nil, sheet.Stage("sf2", sheet.ErrSoundFontParse, "file too small for RIFF header")
	}
	if string(data[0:4]) != "RIFF" {
		return nil, sheet.Stage("sf2", sheet.ErrSoundFontParse, "missing RIFF tag")
	}
	riffSize := binary.LittleEndian.Uint32(data[4:8])
	if string(data[8:12]) != "sfbk" {
		return nil, sheet.Stage("sf2", sheet.ErrSoundFontParse, "missing sfbk form type")
	}

	end := 8 + int(riffSize)
	if end > len(data) {
		end = len(data)
	}

	var chunks []chunk
	pos := 12
	for pos+8 <= end {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(data) {
			break
		}
		chunks = append(chunks, chunk{id: id, data: data[body : body+size]})
		pos = body + size
		if pos%2 == 1 {
			pos++ // chunks are word-aligned
		}
	}
	return chunks, nil
}

// listChunks splits a LIST chunk's body (after the 4-byte list type
// tag) into its sub-chunks.
func listChunks(body []byte) (listType string, subs []chunk) {
	if len(body) < 4 {
		return "", nil
	}
	listType = string(body[0:4])
	pos := 4
	for pos+8 <= len(body) {
		id := string(body[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(body[pos+4 : pos+8]))
		start := pos + 8
		if start+size > len(body) {
			break
		}
		subs = append(subs, chunk{id: id, data: body[start : start+size]})
		pos = start + size
		if pos%2 == 1 {
			pos++
		}
	}
	return listType, subs
}

// findChunk returns the first chunk with the given id, if present.
func findChunk(chunks []chunk, id string) ([]byte, bool) {
	for _, c := range chunks {
		if c.id == id {
			return c.data, true
		}
	}
	return nil, false
}
