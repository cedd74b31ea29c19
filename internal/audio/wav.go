package audio

import (
	"bytes"
	"encoding/binary"
)

// EncodeWAV implements canonical PCM-16 mono 44100 WAV
// encoding.
func EncodeWAV(samples []float64) []byte {
	dataSize := len(samples) * 2
	var buf bytes.Buffer
	buf.Grow(44 + dataSize)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // mono
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2)) // byteRate
	binary.Write(&buf, binary.LittleEndian, uint16(2))            // blockAlign
	binary.Write(&buf, binary.LittleEndian, uint16(16))           // bitsPerSample

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	for _, s := range samples {
		binary.Write(&buf, binary.LittleEndian, uint16(floatToPCM16(s)))
	}
	return buf.Bytes()
}

// floatToPCM16 implements float-to-int16 conversion:
// clip to [-1,1], then scale by 0x8000 for negative values and 0x7FFF
// for non-negative ones (matching the format's asymmetric range).
func floatToPCM16(s float64) int16 {
	if s < -1 {
		s = -1
	}
	if s > 1 {
		s = 1
	}
	if s < 0 {
		return int16(s * 0x8000)
	}
	return int16(s * 0x7FFF)
}
