package output

import (
	"encoding/binary"
	"fmt"
)

// pcmAudio is decoded audio ready for the playback device.
type pcmAudio struct {
	data       []byte // signed 16-bit LE samples
	sampleRate int
	channels   int
}

// parseWav extracts the PCM payload and playback parameters from a RIFF
// WAVE container. Only uncompressed 16-bit PCM is supported, which is what
// every WAV-producing backend here emits.
func parseWav(data []byte) (pcmAudio, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return pcmAudio{}, fmt.Errorf("not a RIFF WAVE container")
	}

	var out pcmAudio
	haveFmt := false
	pos := 12
	for pos+8 <= len(data) {
		chunkID := string(data[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return pcmAudio{}, fmt.Errorf("fmt chunk truncated")
			}
			audioFormat := binary.LittleEndian.Uint16(data[body : body+2])
			if audioFormat != 1 {
				return pcmAudio{}, fmt.Errorf("unsupported WAV encoding %d (want PCM)", audioFormat)
			}
			bits := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if bits != 16 {
				return pcmAudio{}, fmt.Errorf("unsupported sample width %d (want 16)", bits)
			}
			out.channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			out.sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			haveFmt = true
		case "data":
			out.data = data[body : body+chunkSize]
		}

		// Chunks are word-aligned.
		pos = body + chunkSize
		if chunkSize%2 == 1 {
			pos++
		}
	}

	if !haveFmt {
		return pcmAudio{}, fmt.Errorf("missing fmt chunk")
	}
	if len(out.data) == 0 {
		return pcmAudio{}, fmt.Errorf("missing data chunk")
	}
	return out, nil
}
