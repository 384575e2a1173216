package speech

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	logx "github.com/swayam-agent/server/pkg/logger"
)

// wavFormat holds the PCM parameters that must agree across stitched chunks.
type wavFormat struct {
	Channels      uint16
	BitsPerSample uint16
	SampleRate    uint32
}

// decodeWAV parses a RIFF/WAVE container and returns its format and raw
// sample frames. Extension chunks between "fmt " and "data" are skipped.
func decodeWAV(b []byte) (wavFormat, []byte, error) {
	var f wavFormat
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return f, nil, fmt.Errorf("not a RIFF/WAVE container")
	}

	var data []byte
	haveFmt := false
	off := 12
	for off+8 <= len(b) {
		id := string(b[off : off+4])
		size := int(binary.LittleEndian.Uint32(b[off+4 : off+8]))
		body := off + 8
		if body+size > len(b) {
			size = len(b) - body
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return f, nil, fmt.Errorf("fmt chunk too short: %d bytes", size)
			}
			f.Channels = binary.LittleEndian.Uint16(b[body+2 : body+4])
			f.SampleRate = binary.LittleEndian.Uint32(b[body+4 : body+8])
			f.BitsPerSample = binary.LittleEndian.Uint16(b[body+14 : body+16])
			haveFmt = true
		case "data":
			data = b[body : body+size]
		}

		// chunks are word aligned
		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if !haveFmt {
		return f, nil, fmt.Errorf("missing fmt chunk")
	}
	if data == nil {
		return f, nil, fmt.Errorf("missing data chunk")
	}
	return f, data, nil
}

// encodeWAV writes a minimal PCM RIFF/WAVE container around frames.
func encodeWAV(f wavFormat, frames []byte) []byte {
	blockAlign := f.Channels * f.BitsPerSample / 8
	byteRate := f.SampleRate * uint32(blockAlign)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(frames)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, f.Channels)
	binary.Write(&buf, binary.LittleEndian, f.SampleRate)
	binary.Write(&buf, binary.LittleEndian, byteRate)
	binary.Write(&buf, binary.LittleEndian, blockAlign)
	binary.Write(&buf, binary.LittleEndian, f.BitsPerSample)
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(frames)))
	buf.Write(frames)
	return buf.Bytes()
}

// StitchWAV concatenates base64-encoded WAV chunks into one base64-encoded
// WAV payload. Every chunk must share the first chunk's channel count, sample
// width and sample rate; on the first mismatch (or decode failure) stitching
// falls back to the first chunk alone so the caller always gets something
// playable.
func StitchWAV(chunks []string) string {
	if len(chunks) == 0 {
		return ""
	}

	var format wavFormat
	var frames []byte
	for i, c := range chunks {
		raw, err := base64.StdEncoding.DecodeString(c)
		if err != nil {
			logx.Error().Err(err).Int("chunk", i).Msg("failed to decode audio chunk, keeping first chunk only")
			return chunks[0]
		}
		f, data, err := decodeWAV(raw)
		if err != nil {
			logx.Error().Err(err).Int("chunk", i).Msg("failed to parse audio chunk, keeping first chunk only")
			return chunks[0]
		}
		if i == 0 {
			format = f
		} else if f != format {
			logx.Error().
				Int("chunk", i).
				Uint16("channels", f.Channels).
				Uint16("bits", f.BitsPerSample).
				Uint32("rate", f.SampleRate).
				Msg("audio format mismatch, keeping first chunk only")
			return chunks[0]
		}
		frames = append(frames, data...)
	}

	return base64.StdEncoding.EncodeToString(encodeWAV(format, frames))
}
