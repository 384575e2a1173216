package speech

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wavB64(t *testing.T, f wavFormat, frames []byte) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString(encodeWAV(f, frames))
}

var testFormat = wavFormat{Channels: 1, BitsPerSample: 16, SampleRate: 16000}

func TestStitchWAVConcatenatesFrames(t *testing.T) {
	a := make([]byte, 320)
	b := make([]byte, 640)
	c := make([]byte, 160)
	for i := range b {
		b[i] = byte(i)
	}

	out := StitchWAV([]string{
		wavB64(t, testFormat, a),
		wavB64(t, testFormat, b),
		wavB64(t, testFormat, c),
	})
	require.NotEmpty(t, out)

	raw, err := base64.StdEncoding.DecodeString(out)
	require.NoError(t, err)
	f, frames, err := decodeWAV(raw)
	require.NoError(t, err)
	assert.Equal(t, testFormat, f)
	assert.Len(t, frames, len(a)+len(b)+len(c))
	assert.Equal(t, b, frames[len(a):len(a)+len(b)])
}

func TestStitchWAVFormatMismatchFallsBackToFirstChunk(t *testing.T) {
	first := wavB64(t, testFormat, make([]byte, 320))
	other := wavB64(t, wavFormat{Channels: 2, BitsPerSample: 16, SampleRate: 16000}, make([]byte, 320))

	out := StitchWAV([]string{first, other})
	assert.Equal(t, first, out)
}

func TestStitchWAVGarbageFallsBackToFirstChunk(t *testing.T) {
	first := wavB64(t, testFormat, make([]byte, 320))

	out := StitchWAV([]string{first, base64.StdEncoding.EncodeToString([]byte("definitely not audio"))})
	assert.Equal(t, first, out)
}

func TestStitchWAVEmptyInput(t *testing.T) {
	assert.Empty(t, StitchWAV(nil))
}

func TestStitchWAVSingleChunkRoundTrips(t *testing.T) {
	frames := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	out := StitchWAV([]string{wavB64(t, testFormat, frames)})

	raw, err := base64.StdEncoding.DecodeString(out)
	require.NoError(t, err)
	_, got, err := decodeWAV(raw)
	require.NoError(t, err)
	assert.Equal(t, frames, got)
}
