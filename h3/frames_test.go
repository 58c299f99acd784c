package h3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	payload := []byte{0x00, 0x01, 0x02, 0x03}
	enc, err := EncodeFrame(FrameHeaders, payload)
	require.NoError(t, err)

	f, n, err := ParseFrame(enc)
	require.NoError(t, err)
	assert.Equal(t, uint64(FrameHeaders), f.Type)
	assert.Equal(t, payload, f.Payload)
	assert.Equal(t, len(enc), n)
}

func TestFrameParseIncompleteThenComplete(t *testing.T) {
	// Scenario 6 from spec.md §8: HEADERS, len=5, only 2 payload bytes
	// present; ParseFrame must report incomplete and not panic, then
	// succeed once the remaining bytes arrive.
	partial := []byte{0x01, 0x05, 0x00, 0x01}
	_, _, err := ParseFrame(partial)
	assert.ErrorIs(t, err, ErrIncomplete)

	stillShort := append(append([]byte{}, partial...), 0x02, 0x03)
	_, _, err = ParseFrame(stillShort)
	assert.ErrorIs(t, err, ErrIncomplete)

	complete := append(stillShort, 0xFF)
	f, n, err := ParseFrame(complete)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0x02, 0x03, 0xFF}, f.Payload)
	assert.Equal(t, len(complete), n)
}

func TestFrameParseNoPanicOnSmallBuffers(t *testing.T) {
	for i := 0; i < 16; i++ {
		buf := make([]byte, i)
		for j := range buf {
			buf[j] = 0xff
		}
		assert.NotPanics(t, func() {
			ParseFrame(buf)
		})
	}
}

func TestAccumulatorBuffersPartialFrames(t *testing.T) {
	var acc BytesAccumulator
	acc.Feed([]byte{0x01, 0x05, 0x00, 0x01})

	_, ok, err := acc.TryFrame()
	require.NoError(t, err)
	assert.False(t, ok)

	acc.Feed([]byte{0x02, 0x03, 0xFF})
	f, ok, err := acc.TryFrame()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(FrameHeaders), f.Type)
	assert.Equal(t, []byte{0x00, 0x01, 0x02, 0x03, 0xFF}, f.Payload)
	assert.Equal(t, 0, acc.Len())
}
