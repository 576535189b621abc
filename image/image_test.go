package image_test

import (
	"bytes"
	"testing"

	"github.com/oconnor-ryan/ryvm-go/image"
	"github.com/oconnor-ryan/ryvm-go/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResolved() *resolver.Resolved {
	return &resolver.Resolved{
		MaxStackSize: 64,
		Data:         []byte("hi\x00"),
		Text:         []byte{0x01, 0x02, 0x03, 0x04},
		Relocations: []resolver.Relocation{
			{Hole: 7, Value: 0},
		},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	res := sampleResolved()
	var buf bytes.Buffer
	require.NoError(t, image.Write(&buf, res))

	loaded, err := image.Read(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, 64, loaded.MaxStackSize)
	assert.EqualValues(t, 3, loaded.DataSize)
	assert.EqualValues(t, 4, loaded.TextSize)
	assert.Equal(t, "hi\x00", string(loaded.Arena[:3]))
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, loaded.Arena[3:7])
	assert.EqualValues(t, 7+64, loaded.StackTop())
	assert.Len(t, loaded.Arena[7:], 64)
}

func TestRelocationIsAppliedAsArenaRelativeOffset(t *testing.T) {
	res := sampleResolved()
	res.Relocations = []resolver.Relocation{{Hole: 3, Value: 0}}
	var buf bytes.Buffer
	require.NoError(t, image.Write(&buf, res))

	loaded, err := image.Read(&buf)
	require.NoError(t, err)
	v, err := loaded.At(3, 8)
	require.NoError(t, err)
	assert.EqualValues(t, 0, v)
}

func TestReadRejectsBadMagic(t *testing.T) {
	_, err := image.Read(bytes.NewReader([]byte("XX\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "magic")
}

func TestReadRejectsTruncatedImage(t *testing.T) {
	_, err := image.Read(bytes.NewReader([]byte("RY")))
	require.Error(t, err)
}

func TestArenaAccessorBoundsChecks(t *testing.T) {
	loaded := &image.Loaded{Arena: make([]byte, 4)}
	_, err := loaded.At(2, 4)
	assert.Error(t, err, "address 2 + width 4 overruns a 4-byte arena")

	err = loaded.Set(0, 4, 0xDEADBEEF)
	require.NoError(t, err)
	v, err := loaded.At(0, 4)
	require.NoError(t, err)
	assert.EqualValues(t, 0xDEADBEEF, v)
}

func TestEntryPointIsDataSize(t *testing.T) {
	loaded := &image.Loaded{DataSize: 12}
	assert.EqualValues(t, 12, loaded.EntryPoint())
}
