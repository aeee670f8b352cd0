package media

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMP3TruncatesLeadingGarbage(t *testing.T) {
	garbage := []byte{0x00, 0x11, 0x22}
	payload := append([]byte{0xFF, 0xFB, 0x90, 0x44}, bytes.Repeat([]byte{0xAA}, 64)...)

	out := NormalizeMP3(append(garbage, payload...))

	require.GreaterOrEqual(t, len(out), 2)
	assert.Equal(t, byte(0xFF), out[0])
	assert.Equal(t, byte(0xFB), out[1])
	assert.Equal(t, payload, out)
}

func TestNormalizeMP3AcceptsAlternateSyncBytes(t *testing.T) {
	for _, second := range []byte{0xFB, 0xF3, 0xF2} {
		data := append([]byte{0x01, 0xFF, second}, bytes.Repeat([]byte{0xBB}, 64)...)
		out := NormalizeMP3(data)
		assert.Equal(t, byte(0xFF), out[0])
		assert.Equal(t, second, out[1])
	}
}

func TestNormalizeMP3SynthesizesHeaderWhenMissing(t *testing.T) {
	raw := bytes.Repeat([]byte{0x10}, 64)

	out := NormalizeMP3(raw)

	// 补上标准帧头，尾部追加静音块
	assert.Equal(t, frameHeader, out[:4])
	assert.Equal(t, silenceBlock, out[len(out)-len(silenceBlock):])
	assert.Equal(t, raw, out[4:4+len(raw)])
}

func TestNormalizeMP3PadsShortData(t *testing.T) {
	out := NormalizeMP3([]byte{0xFF, 0xFB})
	assert.GreaterOrEqual(t, len(out), 32)
}

func TestNormalizeMP3EmptyInputFallsBackToSilence(t *testing.T) {
	out := NormalizeMP3(nil)
	assert.Equal(t, SilentMP3(), out)
}

func TestNormalizeMP3KeepsCleanData(t *testing.T) {
	clean := append([]byte{0xFF, 0xFB, 0x90, 0x44}, bytes.Repeat([]byte{0xCC}, 100)...)
	assert.Equal(t, clean, NormalizeMP3(clean))
}

func TestSilentMP3(t *testing.T) {
	clip := SilentMP3()
	assert.Len(t, clip, 44)
	assert.Equal(t, frameHeader, clip[:4])
}

func TestDurationRejectsGarbage(t *testing.T) {
	_, err := Duration([]byte("这不是MP3"))
	assert.Error(t, err)
}

func TestFindSyncOffset(t *testing.T) {
	assert.Equal(t, 0, findSyncOffset([]byte{0xFF, 0xFB, 0x00}))
	assert.Equal(t, 3, findSyncOffset([]byte{0x00, 0x00, 0x00, 0xFF, 0xF3}))
	assert.Equal(t, -1, findSyncOffset([]byte{0x00, 0xFF, 0x00, 0xFF}))

	// 超出扫描范围的同步头不算
	far := append(bytes.Repeat([]byte{0x00}, 300), 0xFF, 0xFB)
	assert.Equal(t, -1, findSyncOffset(far))
}
