package media

import (
	"bytes"
	"fmt"
	"time"

	"github.com/hajimehoshi/go-mp3"
)

// 扫描帧同步头的范围，超过这个范围仍没有同步头就按裸数据处理
const syncScanLimit = 200

// 标准MPEG1 Layer3帧头：44.1kHz、128kbps、单声道
var frameHeader = []byte{0xFF, 0xFB, 0x90, 0x44}

// 静音填充块，追加在疑似截断的数据尾部避免解码器读穿
var silenceBlock = []byte{
	0xFF, 0xFB, 0x90, 0x44, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// findSyncOffset 在前syncScanLimit字节内找MP3帧同步头
// 返回偏移量，找不到返回-1
func findSyncOffset(data []byte) int {
	limit := len(data)
	if limit > syncScanLimit {
		limit = syncScanLimit
	}
	for i := 0; i+1 < limit; i++ {
		if data[i] != 0xFF {
			continue
		}
		switch data[i+1] {
		case 0xFB, 0xF3, 0xF2:
			return i
		}
	}
	return -1
}

// NormalizeMP3 修复合成后端返回的畸形MP3数据
// 同步头前的杂质字节被截掉；完全没有同步头时补上标准帧头并追加静音块；
// 过短的数据也用静音块垫起，保证播放端拿到的始终是可解码的流
func NormalizeMP3(data []byte) []byte {
	if len(data) == 0 {
		return SilentMP3()
	}

	offset := findSyncOffset(data)
	switch {
	case offset > 0:
		data = data[offset:]
	case offset < 0:
		fixed := make([]byte, 0, len(frameHeader)+len(data)+len(silenceBlock))
		fixed = append(fixed, frameHeader...)
		fixed = append(fixed, data...)
		fixed = append(fixed, silenceBlock...)
		data = fixed
	}

	for len(data) < 32 {
		data = append(data, silenceBlock...)
	}
	return data
}

// SilentMP3 返回一段极短的静音MP3，作为合成失败时的兜底音频
func SilentMP3() []byte {
	out := make([]byte, 44)
	copy(out, frameHeader)
	return out
}

// Duration 解码MP3并计算播放时长，驱动播放结束回调的定时器
func Duration(data []byte) (time.Duration, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("MP3解码失败: %v", err)
	}
	sampleRate := dec.SampleRate()
	if sampleRate <= 0 {
		return 0, fmt.Errorf("MP3采样率异常: %d", sampleRate)
	}
	// 解码输出为16bit双声道PCM，每个采样4字节
	seconds := float64(dec.Length()) / float64(sampleRate*4)
	return time.Duration(seconds * float64(time.Second)), nil
}
