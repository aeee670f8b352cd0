package models

import (
	"regexp"
	"strings"
)

// Talk 单条可合成的台词：文本加声音风格参数
type Talk struct {
	Style    string  `json:"style"`
	SpeakerX float64 `json:"speakerX"`
	SpeakerY float64 `json:"speakerY"`
	Message  string  `json:"message"`
	Emotion  string  `json:"emotion,omitempty"`
}

// Screenplay 一次发声单元：台词加模型表情
// 由原始文本与情绪标签临时派生，不做持久化
type Screenplay struct {
	Expression string `json:"expression"`
	Talk       Talk   `json:"talk"`
}

// Emotions TTS支持的情绪列表
var Emotions = []string{"happy", "sad", "angry", "fearful", "disgusted", "surprised", "neutral"}

// EmotionLabel 情绪类型的中文标签映射
var EmotionLabel = map[string]string{
	"happy":     "高兴",
	"sad":       "悲伤",
	"angry":     "愤怒",
	"fearful":   "害怕",
	"disgusted": "厌恶",
	"surprised": "惊讶",
	"neutral":   "中性",
	"relaxed":   "放松",
}

// IsValidEmotion 判断情绪是否在支持列表中
func IsValidEmotion(emotion string) bool {
	for _, e := range Emotions {
		if e == emotion {
			return true
		}
	}
	return false
}

var stageTagPattern = regexp.MustCompile(`\[(.*?)\]`)

// SplitSentence 按中日文句读符号切分文本
func SplitSentence(text string) []string {
	var out []string
	var sb strings.Builder
	for _, r := range text {
		sb.WriteRune(r)
		switch r {
		case '。', '．', '！', '？', '\n':
			if s := sb.String(); s != "" {
				out = append(out, s)
			}
			sb.Reset()
		}
	}
	if s := sb.String(); s != "" {
		out = append(out, s)
	}
	return out
}

// TextsToScreenplay 将文本列表转换为发声单元列表
// 空文本会被跳过，emote为空时使用neutral
func TextsToScreenplay(texts []string, koeiro KoeiroParam, emote string) []Screenplay {
	screenplays := make([]Screenplay, 0, len(texts))

	if emote == "" {
		emote = "neutral"
	}

	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		// 去掉舞台指示标记 [xxx]
		message := stageTagPattern.ReplaceAllString(text, "")
		screenplays = append(screenplays, Screenplay{
			Expression: emote,
			Talk: Talk{
				Style:    emotionToTalkStyle(emote),
				SpeakerX: koeiro.SpeakerX,
				SpeakerY: koeiro.SpeakerY,
				Message:  message,
				Emotion:  emotionToTTSEmotion(emote),
			},
		})
	}

	return screenplays
}

func emotionToTalkStyle(emotion string) string {
	switch emotion {
	case "angry", "happy", "sad":
		return emotion
	default:
		return "talk"
	}
}

func emotionToTTSEmotion(emotion string) string {
	switch emotion {
	case "happy", "sad", "angry":
		return emotion
	default:
		return "neutral"
	}
}
