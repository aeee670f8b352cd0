package media

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"companion-ai-server/src/core/utils"
)

// TempStore 合成音频的临时文件存放区
// 文件名由内容哈希决定，同样的音频不会重复落盘
type TempStore struct {
	dir       string
	urlPrefix string
	logger    *utils.Logger
}

// NewTempStore 创建临时音频存放区，目录不存在时自动建立
func NewTempStore(dir, urlPrefix string, logger *utils.Logger) (*TempStore, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("创建临时音频目录失败: %v", err)
	}
	return &TempStore{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		logger:    logger,
	}, nil
}

// WriteMP3 落盘一段MP3并返回其访问URL与磁盘路径
func (s *TempStore) WriteMP3(data []byte) (url string, path string, err error) {
	sum := md5.Sum(data)
	name := "tts_" + hex.EncodeToString(sum[:]) + ".mp3"
	path = filepath.Join(s.dir, name)

	if _, statErr := os.Stat(path); statErr != nil {
		if err = os.WriteFile(path, data, 0644); err != nil {
			return "", "", fmt.Errorf("写入临时音频失败: %v", err)
		}
	}
	return s.urlPrefix + "/" + name, path, nil
}

// Resolve 把临时文件名换算为磁盘路径，拒绝目录穿越
func (s *TempStore) Resolve(name string) (string, bool) {
	if name == "" || name != filepath.Base(name) {
		return "", false
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// Sweep 清理超过maxAge的临时音频，返回删除数量
func (s *TempStore) Sweep(maxAge time.Duration) int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("扫描临时音频目录失败: %v", err)
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			s.logger.Warn("删除临时音频失败: %s, %v", entry.Name(), err)
			continue
		}
		removed++
	}
	if removed > 0 {
		s.logger.Info("清理临时音频%d个", removed)
	}
	return removed
}
