package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// EnsureDir 确保目录存在，如果不存在则创建
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("创建目录失败: %v", err)
	}
	return nil
}

// WriteFileAtomic 原子写入文件：先写临时文件，备份旧文件，再重命名替换
// 保证写入失败时原文件不被破坏
func WriteFileAtomic(path string, data []byte) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("写入临时文件失败: %v", err)
	}

	// 如果原文件存在，则备份
	if _, err := os.Stat(path); err == nil {
		if err := CopyFile(path, path+".bak"); err != nil {
			return fmt.Errorf("备份原文件失败: %v", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("替换文件失败: %v", err)
	}
	return nil
}

// CopyFile 复制文件内容
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// TruncateFilename 截断过长的文件名，保留扩展名
// 截断点落在多字节字符中间时向前回退，不产生非法UTF-8
func TruncateFilename(name string, maxBase int) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if len(base) > maxBase {
		cut := maxBase
		for cut > 0 && !utf8.RuneStart(base[cut]) {
			cut--
		}
		base = base[:cut]
	}
	return base + ext
}
