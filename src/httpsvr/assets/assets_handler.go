package assets

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"companion-ai-server/src/core/utils"

	"github.com/gin-gonic/gin"
)

// 资源文件名主干的最大长度，超长部分截断
const maxFilenameBase = 45

// 各分类的上传大小上限
var sizeLimits = map[string]int64{
	"background": 10 << 20,
	"vrm":        50 << 20,
	"animation":  50 << 20,
}

// AssetFile 资源文件描述
type AssetFile struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
	Category string `json:"category"`
}

// Handler 静态资源处理器
// 背景图、VRM模型与动作文件都放在public/assets下按分类分目录
type Handler struct {
	assetsDir string
	logger    *utils.Logger
}

// NewHandler 创建静态资源处理器
func NewHandler(publicDir string, logger *utils.Logger) *Handler {
	return &Handler{
		assetsDir: filepath.Join(publicDir, "assets"),
		logger:    logger,
	}
}

// RegisterRoutes 注册静态资源路由
func (h *Handler) RegisterRoutes(apiGroup *gin.RouterGroup) {
	apiGroup.GET("/assets", h.ScanAssets)

	for category := range sizeLimits {
		group := apiGroup.Group("/assets/" + category)
		group.GET("", h.listHandler(category))
		group.POST("", h.uploadHandler(category))
		group.DELETE("/:filename", h.deleteHandler(category))
	}
}

// ScanAssets 全量扫描所有分类的资源
func (h *Handler) ScanAssets(c *gin.Context) {
	result := make(map[string][]AssetFile)
	for category := range sizeLimits {
		result[category] = h.scanCategory(category)
	}
	utils.DataSuccess(c, result)
}

func (h *Handler) listHandler(category string) gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.DataSuccess(c, h.scanCategory(category))
	}
}

// scanCategory 扫描单个分类目录，动作分类多一层子目录
func (h *Handler) scanCategory(category string) []AssetFile {
	root := filepath.Join(h.assetsDir, category)
	files := make([]AssetFile, 0)

	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(h.assetsDir, path)
		if err != nil {
			return nil
		}
		files = append(files, AssetFile{
			Name:     info.Name(),
			URL:      "/assets/" + filepath.ToSlash(rel),
			Size:     info.Size(),
			Category: category,
		})
		return nil
	})

	return files
}

func (h *Handler) uploadHandler(category string) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			utils.DataError(c, http.StatusBadRequest, "缺少上传文件")
			return
		}

		limit := sizeLimits[category]
		if file.Size > limit {
			utils.DataError(c, http.StatusBadRequest,
				fmt.Sprintf("文件超过大小限制: %dMB", limit>>20))
			return
		}

		name := utils.TruncateFilename(filepath.Base(file.Filename), maxFilenameBase)

		dir := filepath.Join(h.assetsDir, category)
		// 动作文件按来源分类再放一层子目录
		if category == "animation" {
			if sub := c.PostForm("category"); sub != "" && sub == filepath.Base(sub) {
				dir = filepath.Join(dir, sub)
			}
		}
		if err := utils.EnsureDir(dir); err != nil {
			h.logger.Error("创建资源目录失败: %v", err)
			utils.DataError(c, http.StatusInternalServerError, "保存文件失败")
			return
		}

		dst := filepath.Join(dir, name)
		// 重名文件不覆盖，加随机后缀
		if _, err := os.Stat(dst); err == nil {
			ext := filepath.Ext(name)
			base := strings.TrimSuffix(name, ext)
			name = base + "_" + utils.GenerateRandomKeyWithNanoid(6) + ext
			dst = filepath.Join(dir, name)
		}
		if err := c.SaveUploadedFile(file, dst); err != nil {
			h.logger.Error("保存上传文件失败: %v", err)
			utils.DataError(c, http.StatusInternalServerError, "保存文件失败")
			return
		}

		rel, _ := filepath.Rel(h.assetsDir, dst)
		h.logger.Info("资源上传成功: %s", rel)
		utils.DataSuccess(c, AssetFile{
			Name:     name,
			URL:      "/assets/" + filepath.ToSlash(rel),
			Size:     file.Size,
			Category: category,
		})
	}
}

func (h *Handler) deleteHandler(category string) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("filename")
		if name == "" || name != filepath.Base(name) {
			utils.DataError(c, http.StatusBadRequest, "非法文件名")
			return
		}

		// 内置资源不允许删除
		if strings.HasPrefix(strings.ToLower(name), "default") {
			utils.DataError(c, http.StatusForbidden, "内置资源不允许删除")
			return
		}

		path := filepath.Join(h.assetsDir, category, name)
		if _, err := os.Stat(path); err != nil {
			utils.DataError(c, http.StatusNotFound, "文件不存在")
			return
		}

		if err := os.Remove(path); err != nil {
			h.logger.Error("删除资源失败: %v", err)
			utils.DataError(c, http.StatusInternalServerError, "删除文件失败")
			return
		}

		h.logger.Info("资源已删除: %s/%s", category, name)
		utils.DataSuccess(c, gin.H{"deleted": name})
	}
}
