package chatbot

import (
	"encoding/json"
	"net/http"

	"companion-ai-server/src/core/storage"
	"companion-ai-server/src/core/utils"
	"companion-ai-server/src/models"

	"github.com/gin-gonic/gin"
)

// ConfigHandler 全局配置处理器
type ConfigHandler struct {
	store  *storage.ConfigStore
	logger *utils.Logger
}

// NewConfigHandler 创建全局配置处理器
func NewConfigHandler(store *storage.ConfigStore, logger *utils.Logger) *ConfigHandler {
	return &ConfigHandler{store: store, logger: logger}
}

// RegisterRoutes 注册全局配置路由
func (h *ConfigHandler) RegisterRoutes(apiGroup *gin.RouterGroup) {
	group := apiGroup.Group("/chatbot/config")
	{
		group.GET("/get", h.GetConfig)
		group.POST("/save", h.SaveConfig)
	}
}

// GetConfig 读取全局配置
// 配置在data.config里以JSON字符串形式返回，与旧版前端的解析约定一致
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	cfg := h.store.Get()

	data, err := json.Marshal(cfg)
	if err != nil {
		h.logger.Error("序列化全局配置失败: %v", err)
		utils.DataError(c, http.StatusInternalServerError, "序列化配置失败")
		return
	}

	utils.DataSuccess(c, gin.H{"config": string(data)})
}

// SaveConfig 保存全局配置
func (h *ConfigHandler) SaveConfig(c *gin.Context) {
	var cfg models.GlobalConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		utils.DataError(c, http.StatusBadRequest, "请求参数格式错误: "+err.Error())
		return
	}

	if err := h.store.Save(&cfg); err != nil {
		h.logger.Error("保存全局配置失败: %v", err)
		utils.DataError(c, http.StatusInternalServerError, "保存配置失败")
		return
	}

	utils.DataSuccess(c, gin.H{"success": true})
}
