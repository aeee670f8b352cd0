package chatpage

import (
	"net/http"

	"companion-ai-server/src/core/chat"
	"companion-ai-server/src/core/utils"

	"github.com/gin-gonic/gin"
)

// EditRequest 改写对话记录请求参数
type EditRequest struct {
	Index   int    `json:"index"`
	Content string `json:"content"`
}

// Handler 对话记录处理器
type Handler struct {
	transcript *chat.Transcript
	logger     *utils.Logger
}

// NewHandler 创建对话记录处理器
func NewHandler(transcript *chat.Transcript, logger *utils.Logger) *Handler {
	return &Handler{transcript: transcript, logger: logger}
}

// RegisterRoutes 注册对话记录路由
func (h *Handler) RegisterRoutes(apiGroup *gin.RouterGroup) {
	group := apiGroup.Group("/chat")
	{
		group.GET("/history", h.History)
		group.POST("/message/edit", h.EditMessage)
		group.POST("/clear", h.Clear)
	}
}

// History 返回当前会话的全部消息
func (h *Handler) History(c *gin.Context) {
	utils.LegacySuccess(c, h.transcript.Messages())
}

// EditMessage 改写指定下标的消息内容
func (h *Handler) EditMessage(c *gin.Context) {
	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LegacyError(c, http.StatusBadRequest, "请求参数格式错误: "+err.Error())
		return
	}
	if req.Index < 0 || req.Index >= h.transcript.Len() {
		utils.LegacyError(c, http.StatusBadRequest, "消息下标越界")
		return
	}

	h.transcript.EditAt(req.Index, req.Content)
	utils.LegacySuccess(c, gin.H{"index": req.Index})
}

// Clear 清空当前会话
func (h *Handler) Clear(c *gin.Context) {
	h.transcript.Clear()
	h.logger.Info("对话记录已清空")
	utils.LegacySuccess(c, gin.H{"cleared": true})
}
