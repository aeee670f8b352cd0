package chatbot

import (
	"errors"
	"net/http"
	"strconv"

	"companion-ai-server/src/core/storage"
	"companion-ai-server/src/core/utils"
	"companion-ai-server/src/models"

	"github.com/gin-gonic/gin"
)

// RoleHandler 自定义角色处理器
type RoleHandler struct {
	store  *storage.RoleStore
	logger *utils.Logger
}

// NewRoleHandler 创建自定义角色处理器
func NewRoleHandler(store *storage.RoleStore, logger *utils.Logger) *RoleHandler {
	return &RoleHandler{store: store, logger: logger}
}

// RegisterRoutes 注册自定义角色路由
// 删除沿用旧版的POST语义
func (h *RoleHandler) RegisterRoutes(apiGroup *gin.RouterGroup) {
	group := apiGroup.Group("/chatbot/customrole")
	{
		group.GET("/list", h.ListRoles)
		group.POST("/create", h.CreateRole)
		group.GET("/detail/:id", h.GetRole)
		group.POST("/update/:id", h.UpdateRole)
		group.POST("/delete/:id", h.DeleteRole)
	}
}

// ListRoles 列出全部自定义角色
func (h *RoleHandler) ListRoles(c *gin.Context) {
	utils.LegacySuccess(c, h.store.List())
}

// CreateRole 创建自定义角色
func (h *RoleHandler) CreateRole(c *gin.Context) {
	var role models.CustomRole
	if err := c.ShouldBindJSON(&role); err != nil {
		utils.LegacyError(c, http.StatusBadRequest, "请求参数格式错误: "+err.Error())
		return
	}
	if role.RoleName == "" {
		utils.LegacyError(c, http.StatusBadRequest, "role_name不能为空")
		return
	}

	created, err := h.store.Add(role)
	if err != nil {
		h.logger.Error("创建角色失败: %v", err)
		utils.LegacyError(c, http.StatusInternalServerError, "创建角色失败")
		return
	}
	utils.LegacySuccess(c, created)
}

// GetRole 查询单个自定义角色
func (h *RoleHandler) GetRole(c *gin.Context) {
	id, ok := h.roleID(c)
	if !ok {
		return
	}

	role, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, storage.ErrRoleNotFound) {
			utils.LegacyError(c, http.StatusNotFound, "角色不存在")
			return
		}
		h.logger.Error("查询角色失败: %v", err)
		utils.LegacyError(c, http.StatusInternalServerError, "查询角色失败")
		return
	}
	utils.LegacySuccess(c, role)
}

// UpdateRole 更新自定义角色，只覆盖请求中非空的字段
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	id, ok := h.roleID(c)
	if !ok {
		return
	}

	var update models.CustomRole
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.LegacyError(c, http.StatusBadRequest, "请求参数格式错误: "+err.Error())
		return
	}

	role, err := h.store.Update(id, update)
	if err != nil {
		if errors.Is(err, storage.ErrRoleNotFound) {
			utils.LegacyError(c, http.StatusNotFound, "角色不存在")
			return
		}
		h.logger.Error("更新角色失败: %v", err)
		utils.LegacyError(c, http.StatusInternalServerError, "更新角色失败")
		return
	}
	utils.LegacySuccess(c, role)
}

// DeleteRole 删除自定义角色
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	id, ok := h.roleID(c)
	if !ok {
		return
	}

	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, storage.ErrRoleNotFound) {
			utils.LegacyError(c, http.StatusNotFound, "角色不存在")
			return
		}
		h.logger.Error("删除角色失败: %v", err)
		utils.LegacyError(c, http.StatusInternalServerError, "删除角色失败")
		return
	}
	utils.LegacySuccess(c, gin.H{"deleted": id})
}

// roleID 解析路径里的角色ID，非数字返回400
func (h *RoleHandler) roleID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.LegacyError(c, http.StatusBadRequest, "角色ID必须是数字")
		return 0, false
	}
	return id, true
}
