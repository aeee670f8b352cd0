package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"companion-ai-server/src/core/utils"
	"companion-ai-server/src/models"
)

// ErrRoleNotFound 角色不存在
var ErrRoleNotFound = errors.New("角色不存在")

// RoleStore 自定义角色文件存储
// 全部角色保存在 data/roles.json 数组中
type RoleStore struct {
	logger *utils.Logger

	dataDir string
	ttl     time.Duration

	mu       sync.Mutex
	cache    []models.CustomRole
	cachedAt time.Time
}

// NewRoleStore 创建角色存储
func NewRoleStore(dataDir string, ttl time.Duration, logger *utils.Logger) *RoleStore {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &RoleStore{
		logger:  logger,
		dataDir: dataDir,
		ttl:     ttl,
	}
}

func (s *RoleStore) rolesPath() string {
	return filepath.Join(s.dataDir, "roles.json")
}

// List 获取全部角色
func (s *RoleStore) List() []models.CustomRole {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked()
}

func (s *RoleStore) listLocked() []models.CustomRole {
	if s.cache != nil && time.Since(s.cachedAt) < s.ttl {
		return s.cache
	}

	data, err := os.ReadFile(s.rolesPath())
	if err != nil {
		if os.IsNotExist(err) {
			if err := s.saveLocked([]models.CustomRole{}); err != nil {
				s.logger.Warn("初始化角色文件失败: %v", err)
			}
			return []models.CustomRole{}
		}
		s.logger.Error("读取角色文件失败: %v", err)
		return []models.CustomRole{}
	}

	var roles []models.CustomRole
	if err := json.Unmarshal(data, &roles); err != nil {
		s.logger.Error("角色数据文件JSON格式无效: %v", err)
		return []models.CustomRole{}
	}
	if roles == nil {
		roles = []models.CustomRole{}
	}

	s.cache = roles
	s.cachedAt = time.Now()
	return roles
}

func (s *RoleStore) saveLocked(roles []models.CustomRole) error {
	data, err := json.MarshalIndent(roles, "", "  ")
	if err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(s.rolesPath(), data); err != nil {
		return err
	}
	s.cache = roles
	s.cachedAt = time.Now()
	return nil
}

// Get 按ID获取角色
func (s *RoleStore) Get(id int) (*models.CustomRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.listLocked() {
		if r.ID == id {
			role := r
			return &role, nil
		}
	}
	return nil, ErrRoleNotFound
}

// Add 添加新角色，ID取现有最大值加1
func (s *RoleStore) Add(role models.CustomRole) (*models.CustomRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roles := s.listLocked()

	maxID := 0
	for _, r := range roles {
		if r.ID > maxID {
			maxID = r.ID
		}
	}
	role.ID = maxID + 1

	if role.CustomRoleTemplateType == "" {
		role.CustomRoleTemplateType = "zh"
	}
	if role.RolePackageID == 0 {
		role.RolePackageID = -1
	}

	now := time.Now().Format(time.RFC3339)
	role.CreatedAt = now
	role.UpdatedAt = now

	roles = append(roles, role)
	if err := s.saveLocked(roles); err != nil {
		return nil, err
	}
	return &role, nil
}

// Update 更新角色，不存在时返回ErrRoleNotFound
func (s *RoleStore) Update(id int, update models.CustomRole) (*models.CustomRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roles := s.listLocked()
	for i := range roles {
		if roles[i].ID != id {
			continue
		}
		if update.RoleName != "" {
			roles[i].RoleName = update.RoleName
		}
		if update.Persona != "" {
			roles[i].Persona = update.Persona
		}
		if update.Personality != "" {
			roles[i].Personality = update.Personality
		}
		if update.Scenario != "" {
			roles[i].Scenario = update.Scenario
		}
		if update.ExamplesOfDialogue != "" {
			roles[i].ExamplesOfDialogue = update.ExamplesOfDialogue
		}
		if update.CustomRoleTemplateType != "" {
			roles[i].CustomRoleTemplateType = update.CustomRoleTemplateType
		}
		roles[i].UpdatedAt = time.Now().Format(time.RFC3339)

		if err := s.saveLocked(roles); err != nil {
			return nil, err
		}
		role := roles[i]
		return &role, nil
	}
	return nil, ErrRoleNotFound
}

// Delete 删除角色，不存在时返回ErrRoleNotFound
func (s *RoleStore) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	roles := s.listLocked()
	for i := range roles {
		if roles[i].ID == id {
			roles = append(roles[:i], roles[i+1:]...)
			return s.saveLocked(roles)
		}
	}
	return ErrRoleNotFound
}

// Invalidate 清除缓存
func (s *RoleStore) Invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.cachedAt = time.Time{}
	s.mu.Unlock()
}

// RolesFilePath 返回角色数据文件路径（调试用）
func (s *RoleStore) RolesFilePath() string {
	return s.rolesPath()
}
