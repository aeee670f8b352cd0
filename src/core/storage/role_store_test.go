package storage

import (
	"testing"
	"time"

	"companion-ai-server/src/core/utils"
	"companion-ai-server/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRoleStore(t *testing.T) *RoleStore {
	t.Helper()
	return NewRoleStore(t.TempDir(), time.Minute, utils.NewConsoleLogger())
}

func TestRoleStoreListInitializesEmptyFile(t *testing.T) {
	store := newTestRoleStore(t)
	assert.Empty(t, store.List())
}

func TestRoleStoreAddAssignsIncrementingID(t *testing.T) {
	store := newTestRoleStore(t)

	first, err := store.Add(models.CustomRole{RoleName: "小樱"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)

	second, err := store.Add(models.CustomRole{RoleName: "小爱"})
	require.NoError(t, err)
	assert.Equal(t, 2, second.ID)

	// 删除后新增仍取最大ID加1
	require.NoError(t, store.Delete(1))
	third, err := store.Add(models.CustomRole{RoleName: "小宁"})
	require.NoError(t, err)
	assert.Equal(t, 3, third.ID)
}

func TestRoleStoreAddFillsDefaults(t *testing.T) {
	store := newTestRoleStore(t)

	role, err := store.Add(models.CustomRole{RoleName: "小樱"})
	require.NoError(t, err)

	assert.Equal(t, "zh", role.CustomRoleTemplateType)
	assert.Equal(t, -1, role.RolePackageID)
	_, err = time.Parse(time.RFC3339, role.CreatedAt)
	assert.NoError(t, err)
	assert.Equal(t, role.CreatedAt, role.UpdatedAt)
}

func TestRoleStoreGet(t *testing.T) {
	store := newTestRoleStore(t)
	created, err := store.Add(models.CustomRole{RoleName: "小樱", Persona: "温柔"})
	require.NoError(t, err)

	role, err := store.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "温柔", role.Persona)

	_, err = store.Get(999)
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestRoleStoreUpdateMergesNonEmptyFields(t *testing.T) {
	store := newTestRoleStore(t)
	created, err := store.Add(models.CustomRole{RoleName: "小樱", Persona: "温柔", Scenario: "校园"})
	require.NoError(t, err)

	updated, err := store.Update(created.ID, models.CustomRole{Persona: "活泼"})
	require.NoError(t, err)

	assert.Equal(t, "活泼", updated.Persona)
	assert.Equal(t, "小樱", updated.RoleName)
	assert.Equal(t, "校园", updated.Scenario)

	_, err = store.Update(999, models.CustomRole{RoleName: "无人"})
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestRoleStoreDelete(t *testing.T) {
	store := newTestRoleStore(t)
	created, err := store.Add(models.CustomRole{RoleName: "小樱"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(created.ID))
	assert.Empty(t, store.List())
	assert.ErrorIs(t, store.Delete(created.ID), ErrRoleNotFound)
}

func TestRoleStoreSurvivesReload(t *testing.T) {
	store := newTestRoleStore(t)
	_, err := store.Add(models.CustomRole{RoleName: "小樱"})
	require.NoError(t, err)

	store.Invalidate()
	roles := store.List()
	require.Len(t, roles, 1)
	assert.Equal(t, "小樱", roles[0].RoleName)
}
