package chatbot

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"companion-ai-server/src/core/storage"
	"companion-ai-server/src/core/utils"
	"companion-ai-server/src/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoleTestRouter(t *testing.T) (*gin.Engine, *storage.RoleStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := storage.NewRoleStore(t.TempDir(), time.Minute, utils.NewConsoleLogger())

	engine := gin.New()
	NewRoleHandler(store, utils.NewConsoleLogger()).RegisterRoutes(engine.Group("/api/v1"))
	return engine, store
}

func doJSON(engine *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCreateRoleRequiresName(t *testing.T) {
	engine, _ := newRoleTestRouter(t)

	w := doJSON(engine, http.MethodPost, "/api/v1/chatbot/customrole/create",
		gin.H{"persona": "没有名字"})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp utils.LegacyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateAndListRoles(t *testing.T) {
	engine, _ := newRoleTestRouter(t)

	w := doJSON(engine, http.MethodPost, "/api/v1/chatbot/customrole/create",
		gin.H{"role_name": "小樱", "persona": "温柔"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(engine, http.MethodGet, "/api/v1/chatbot/customrole/list", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code     int `json:"code"`
		Response []struct {
			ID       int    `json:"id"`
			RoleName string `json:"role_name"`
		} `json:"response"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 200, resp.Code)
	require.Len(t, resp.Response, 1)
	assert.Equal(t, 1, resp.Response[0].ID)
	assert.Equal(t, "小樱", resp.Response[0].RoleName)
}

func TestGetRoleInvalidID(t *testing.T) {
	engine, _ := newRoleTestRouter(t)

	w := doJSON(engine, http.MethodGet, "/api/v1/chatbot/customrole/detail/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRoleNotFound(t *testing.T) {
	engine, _ := newRoleTestRouter(t)

	w := doJSON(engine, http.MethodGet, "/api/v1/chatbot/customrole/detail/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteRoleUsesPost(t *testing.T) {
	engine, store := newRoleTestRouter(t)
	created, err := store.Add(roleWithName("小樱"))
	require.NoError(t, err)

	w := doJSON(engine, http.MethodPost, "/api/v1/chatbot/customrole/delete/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	_, err = store.Get(created.ID)
	assert.ErrorIs(t, err, storage.ErrRoleNotFound)
}

func roleWithName(name string) models.CustomRole {
	return models.CustomRole{RoleName: name}
}

func TestUpdateRole(t *testing.T) {
	engine, store := newRoleTestRouter(t)
	_, err := store.Add(roleWithName("小樱"))
	require.NoError(t, err)

	w := doJSON(engine, http.MethodPost, "/api/v1/chatbot/customrole/update/1",
		gin.H{"persona": "新设定"})
	require.Equal(t, http.StatusOK, w.Code)

	role, err := store.Get(1)
	require.NoError(t, err)
	assert.Equal(t, "新设定", role.Persona)
	assert.Equal(t, "小樱", role.RoleName)
}
