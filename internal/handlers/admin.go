package handlers

import (
	"encoding/json"
	"net/http"

	"showcase/internal/apperr"
	"showcase/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	projects   *services.ProjectService
	moderation *services.ModerationService
	log        *zap.Logger
}

// NewAdminHandler 创建 AdminHandler 实例
func NewAdminHandler(projects *services.ProjectService, moderation *services.ModerationService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{projects: projects, moderation: moderation, log: log}
}

// SetStatus PUT /admin/projects/:id/status
// 请求体为 JSON 布尔值，也接受 {"is_public": bool}
func (h *AdminHandler) SetStatus(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	// 顺序：项目是否存在 -> 角色 -> 请求体
	if _, err := h.projects.Get(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	if !currentUser(c).IsAdmin() {
		respondError(c, h.log, apperr.Forbidden("admin role required"))
		return
	}
	isPublic, err := parseVisibility(c)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	p, err := h.moderation.SetVisibility(c.Request.Context(), currentUser(c), id, isPublic)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func parseVisibility(c *gin.Context) (bool, error) {
	raw, err := c.GetRawData()
	if err != nil || len(raw) == 0 {
		return false, apperr.Validation(map[string]string{"body": "must be a boolean"})
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, nil
	}
	var obj struct {
		IsPublic *bool `json:"is_public"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.IsPublic != nil {
		return *obj.IsPublic, nil
	}
	return false, apperr.Validation(map[string]string{"body": "must be a boolean"})
}

// Projects GET /admin/projects 待审核优先
func (h *AdminHandler) Projects(c *gin.Context) {
	projects, err := h.projects.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *AdminHandler) Stats(c *gin.Context) {
	st, err := h.projects.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *AdminHandler) DeleteProject(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.projects.AdminDelete(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
