package handlers

import (
	"net/http"

	"showcase/internal/apperr"
	"showcase/internal/services"
	"showcase/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projects *services.ProjectService
	log      *zap.Logger
}

func NewProjectHandler(projects *services.ProjectService, log *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, log: log}
}

// List GET /projects?year=&search=&include_private=
func (h *ProjectHandler) List(c *gin.Context) {
	year, err := utils.OptionalInt(c.Query("year"))
	if err != nil {
		respondError(c, h.log, apperr.Validation(map[string]string{"year": "must be an integer"}))
		return
	}

	// 只有管理员能在这里看到未公开项目，作者请用 /me/projects
	publicOnly := !(currentUser(c).IsAdmin() && utils.IsTruthy(c.Query("include_private")))

	projects, err := h.projects.List(c.Request.Context(), services.ListFilter{
		Year:       year,
		Search:     c.Query("search"),
		PublicOnly: publicOnly,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) Featured(c *gin.Context) {
	projects, err := h.projects.Featured(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	p, err := h.projects.GetVisible(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var in services.SubmitInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.log, err)
		return
	}
	p, err := h.projects.Submit(c.Request.Context(), currentUser(c).ID, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var in services.UpdateInput
	if err := bindJSON(c, &in); err != nil {
		respondError(c, h.log, err)
		return
	}
	p, err := h.projects.Update(c.Request.Context(), currentUser(c), id, in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.projects.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Mine GET /me/projects 我的项目
func (h *ProjectHandler) Mine(c *gin.Context) {
	projects, err := h.projects.ListMine(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}
