package handlers

import (
	"net/http"

	"showcase/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	comments *services.CommentService
	log      *zap.Logger
}

func NewCommentHandler(comments *services.CommentService, log *zap.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, log: log}
}

type commentRequest struct {
	Body string `json:"body"`
}

func (h *CommentHandler) List(c *gin.Context) {
	projectID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	comments, err := h.comments.ListComments(c.Request.Context(), currentUser(c), projectID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) Create(c *gin.Context) {
	projectID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	var req commentRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, h.log, err)
		return
	}
	user := currentUser(c)
	res, err := h.comments.AddComment(c.Request.Context(), user.ID, projectID, req.Body)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	res.Comment.AuthorEmail = user.Email
	c.JSON(http.StatusCreated, res.Comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	id, err := paramUint(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.comments.DeleteComment(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
