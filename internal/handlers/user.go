package handlers

import (
	"net/http"

	"showcase/internal/middleware"

	"github.com/gin-gonic/gin"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Me GET /me 当前用户信息
func (h *UserHandler) Me(c *gin.Context) {
	user := currentUser(c)
	var unread int64
	if v, ok := c.Get(middleware.UnreadCountKey); ok {
		unread, _ = v.(int64)
	}
	c.JSON(http.StatusOK, gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"role":         user.Role,
		"unread_count": unread,
	})
}
