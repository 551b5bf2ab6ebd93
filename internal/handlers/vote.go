package handlers

import (
	"net/http"

	"showcase/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VoteHandler struct {
	votes *services.VoteService
	log   *zap.Logger
}

func NewVoteHandler(votes *services.VoteService, log *zap.Logger) *VoteHandler {
	return &VoteHandler{votes: votes, log: log}
}

// Vote POST /projects/:id/vote 首次点赞 201，重复点赞 409
func (h *VoteHandler) Vote(c *gin.Context) {
	projectID, err := paramUUID(c, "id")
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	res, err := h.votes.CastVote(c.Request.Context(), currentUser(c).ID, projectID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"voted_at":   res.Vote.VotedAt,
		"like_count": res.LikeCount,
	})
}
