package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	svcErr "github.com/campusmatch/campusmatch/internal/errors"
)

type swipeRequest struct {
	SwipedID string `json:"swiped_id" binding:"required"`
	IsLike   *bool  `json:"is_like" binding:"required"`
}

func (s *Server) handleSwipe(c *gin.Context) {
	var req swipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, svcErr.InvalidArgument("invalid request body"))
		return
	}

	result, err := s.swipes.PutSwipe(c.Request.Context(), currentUser(c), req.SwipedID, *req.IsLike)
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := gin.H{"is_match": result.IsMatch}
	if result.Match != nil {
		resp["match_id"] = result.Match.ID
	}
	c.JSON(http.StatusOK, resp)
}

type blockRequest struct {
	BlockedID string `json:"blocked_id" binding:"required"`
}

func (s *Server) handleBlock(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, svcErr.InvalidArgument("invalid request body"))
		return
	}

	if err := s.swipes.Block(c.Request.Context(), currentUser(c), req.BlockedID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user blocked"})
}
