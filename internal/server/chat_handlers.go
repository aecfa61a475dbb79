package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	svcErr "github.com/campusmatch/campusmatch/internal/errors"
)

func (s *Server) handleMatches(c *gin.Context) {
	summaries, err := s.chat.ListMatches(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": summaries})
}

// handleHistory returns the conversation and marks counterparty messages as
// read, same as the websocket mark_read frame would.
func (s *Server) handleHistory(c *gin.Context) {
	entries, err := s.chat.History(c.Request.Context(), c.GetString(ctxUserID), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": entries})
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// handleSendMessage is the REST fallback for clients without an open
// websocket. Delivery semantics are identical to the send_message frame.
func (s *Server) handleSendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, svcErr.InvalidArgument("invalid request body"))
		return
	}

	msg, err := s.chat.SendMessage(c.Request.Context(), c.GetString(ctxUserID), c.Param("id"), req.Content)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         msg.ID,
		"match_id":   msg.MatchID,
		"created_at": msg.CreatedAt,
	})
}
