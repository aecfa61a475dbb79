package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleDiscover(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	profiles, err := s.explore.Discover(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// pageToken pulls the optional cursor from the query string.
func pageToken(c *gin.Context) *string {
	if token := c.Query("page_token"); token != "" {
		return &token
	}
	return nil
}

func (s *Server) handleLikedYou(c *gin.Context) {
	likers, next, err := s.explore.ListLikedYou(c.Request.Context(), c.GetString(ctxUserID), pageToken(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := gin.H{"likers": likers}
	if next != nil {
		resp["next_page_token"] = *next
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleNewLikedYou(c *gin.Context) {
	likers, next, err := s.explore.ListNewLikedYou(c.Request.Context(), c.GetString(ctxUserID), pageToken(c))
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := gin.H{"likers": likers}
	if next != nil {
		resp["next_page_token"] = *next
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleLikedYouCount(c *gin.Context) {
	count, err := s.explore.CountLikedYou(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
