package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	svcErr "github.com/campusmatch/campusmatch/internal/errors"
	"github.com/campusmatch/campusmatch/internal/service/account"
)

type registerRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
	Gender      string `json:"gender" binding:"required,oneof=male female"`
	Faculty     string `json:"faculty"`
	YearOfStudy int    `json:"year_of_study"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, svcErr.InvalidArgument("invalid request body"))
		return
	}

	user, err := s.accounts.Register(c.Request.Context(), account.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Gender:      req.Gender,
		Faculty:     req.Faculty,
		YearOfStudy: req.YearOfStudy,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_id": user.ID,
		"status":  user.Status,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, svcErr.InvalidArgument("invalid request body"))
		return
	}

	result, err := s.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      result.Token,
		"expires_at": result.ExpiresAt.Unix(),
		"user": gin.H{
			"id":           result.User.ID,
			"username":     result.User.Username,
			"display_name": result.User.DisplayName,
			"gender":       result.User.Gender,
			"status":       result.User.Status,
			"role":         result.User.Role,
		},
	})
}

func (s *Server) handleMe(c *gin.Context) {
	user, err := s.accounts.Get(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            user.ID,
		"username":      user.Username,
		"email":         user.Email,
		"display_name":  user.DisplayName,
		"gender":        user.Gender,
		"faculty":       user.Faculty,
		"year_of_study": user.YearOfStudy,
		"avatar_url":    user.AvatarURL,
		"status":        user.Status,
		"role":          user.Role,
	})
}

func (s *Server) handleApprove(c *gin.Context) {
	if err := s.accounts.Approve(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user approved"})
}

func (s *Server) handleSuspend(c *gin.Context) {
	if err := s.accounts.Suspend(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user suspended"})
}
