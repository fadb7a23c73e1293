package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sportmate/server/middleware"
	"github.com/sportmate/server/service"
)

type UserController struct {
	UserService *service.UserService

	TokenSecret []byte
	TokenTTL    time.Duration
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

func (c *UserController) Register(ctx *gin.Context) {
	var req registerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeError(ctx, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	user, err := c.UserService.Register(ctx.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	token, err := middleware.GenerateToken(user.ID, c.TokenSecret, c.TokenTTL)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"data": user, "token": token})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (c *UserController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeError(ctx, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	user, err := c.UserService.Authenticate(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	token, err := middleware.GenerateToken(user.ID, c.TokenSecret, c.TokenTTL)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": user, "token": token})
}

func (c *UserController) Me(ctx *gin.Context) {
	user, err := c.UserService.FindOneByID(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": user})
}

type updateProfileRequest struct {
	Name                *string  `json:"name"`
	Lang                *string  `json:"lang"`
	AllowsNotifications *bool    `json:"allowsNotifications"`
	PushTokens          []string `json:"pushTokens"`
}

func (c *UserController) UpdateMe(ctx *gin.Context) {
	var req updateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		writeError(ctx, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	user, err := c.UserService.UpdateProfile(ctx.Request.Context(), middleware.UserID(ctx), service.UpdateProfileInput{
		Name:                req.Name,
		Lang:                req.Lang,
		AllowsNotifications: req.AllowsNotifications,
		PushTokens:          req.PushTokens,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"data": user})
}
