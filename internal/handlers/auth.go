package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ristomkd/LibraryNetwork/internal/middleware"
	"github.com/ristomkd/LibraryNetwork/internal/models"
	"github.com/ristomkd/LibraryNetwork/internal/services"
)

type AuthHandler struct {
	userService *services.UserService
}

func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, user, "Registration successful")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, response, "Login successful")
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	response, err := h.userService.RefreshTokens(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, response, "Token refreshed")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req models.RefreshTokenRequest
	// The refresh token is optional on logout; the access token always goes.
	_ = c.ShouldBindJSON(&req)

	accessToken := middleware.GetAccessToken(c)
	if err := h.userService.Logout(c.Request.Context(), accessToken, req.RefreshToken); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, nil, "Logged out")
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), caller.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, user, "")
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), caller, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, user, "Profile updated")
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "MISSING_CALLER", "Caller not found in context")
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), caller.UserID, req); err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, nil, "Password changed")
}
