package handler

import (
	"net/http"

	"bloodlink/internal/middleware"
	"bloodlink/internal/usecase/account"
	"bloodlink/pkg/utils"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service *account.Service
}

func NewAuthHandler(service *account.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}
}

func (h *AuthHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.GET("/me", h.Me)
		auth.PUT("/complete-profile", h.CompleteProfile)
		auth.POST("/logout", h.Logout)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req account.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = utils.SanitizeString(req.Name)
	req.Phone = utils.SanitizePhone(req.Phone)

	authResponse, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "User registered successfully", authResponse)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req account.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = utils.SanitizeEmail(req.Email)

	authResponse, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Login successful", authResponse)
}

func (h *AuthHandler) Me(c *gin.Context) {
	current, ok := currentAccount(c)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), current.ID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", profile)
}

func (h *AuthHandler) CompleteProfile(c *gin.Context) {
	current, ok := currentAccount(c)
	if !ok {
		return
	}

	var req account.CompleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Phone = utils.SanitizePhone(req.Phone)

	profile, err := h.service.CompleteProfile(c.Request.Context(), current.ID, &req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Profile completed successfully", profile)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.service.Logout(c.Request.Context(), claims); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Logged out successfully", nil)
}
