package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mlefebvre/spamguard/internal/auth"
	"github.com/mlefebvre/spamguard/internal/core"
	"github.com/mlefebvre/spamguard/internal/validate"
)

type authHandler struct {
	store  core.Store
	jwt    *auth.JWTManager
	logger *zap.Logger
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *authHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request body required")
		return
	}
	if err := validate.Name(req.Name); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := validate.Email(req.Email); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := validate.Password(req.Password); err != nil {
		badRequest(c, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("Failed to hash password", zap.Error(err))
		internalError(c)
		return
	}

	user := &core.User{Name: req.Name, Email: req.Email, PasswordHash: hash}
	if err := h.store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, core.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		h.logger.Error("Failed to create user", zap.Error(err))
		internalError(c)
		return
	}

	token, err := h.jwt.GenerateToken(user.ID)
	if err != nil {
		h.logger.Error("Failed to generate token", zap.Error(err))
		internalError(c)
		return
	}

	h.logger.Info("Registered user", zap.Int64("user_id", user.ID))
	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  userResponse{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

func (h *authHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "request body required")
		return
	}

	user, err := h.store.UserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			unauthorized(c)
			return
		}
		h.logger.Error("Failed to look up user", zap.Error(err))
		internalError(c)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		unauthorized(c)
		return
	}

	token, err := h.jwt.GenerateToken(user.ID)
	if err != nil {
		h.logger.Error("Failed to generate token", zap.Error(err))
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userResponse{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

func (h *authHandler) me(c *gin.Context) {
	user, err := h.store.UserByID(c.Request.Context(), currentUserID(c))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			notFound(c, "user not found")
			return
		}
		h.logger.Error("Failed to look up user", zap.Error(err))
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": userResponse{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}

// logout is a stateless acknowledgment; tokens stay valid until they expire
// and clients simply discard theirs.
func (h *authHandler) logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
