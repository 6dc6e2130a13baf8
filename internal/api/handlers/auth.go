// Package handlers implements the REST surface the browser client talks to.
package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anvil-ide/anvil/internal/crypto"
)

// AuthHandler exchanges the master secret for a client token.
type AuthHandler struct {
	jwtManager   *crypto.JWTManager
	masterSecret string
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(jwtManager *crypto.JWTManager, masterSecret string) *AuthHandler {
	return &AuthHandler{jwtManager: jwtManager, masterSecret: masterSecret}
}

type authRequest struct {
	Secret string `json:"secret" binding:"required"`
}

// PostAuth handles POST /v1/auth.
func (h *AuthHandler) PostAuth(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "secret is required"})
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.masterSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid secret"})
		return
	}

	token, err := h.jwtManager.CreateToken("client")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
