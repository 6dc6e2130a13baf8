package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anvil-ide/anvil/internal/settings"
	"github.com/anvil-ide/anvil/internal/toolchain"
)

// SettingsHandler is the surface through which the client edits toolchain
// settings. It is the only writer; the engine core reads snapshots.
type SettingsHandler struct {
	store *settings.Store
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(store *settings.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// GetSettings handles GET /v1/settings.
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// PutSettings handles PUT /v1/settings.
func (h *SettingsHandler) PutSettings(c *gin.Context) {
	var next toolchain.Settings
	if err := c.ShouldBindJSON(&next); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings payload"})
		return
	}
	if err := h.store.Update(next); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save settings"})
		return
	}
	c.JSON(http.StatusOK, h.store.Snapshot())
}
