package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anvil-ide/anvil/internal/builder"
	"github.com/anvil-ide/anvil/internal/history"
	"github.com/anvil-ide/anvil/internal/toolchain"
)

// Submitter accepts build requests for orchestration.
type Submitter interface {
	Submit(project string) (string, error)
}

// BuildHistory lists past builds.
type BuildHistory interface {
	Recent(limit int) ([]history.Record, error)
}

// BuildHandler serves build submission and history.
type BuildHandler struct {
	orchestrator Submitter
	history      BuildHistory
}

// NewBuildHandler creates a build handler. history may be nil.
func NewBuildHandler(orchestrator Submitter, hist BuildHistory) *BuildHandler {
	return &BuildHandler{orchestrator: orchestrator, history: hist}
}

type buildRequest struct {
	Project string `json:"project" binding:"required"`
}

// PostBuild handles POST /v1/builds. Precondition failures surface here as
// an immediate rejection; everything after queueing arrives as notifications.
func (h *BuildHandler) PostBuild(c *gin.Context) {
	var req buildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project is required"})
		return
	}

	id, err := h.orchestrator.Submit(req.Project)
	if err != nil {
		var configErr *toolchain.ConfigError
		switch {
		case errors.Is(err, builder.ErrInvalidProject):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.As(err, &configErr):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":           configErr.Message,
				"component":       configErr.Component,
				"requiredVersion": configErr.RequiredVersion,
			})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"id": id})
}

// ListBuilds handles GET /v1/builds.
func (h *BuildHandler) ListBuilds(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusOK, gin.H{"builds": []history.Record{}})
		return
	}
	records, err := h.history.Recent(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load build history"})
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"builds": records})
}
