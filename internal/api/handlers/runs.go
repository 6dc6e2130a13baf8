package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anvil-ide/anvil/internal/runsession"
)

// RunHandler exposes the state of the single run session.
type RunHandler struct {
	sessions *runsession.Manager
}

// NewRunHandler creates a run handler.
func NewRunHandler(sessions *runsession.Manager) *RunHandler {
	return &RunHandler{sessions: sessions}
}

// GetRun handles GET /v1/run.
func (h *RunHandler) GetRun(c *gin.Context) {
	sess := h.sessions.Active()
	if sess == nil {
		c.JSON(http.StatusOK, gin.H{"running": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"running":   sess.Running(),
		"sessionId": sess.ID,
		"startedAt": sess.StartedAt,
	})
}

// DeleteRun handles DELETE /v1/run: it kills the supervised process. The
// exit notification follows on the run-state topic.
func (h *RunHandler) DeleteRun(c *gin.Context) {
	h.sessions.Stop()
	c.JSON(http.StatusOK, gin.H{"stopped": true})
}
