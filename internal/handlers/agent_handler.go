package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kit2552/tadka-cms-final-sub001/internal/models"
	"github.com/kit2552/tadka-cms-final-sub001/internal/pkg/logger"
)

type AgentHandler struct {
	dispatcher Dispatcher
	logger     *logger.Logger
}

// Dispatcher is the slice of the run dispatcher the HTTP layer needs.
type Dispatcher interface {
	Start(ctx context.Context, agentID string) (*models.AgentRun, error)
	Status(agentID string) (bool, error)
	LastRun(ctx context.Context, agentID string) (*models.AgentRun, error)
	GetStats() map[string]any
}

func NewAgentHandler(dispatcher Dispatcher, log *logger.Logger) *AgentHandler {
	return &AgentHandler{dispatcher: dispatcher, logger: log}
}

func (handler *AgentHandler) RunAgent(c *gin.Context) {
	agentID := c.Param("id")

	run, err := handler.dispatcher.Start(c.Request.Context(), agentID)
	if err != nil && run == nil {
		respondError(c, err)
		return
	}
	if err != nil {
		// pipeline fault: the run failed but still carries a summary
		handler.logger.WithError(err).Error("Agent run failed", "agent_id", agentID)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   err.Error(),
			"state":   run.State,
			"summary": run.Summary,
		})
		return
	}

	c.JSON(http.StatusOK, run.Summary)
}

func (handler *AgentHandler) GetAgentStatus(c *gin.Context) {
	running, err := handler.dispatcher.Status(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"is_running": running})
}

func (handler *AgentHandler) GetLastRun(c *gin.Context) {
	run, err := handler.dispatcher.LastRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (handler *AgentHandler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, handler.dispatcher.GetStats())
}
