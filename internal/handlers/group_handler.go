package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kit2552/tadka-cms-final-sub001/internal/models"
	"github.com/kit2552/tadka-cms-final-sub001/internal/pkg/logger"
)

type GroupHandler struct {
	groups GroupEngine
	logger *logger.Logger
}

// GroupEngine is the slice of the aggregation engine the HTTP layer needs.
type GroupEngine interface {
	CreateGroup(ctx context.Context, category, title string) (*models.Group, error)
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	ListByCategory(ctx context.Context, category string) ([]*models.Group, error)
	RenameGroup(ctx context.Context, id, newTitle string) (*models.Group, error)
	DeleteGroup(ctx context.Context, id string) error
	AddMember(ctx context.Context, category, title, recordID string) (*models.Group, error)
}

func NewGroupHandler(groups GroupEngine, log *logger.Logger) *GroupHandler {
	return &GroupHandler{groups: groups, logger: log}
}

type createGroupRequest struct {
	Category string `json:"category" binding:"required"`
	Title    string `json:"title" binding:"required"`
}

type renameGroupRequest struct {
	Title string `json:"title" binding:"required"`
}

type addMemberRequest struct {
	RecordID string `json:"record_id" binding:"required"`
}

func (handler *GroupHandler) CreateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := handler.groups.CreateGroup(c.Request.Context(), req.Category, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (handler *GroupHandler) ListGroups(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category query parameter is required"})
		return
	}

	groups, err := handler.groups.ListByCategory(c.Request.Context(), category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups, "count": len(groups)})
}

func (handler *GroupHandler) GetGroup(c *gin.Context) {
	group, err := handler.groups.GetGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (handler *GroupHandler) RenameGroup(c *gin.Context) {
	var req renameGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := handler.groups.RenameGroup(c.Request.Context(), c.Param("id"), req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (handler *GroupHandler) DeleteGroup(c *gin.Context) {
	if err := handler.groups.DeleteGroup(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (handler *GroupHandler) AddMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := handler.groups.GetGroup(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	updated, err := handler.groups.AddMember(c.Request.Context(), group.Category, group.Title, req.RecordID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
