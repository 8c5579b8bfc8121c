package handlers

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.Engine, agents *AgentHandler, groups *GroupHandler, health gin.HandlerFunc) {
	router.GET("/health", health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/agents/:id/run", agents.RunAgent)
		v1.GET("/agents/:id/status", agents.GetAgentStatus)
		v1.GET("/agents/:id/last-run", agents.GetLastRun)
		v1.GET("/stats", agents.GetStats)

		v1.POST("/groups", groups.CreateGroup)
		v1.GET("/groups", groups.ListGroups)
		v1.GET("/groups/:id", groups.GetGroup)
		v1.PUT("/groups/:id", groups.RenameGroup)
		v1.DELETE("/groups/:id", groups.DeleteGroup)
		v1.POST("/groups/:id/add-member", groups.AddMember)
	}
}
