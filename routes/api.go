package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Sin9ular37/Address-MatchMaster/app/controllers"
)

// SetupAPIRoutes 注册 API v1 路由
func SetupAPIRoutes(router *gin.Engine, matchController *controllers.MatchController) {
	v1 := router.Group("/api/v1")
	{
		v1.POST("/match", matchController.Match)
		v1.POST("/match/batch", matchController.BatchMatch)
		v1.GET("/stats", matchController.Stats)
		v1.GET("/health", matchController.HealthCheck)
	}
}

// SetupHealthRoutes 注册根级健康检查路由
func SetupHealthRoutes(router *gin.Engine, matchController *controllers.MatchController) {
	router.GET("/health", matchController.HealthCheck)
	router.GET("/ready", matchController.HealthCheck)
	router.GET("/live", matchController.HealthCheck)
}
