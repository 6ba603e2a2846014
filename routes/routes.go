// Package routes 注册 HTTP 路由
//
// 结构:
// - routes.go: SetupAllRoutes 入口与中间件
// - api.go: API 路由 (/api/v1/*)
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Sin9ular37/Address-MatchMaster/app/controllers"
)

// SetupAllRoutes 注册所有路由
func SetupAllRoutes(router *gin.Engine, matchController *controllers.MatchController) {
	setupMiddleware(router)

	SetupAPIRoutes(router, matchController)
	SetupHealthRoutes(router, matchController)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "Route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

func setupMiddleware(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
}
