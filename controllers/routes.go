package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DuaShare/metrics"
	"github.com/DuaShare/middlewares"
)

// Routes bundles what RegisterRoutes needs to mount the API.
type Routes struct {
	Prayers  *PrayerController
	Admin    *AdminController
	Sessions middlewares.SessionValidator
	Limiter  *middlewares.RateLimiter
}

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func RegisterRoutes(router *gin.Engine, r Routes) {
	limit := r.Limiter.RateLimitMiddleware
	key := middlewares.RouteClientKey

	router.GET("/ping", Ping)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	api.Use(middlewares.CheckAuth(r.Sessions))
	{
		api.GET("/categories", GetCategories)

		api.GET("/prayers", r.Prayers.GetPrayers)
		api.POST("/prayers", limit(5, 10, key), r.Prayers.CreatePrayer)
		api.GET("/prayers/:id", r.Prayers.GetPrayer)
		api.POST("/prayers/:id/ameen", limit(5, 10, key), r.Prayers.AmeenPrayer)

		api.POST("/admin/login", limit(2, 2, key), r.Admin.Login)
		api.GET("/admin/status", r.Admin.Status)
		api.POST("/admin/logout", r.Admin.Logout)

		admin := api.Group("/admin")
		admin.Use(middlewares.CheckAdmin)
		{
			admin.GET("/prayers", r.Admin.GetPrayers)
			admin.PATCH("/prayers/:id", r.Admin.UpdatePrayer)
			admin.DELETE("/prayers/:id", r.Admin.DeletePrayer)
		}
	}
}
