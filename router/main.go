package router

import (
	"net/http"

	"github.com/Laisky/errors/v2"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"

	"github.com/songquanpeng/model-compare/common/config"
	"github.com/songquanpeng/model-compare/common/graceful"
	"github.com/songquanpeng/model-compare/controller"
	"github.com/songquanpeng/model-compare/middleware"
)

// Streaming routes must stay uncompressed, gzip buffers server-sent events.
var uncompressedPaths = []string{
	"/api/compare/stream",
	"/api/compare/ws",
}

func SetRouter(router *gin.Engine, ctl *controller.Controller) {
	SetApiRouter(router, ctl)
	if config.FrontendDir != "" {
		router.Use(static.Serve("/", static.LocalFile(config.FrontendDir, true)))
	}
	router.NoRoute(func(c *gin.Context) {
		middleware.AbortWithError(c, http.StatusNotFound,
			errors.Errorf("route %s %s not found", c.Request.Method, c.Request.URL.Path))
	})
}

func SetApiRouter(router *gin.Engine, ctl *controller.Controller) {
	apiRouter := router.Group("/api")
	apiRouter.Use(
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths(uncompressedPaths)),
		middleware.CORS(config.CORSAllowOrigins),
		graceful.GinRequestTracker(),
		middleware.PanicRecover(),
	)
	{
		apiRouter.GET("/status", ctl.GetStatus)

		providerRoute := apiRouter.Group("/providers")
		{
			providerRoute.GET("", ctl.ListProviders)
			providerRoute.POST("", ctl.CreateProvider)
			providerRoute.PUT("/:id", ctl.UpdateProvider)
			providerRoute.DELETE("/:id", ctl.DeleteProvider)
			providerRoute.GET("/:id/models", ctl.ListProviderModels)
		}

		slotRoute := apiRouter.Group("/slots")
		{
			slotRoute.GET("", ctl.ListSlots)
			slotRoute.POST("", ctl.AddSlot)
			slotRoute.PUT("/:id", ctl.AssignSlot)
			slotRoute.DELETE("/:id", ctl.ClearSlot)
		}

		compareRoute := apiRouter.Group("/compare")
		{
			compareRoute.GET("", ctl.GetCompare)
			compareRoute.POST("", ctl.ToggleCompare)
			compareRoute.POST("/abort", ctl.AbortCompare)
			compareRoute.GET("/stream", ctl.StreamCompare)
			compareRoute.GET("/ws", ctl.CompareWebsocket)
		}
	}
}
