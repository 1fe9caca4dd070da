package api

import (
	"codebeyond/cmd/middleware"
	"codebeyond/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"
)

type Routers struct {
	Service    service.Service
	AdminToken string
	Log        *zerolog.Logger
	Mode       string
}

func NewRouters(r *Routers) *ginext.Engine {
	mode := r.Mode
	if mode == "" {
		mode = "release"
	}
	app := ginext.New(mode)

	app.Use(middleware.LoggingMiddleware(r.Log))
	app.Use(cors.New(corsConfig()))
	apiGroup := app.Group("/v1")

	apiGroup.POST("/participants", r.Service.Register)
	apiGroup.GET("/participants/:id", r.Service.Status)

	admin := apiGroup.Group("/admin", middleware.AdminGuard(r.AdminToken))

	admin.POST("/participants/reload", r.Service.Reload)
	admin.GET("/participants", r.Service.List)
	admin.GET("/participants/export", r.Service.Export)
	admin.GET("/summary", r.Service.Summary)
	admin.POST("/participants/:id/approve", r.Service.Approve)
	admin.POST("/participants/:id/reject", r.Service.Reject)
	admin.PATCH("/participants/:id", r.Service.Update)
	admin.DELETE("/participants/:id", r.Service.Delete)
	admin.POST("/participants/bulk/approve", r.Service.BulkApprove)
	admin.POST("/participants/bulk/reject", r.Service.BulkReject)
	admin.POST("/participants/bulk/delete", r.Service.BulkDelete)

	admin.GET("/selection", r.Service.Selection)
	admin.POST("/selection", r.Service.Select)
	admin.POST("/selection/filtered", r.Service.SelectFiltered)
	admin.DELETE("/selection", r.Service.Deselect)

	return app
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AddAllowHeaders("Authorization", "X-Reviewer")
	cfg.AddExposeHeaders("Content-Disposition")
	cfg.AddAllowMethods("PATCH", "DELETE")
	return cfg
}
