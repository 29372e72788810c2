package internal

import (
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	docs "github.com/dsnakex/Dashboard-ELN/docs"
	"github.com/dsnakex/Dashboard-ELN/internal/handler"
	"github.com/dsnakex/Dashboard-ELN/internal/middleware"
	"github.com/dsnakex/Dashboard-ELN/pkg/monitor"
)

const apiPrefix = "/v1"

type Backend struct {
	R *gin.Engine
}

// Register builds the gin engine with every route group mounted.
func Register(conf *handler.RegisterConfig) *Backend {
	s := new(Backend)
	s.R = gin.Default()
	s.R.Use(monitor.RequestMetrics())

	// health check for the load balancer
	s.R.GET("/v1/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "ok",
		})
	})
	s.registerService(conf)

	docs.SwaggerInfo.BasePath = "/"
	s.R.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return s
}

func (b *Backend) registerService(conf *handler.RegisterConfig) {
	// Enable CORS for http://localhost:XXXX in debug mode
	if gin.Mode() == gin.DebugMode {
		fe := os.Getenv("ELN_FE_PORT")
		if fe != "" {
			url := "http://localhost:" + fe
			corsConf := cors.DefaultConfig()
			corsConf.AllowOrigins = []string{url}
			corsConf.AllowHeaders = append(corsConf.AllowHeaders, "Authorization")
			b.R.Use(cors.New(corsConf))
		}
	}

	managers := registerManagers(conf)

	publicRouter := b.R.Group(apiPrefix)

	protectedRouter := b.R.Group(apiPrefix)
	protectedRouter.Use(middleware.AuthProtected())

	adminRouter := b.R.Group(apiPrefix + "/admin")
	adminRouter.Use(middleware.AuthProtected(), middleware.AuthAdmin())

	for _, mgr := range managers {
		name := "/" + mgr.GetName()
		mgr.RegisterPublic(publicRouter.Group(name))
		mgr.RegisterProtected(protectedRouter.Group(name))
		mgr.RegisterAdmin(adminRouter.Group(name))
	}
}
