package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lendbook/lendbook/internal/container"
	handlers "github.com/lendbook/lendbook/internal/interface/http"
	"github.com/lendbook/lendbook/internal/interface/middleware"
	"github.com/lendbook/lendbook/pkg/helpers"
)

type AnalyticsModule struct {
	Handler *handlers.AnalyticsHandler
	JWT     *helpers.JWTManager
}

func NewAnalyticsModule(h *handlers.AnalyticsHandler, jwt *helpers.JWTManager) *AnalyticsModule {
	return &AnalyticsModule{Handler: h, JWT: jwt}
}

func (m *AnalyticsModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID()))
	{
		auth.GET("/analytics", m.Handler.Summary)
		auth.GET("/rates", m.Handler.GetRates)
	}
}
