package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lendbook/lendbook/internal/container"
	handlers "github.com/lendbook/lendbook/internal/interface/http"
	"github.com/lendbook/lendbook/internal/interface/middleware"
	"github.com/lendbook/lendbook/pkg/helpers"
)

type BillingModule struct {
	Handler *handlers.BillingHandler
	JWT     *helpers.JWTManager
}

func NewBillingModule(h *handlers.BillingHandler, jwt *helpers.JWTManager) *BillingModule {
	return &BillingModule{Handler: h, JWT: jwt}
}

func (m *BillingModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID()))
	{
		auth.GET("/plan", m.Handler.GetPlan)
		auth.GET("/subscription", m.Handler.GetSubscription)
		auth.POST("/subscription/activate", m.Handler.Activate)
		auth.POST("/subscription/cancel", m.Handler.Cancel)
	}
}
