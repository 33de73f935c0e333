package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lendbook/lendbook/internal/container"
	handlers "github.com/lendbook/lendbook/internal/interface/http"
	"github.com/lendbook/lendbook/internal/interface/middleware"
	"github.com/lendbook/lendbook/pkg/helpers"
)

type SettingsModule struct {
	Handler *handlers.SettingsHandler
	JWT     *helpers.JWTManager
}

func NewSettingsModule(h *handlers.SettingsHandler, jwt *helpers.JWTManager) *SettingsModule {
	return &SettingsModule{Handler: h, JWT: jwt}
}

func (m *SettingsModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID()))
	{
		auth.GET("/settings", m.Handler.Get)
		auth.PUT("/settings", m.Handler.Update)
		auth.DELETE("/account", m.Handler.DeleteAccount)
	}
}
