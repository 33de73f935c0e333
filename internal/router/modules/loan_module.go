package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lendbook/lendbook/internal/container"
	handlers "github.com/lendbook/lendbook/internal/interface/http"
	"github.com/lendbook/lendbook/internal/interface/middleware"
	"github.com/lendbook/lendbook/pkg/helpers"
)

// LoanModule registers the loan book itself plus the feeds derived from
// it (search, CSV export, due-soon notifications). Everything requires
// a session.

type LoanModule struct {
	Handler *handlers.LoanHandler
	JWT     *helpers.JWTManager
}

func NewLoanModule(h *handlers.LoanHandler, jwt *helpers.JWTManager) *LoanModule {
	return &LoanModule{Handler: h, JWT: jwt}
}

func (m *LoanModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID()))
	{
		auth.GET("/loans", m.Handler.List)
		auth.POST("/loans", m.Handler.Create)
		auth.GET("/loans/search", m.Handler.Search)
		auth.GET("/loans/export", m.Handler.Export)
		auth.GET("/loans/:id", m.Handler.Get)
		auth.PUT("/loans/:id", m.Handler.Update)
		auth.DELETE("/loans/:id", m.Handler.Delete)

		auth.GET("/notifications", m.Handler.Notifications)
	}
}
