package router

import (
	"github.com/lendbook/lendbook/internal/application"
	"github.com/lendbook/lendbook/internal/container"
	pginfra "github.com/lendbook/lendbook/internal/infrastructure/postgres"
	handlers "github.com/lendbook/lendbook/internal/interface/http"
	"github.com/lendbook/lendbook/internal/router/modules"
)

// InitModules builds every feature module from the container singletons
// and registers it. Called once during startup, after the container is
// populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()
	jwt := container.GetJWT()

	userRepo := pginfra.NewUserRepository(pool)
	loanRepo := pginfra.NewLoanRepository(pool)
	subRepo := pginfra.NewSubscriptionRepository(pool)
	prefRepo := pginfra.NewPreferenceRepository(pool)

	plans := application.NewPlanService(loanRepo, subRepo, cfg.FreeTierMaxLoans)
	loans := application.NewLoanService(loanRepo, plans, container.GetEventsPub(), logger, container.GetES(), cfg.ESLoansIndex)
	users := application.NewUserService(userRepo, loanRepo, prefRepo, jwt, container.GetGCS(), cfg.GCSBucket, container.GetRedis(), logger)
	subs := application.NewSubscriptionService(subRepo, container.GetEventsPub())
	analytics := application.NewAnalyticsService(loanRepo, container.GetRates(), logger)

	userHandler := handlers.NewUserHandler(users, plans, logger, cfg.CookieDomain, cfg.CookieSecure)
	authHandler := handlers.NewAuthHandler(userRepo, container.GetRedis(), logger, cfg, container.GetEmailPub())
	loanHandler := handlers.NewLoanHandler(loans, logger, cfg.UpgradeURL)
	analyticsHandler := handlers.NewAnalyticsHandler(analytics, container.GetRates(), logger)
	billingHandler := handlers.NewBillingHandler(plans, subs, logger)
	settingsHandler := handlers.NewSettingsHandler(prefRepo, users, logger, cfg.CookieDomain, cfg.CookieSecure)

	r.Add(modules.NewUserModule(userHandler, jwt))
	r.Add(modules.NewAuthModule(authHandler, jwt))
	r.Add(modules.NewLoanModule(loanHandler, jwt))
	r.Add(modules.NewAnalyticsModule(analyticsHandler, jwt))
	r.Add(modules.NewBillingModule(billingHandler, jwt))
	r.Add(modules.NewSettingsModule(settingsHandler, jwt))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
