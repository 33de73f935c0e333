package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lendbook/lendbook/internal/application"
	"github.com/lendbook/lendbook/pkg/currency"
	"github.com/lendbook/lendbook/pkg/response"
)

type AnalyticsHandler struct {
	Svc    *application.AnalyticsService
	Rates  *currency.Provider
	Logger *logrus.Logger
}

func NewAnalyticsHandler(svc *application.AnalyticsService, rates *currency.Provider, logger *logrus.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{Svc: svc, Rates: rates, Logger: logger}
}

// Summary GET /api/analytics?range=1m|3m|6m|1y|all&currency=USD
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	rangeKey := c.DefaultQuery("range", "all")
	display := currency.Code(c.DefaultQuery("currency", string(currency.USD)))
	if !display.Valid() {
		response.Fail[any](c, http.StatusBadRequest, "unsupported currency", nil)
		return
	}
	sum, err := h.Svc.Summarize(c.Request.Context(), c.GetString("userID"), rangeKey, display, time.Now())
	if err != nil {
		h.Logger.WithError(err).Error("analytics summarize failed")
		response.Fail[any](c, http.StatusInternalServerError, "failed to build analytics", nil)
		return
	}
	response.Success(c, http.StatusOK, sum, "analytics", map[string]any{"range": rangeKey})
}

// GetRates GET /api/rates returns the current USD-pivot table so the
// client can do advisory conversions without another round trip.
func (h *AnalyticsHandler) GetRates(c *gin.Context) {
	rates, fetchedAt := h.Rates.Current()
	response.Success(c, http.StatusOK, gin.H{
		"base":       currency.USD,
		"rates":      rates,
		"fetched_at": fetchedAt,
	}, "exchange rates", nil)
}
