package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lendbook/lendbook/internal/application"
	"github.com/lendbook/lendbook/internal/domain/entity"
	"github.com/lendbook/lendbook/pkg/response"
	"github.com/lendbook/lendbook/pkg/validation"
)

type BillingHandler struct {
	Plans  *application.PlanService
	Subs   *application.SubscriptionService
	Logger *logrus.Logger
}

func NewBillingHandler(plans *application.PlanService, subs *application.SubscriptionService, logger *logrus.Logger) *BillingHandler {
	return &BillingHandler{Plans: plans, Subs: subs, Logger: logger}
}

func planJSON(p entity.Plan) gin.H {
	tier := "free"
	if p.IsPremium {
		tier = "premium"
	}
	return gin.H{
		"tier":       tier,
		"is_premium": p.IsPremium,
		"loan_count": p.LoanCount,
		"max_loans":  p.MaxLoans,
		"unlimited":  p.IsPremium || p.Unlimited,
		"remaining":  p.Remaining(),
		"can_create": p.CanCreate(),
	}
}

func subscriptionJSON(s *entity.Subscription) gin.H {
	if s == nil {
		return gin.H{"status": entity.SubscriptionInactive}
	}
	return gin.H{
		"id":                   s.ID,
		"status":               s.Status,
		"current_period_start": s.CurrentPeriodStart,
		"current_period_end":   s.CurrentPeriodEnd,
		"auto_renew":           s.AutoRenew,
	}
}

// GetPlan GET /api/plan. The snapshot is recomputed from the store on
// every call so the can_create flag the client sees is at most one
// request stale.
func (h *BillingHandler) GetPlan(c *gin.Context) {
	p, err := h.Plans.Compute(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Fail[any](c, http.StatusInternalServerError, "failed to compute plan", nil)
		return
	}
	response.Success(c, http.StatusOK, planJSON(p), "plan", nil)
}

// GetSubscription GET /api/subscription
func (h *BillingHandler) GetSubscription(c *gin.Context) {
	s, err := h.Subs.Status(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Fail[any](c, http.StatusInternalServerError, "failed to load subscription", nil)
		return
	}
	response.Success(c, http.StatusOK, subscriptionJSON(s), "subscription", nil)
}

// Activate POST /api/subscription/activate {auto_renew}
func (h *BillingHandler) Activate(c *gin.Context) {
	var req struct {
		AutoRenew bool `json:"auto_renew"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Fail[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
			return
		}
	}
	s, err := h.Subs.Activate(c.Request.Context(), c.GetString("userID"), req.AutoRenew)
	if err != nil {
		h.Logger.WithError(err).Error("subscription activate failed")
		response.Fail[any](c, http.StatusInternalServerError, "failed to activate subscription", nil)
		return
	}
	response.Success(c, http.StatusOK, subscriptionJSON(s), "subscription activated", nil)
}

// Cancel POST /api/subscription/cancel
func (h *BillingHandler) Cancel(c *gin.Context) {
	if err := h.Subs.Cancel(c.Request.Context(), c.GetString("userID")); err != nil {
		h.Logger.WithError(err).Error("subscription cancel failed")
		response.Fail[any](c, http.StatusInternalServerError, "failed to cancel subscription", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"cancelled": true}, "subscription cancelled", nil)
}
