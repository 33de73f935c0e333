package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/lendbook/lendbook/internal/application"
	"github.com/lendbook/lendbook/internal/domain/entity"
	"github.com/lendbook/lendbook/internal/domain/repository"
	"github.com/lendbook/lendbook/pkg/currency"
	"github.com/lendbook/lendbook/pkg/response"
	"github.com/lendbook/lendbook/pkg/validation"
)

type LoanHandler struct {
	Svc        *application.LoanService
	Logger     *logrus.Logger
	UpgradeURL string
}

func NewLoanHandler(svc *application.LoanService, logger *logrus.Logger, upgradeURL string) *LoanHandler {
	return &LoanHandler{Svc: svc, Logger: logger, UpgradeURL: upgradeURL}
}

type createLoanRequest struct {
	BorrowerName  string `json:"borrower_name" binding:"required"`
	BorrowerEmail string `json:"borrower_email" binding:"omitempty,email"`
	BorrowerPhone string `json:"borrower_phone" binding:"omitempty,phone"`
	Amount        string `json:"amount" binding:"required"`
	Currency      string `json:"currency" binding:"required,ccy"`
	LoanType      string `json:"loan_type" binding:"required,loantype"`
	StartDate     string `json:"start_date" binding:"required"`
	DueDate       string `json:"due_date" binding:"required"`
	Notes         string `json:"notes"`
}

type updateLoanRequest struct {
	BorrowerName  *string `json:"borrower_name"`
	BorrowerEmail *string `json:"borrower_email" binding:"omitempty,email"`
	BorrowerPhone *string `json:"borrower_phone" binding:"omitempty,phone"`
	Amount        *string `json:"amount"`
	Currency      *string `json:"currency" binding:"omitempty,ccy"`
	LoanType      *string `json:"loan_type" binding:"omitempty,loantype"`
	StartDate     *string `json:"start_date"`
	DueDate       *string `json:"due_date"`
	Status        *string `json:"status" binding:"omitempty,oneof=pending paid"`
	Notes         *string `json:"notes"`
}

func loanJSON(l *entity.Loan, now time.Time) gin.H {
	return gin.H{
		"id":             l.ID,
		"borrower_name":  l.BorrowerName,
		"borrower_email": l.BorrowerEmail,
		"borrower_phone": l.BorrowerPhone,
		"amount":         l.Amount,
		"currency":       l.Currency,
		"loan_type":      l.LoanType,
		"status":         l.DisplayStatus(now),
		"start_date":     l.StartDate,
		"due_date":       l.DueDate,
		"paid_date":      l.PaidDate,
		"notes":          l.Notes,
		"created_at":     l.CreatedAt,
		"updated_at":     l.UpdatedAt,
	}
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("amount must be positive, got %s", s)
	}
	return d, nil
}

func (h *LoanHandler) Create(c *gin.Context) {
	var req createLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		response.Fail[any](c, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		response.Fail[any](c, http.StatusBadRequest, "invalid start_date", nil)
		return
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		response.Fail[any](c, http.StatusBadRequest, "invalid due_date", nil)
		return
	}

	l, err := h.Svc.Create(c.Request.Context(), c.GetString("userID"), application.CreateLoanInput{
		BorrowerName:  req.BorrowerName,
		BorrowerEmail: req.BorrowerEmail,
		BorrowerPhone: req.BorrowerPhone,
		Amount:        amount,
		Currency:      currency.Code(req.Currency),
		LoanType:      entity.LoanType(req.LoanType),
		StartDate:     start,
		DueDate:       due,
		Notes:         req.Notes,
	})
	if err != nil {
		if errors.Is(err, application.ErrQuotaExceeded) {
			response.Fail[any](c, http.StatusForbidden, "loan limit reached", gin.H{
				"code":        "quota_exceeded",
				"upgrade_url": h.UpgradeURL,
			})
			return
		}
		h.Logger.WithError(err).Error("loan create failed")
		response.Fail[any](c, http.StatusInternalServerError, "failed to create loan", nil)
		return
	}
	response.Success(c, http.StatusCreated, loanJSON(l, time.Now()), "loan created", nil)
}

func (h *LoanHandler) List(c *gin.Context) {
	var f repository.LoanFilter
	if s := c.Query("status"); s != "" {
		f.Status = entity.LoanStatus(s)
	}
	loans, err := h.Svc.List(c.Request.Context(), c.GetString("userID"), f)
	if err != nil {
		response.Fail[any](c, http.StatusInternalServerError, "failed to list loans", nil)
		return
	}
	now := time.Now()
	out := make([]gin.H, 0, len(loans))
	for i := range loans {
		out = append(out, loanJSON(&loans[i], now))
	}
	response.Success(c, http.StatusOK, out, "loans", map[string]any{"count": len(out)})
}

func (h *LoanHandler) Get(c *gin.Context) {
	l, err := h.Svc.Get(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		response.Fail[any](c, http.StatusNotFound, "loan not found", nil)
		return
	}
	response.Success(c, http.StatusOK, loanJSON(l, time.Now()), "loan", nil)
}

func (h *LoanHandler) Update(c *gin.Context) {
	var req updateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	var in application.UpdateLoanInput
	in.BorrowerName = req.BorrowerName
	in.BorrowerEmail = req.BorrowerEmail
	in.BorrowerPhone = req.BorrowerPhone
	in.Notes = req.Notes
	if req.Amount != nil {
		d, err := parseAmount(*req.Amount)
		if err != nil {
			response.Fail[any](c, http.StatusBadRequest, "invalid amount", err.Error())
			return
		}
		in.Amount = &d
	}
	if req.Currency != nil {
		ccy := currency.Code(*req.Currency)
		in.Currency = &ccy
	}
	if req.LoanType != nil {
		lt := entity.LoanType(*req.LoanType)
		in.LoanType = &lt
	}
	if req.StartDate != nil {
		t, err := parseDate(*req.StartDate)
		if err != nil {
			response.Fail[any](c, http.StatusBadRequest, "invalid start_date", nil)
			return
		}
		in.StartDate = &t
	}
	if req.DueDate != nil {
		t, err := parseDate(*req.DueDate)
		if err != nil {
			response.Fail[any](c, http.StatusBadRequest, "invalid due_date", nil)
			return
		}
		in.DueDate = &t
	}
	if req.Status != nil {
		st := entity.LoanStatus(*req.Status)
		in.Status = &st
	}

	l, err := h.Svc.Update(c.Request.Context(), c.GetString("userID"), c.Param("id"), in)
	if err != nil {
		if errors.Is(err, application.ErrLoanNotFound) {
			response.Fail[any](c, http.StatusNotFound, "loan not found", nil)
			return
		}
		h.Logger.WithError(err).Error("loan update failed")
		response.Fail[any](c, http.StatusInternalServerError, "failed to update loan", nil)
		return
	}
	response.Success(c, http.StatusOK, loanJSON(l, time.Now()), "loan updated", nil)
}

func (h *LoanHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		if errors.Is(err, application.ErrLoanNotFound) {
			response.Fail[any](c, http.StatusNotFound, "loan not found", nil)
			return
		}
		response.Fail[any](c, http.StatusInternalServerError, "failed to delete loan", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "loan deleted", nil)
}

func (h *LoanHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Fail[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	size := 20
	if s := c.Query("size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 && n <= 100 {
			size = n
		}
	}
	hits, err := h.Svc.Search(c.Request.Context(), c.GetString("userID"), q, size)
	if err != nil {
		h.Logger.WithError(err).Warn("loan search failed")
		response.Fail[any](c, http.StatusServiceUnavailable, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

// Export streams the caller's loans as CSV. This writes the body
// directly instead of using the JSON envelope.
func (h *LoanHandler) Export(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=loans-%s.csv", time.Now().Format("2006-01-02")))
	if err := h.Svc.ExportCSV(c.Request.Context(), c.GetString("userID"), c.Writer); err != nil {
		h.Logger.WithError(err).Error("csv export failed")
	}
}

func (h *LoanHandler) Notifications(c *gin.Context) {
	buckets, err := h.Svc.DueSoon(c.Request.Context(), c.GetString("userID"), time.Now())
	if err != nil {
		response.Fail[any](c, http.StatusInternalServerError, "failed to load notifications", nil)
		return
	}
	response.Success(c, http.StatusOK, buckets, "due soon", map[string]any{"count": entity.CountNotifications(buckets)})
}
