package application

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/lendbook/lendbook/internal/domain/entity"
	"github.com/lendbook/lendbook/internal/domain/repository"
	"github.com/lendbook/lendbook/internal/events"
	"github.com/lendbook/lendbook/internal/infrastructure/postgres"
	"github.com/lendbook/lendbook/pkg/currency"
)

const loansTable = "loans"

// LoanService owns the loan lifecycle: quota-gated creation, updates,
// deletion, due-soon bucketing, search indexing, and CSV export.
type LoanService struct {
	Repo    repository.LoanRepository
	Plans   *PlanService
	Events  *events.Publisher
	Logger  *logrus.Logger
	ES      *elasticsearch.Client
	ESIndex string
}

func NewLoanService(repo repository.LoanRepository, plans *PlanService, pub *events.Publisher, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *LoanService {
	return &LoanService{Repo: repo, Plans: plans, Events: pub, Logger: logger, ES: es, ESIndex: esIndex}
}

// CreateLoanInput carries validated fields from the handler.
type CreateLoanInput struct {
	BorrowerName  string
	BorrowerEmail string
	BorrowerPhone string
	Amount        decimal.Decimal
	Currency      currency.Code
	LoanType      entity.LoanType
	StartDate     time.Time
	DueDate       time.Time
	Notes         string
}

// Create inserts a loan after the authoritative quota check. The
// client's advisory check may have passed on a stale count, so the plan
// is recomputed from the store immediately before the insert and the
// create aborts with ErrQuotaExceeded if the fresh count fails the
// predicate.
func (s *LoanService) Create(ctx context.Context, userID string, in CreateLoanInput) (*entity.Loan, error) {
	plan, err := s.Plans.Compute(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !plan.CanCreate() {
		return nil, ErrQuotaExceeded
	}

	l := &entity.Loan{
		UserID:        userID,
		BorrowerName:  in.BorrowerName,
		BorrowerEmail: in.BorrowerEmail,
		BorrowerPhone: in.BorrowerPhone,
		Amount:        in.Amount,
		Currency:      in.Currency,
		LoanType:      in.LoanType,
		StartDate:     in.StartDate,
		DueDate:       in.DueDate,
		Status:        entity.StatusPending,
		Notes:         in.Notes,
	}
	if err := s.Repo.Create(ctx, l); err != nil {
		return nil, err
	}
	s.Events.RecordsChanged(ctx, userID, loansTable, events.ActionInsert)
	s.index(ctx, l)
	return l, nil
}

// UpdateLoanInput updates every mutable field; nil pointers leave the
// field unchanged.
type UpdateLoanInput struct {
	BorrowerName  *string
	BorrowerEmail *string
	BorrowerPhone *string
	Amount        *decimal.Decimal
	Currency      *currency.Code
	LoanType      *entity.LoanType
	StartDate     *time.Time
	DueDate       *time.Time
	Status        *entity.LoanStatus
	Notes         *string
}

func (s *LoanService) Update(ctx context.Context, userID, id string, in UpdateLoanInput) (*entity.Loan, error) {
	l, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.BorrowerName != nil {
		l.BorrowerName = *in.BorrowerName
	}
	if in.BorrowerEmail != nil {
		l.BorrowerEmail = *in.BorrowerEmail
	}
	if in.BorrowerPhone != nil {
		l.BorrowerPhone = *in.BorrowerPhone
	}
	if in.Amount != nil {
		l.Amount = *in.Amount
	}
	if in.Currency != nil {
		l.Currency = *in.Currency
	}
	if in.LoanType != nil {
		l.LoanType = *in.LoanType
	}
	if in.StartDate != nil {
		l.StartDate = *in.StartDate
	}
	if in.DueDate != nil {
		l.DueDate = *in.DueDate
	}
	if in.Notes != nil {
		l.Notes = *in.Notes
	}
	if in.Status != nil && *in.Status != l.Status {
		l.Status = *in.Status
		if l.Status == entity.StatusPaid {
			now := time.Now().UTC()
			l.PaidDate = &now
		} else {
			l.PaidDate = nil
		}
	}
	if err := s.Repo.Update(ctx, l); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	s.Events.RecordsChanged(ctx, userID, loansTable, events.ActionUpdate)
	s.index(ctx, l)
	return l, nil
}

func (s *LoanService) Delete(ctx context.Context, userID, id string) error {
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return ErrLoanNotFound
		}
		return err
	}
	s.Events.RecordsChanged(ctx, userID, loansTable, events.ActionDelete)
	s.deleteIndex(ctx, id)
	return nil
}

func (s *LoanService) Get(ctx context.Context, userID, id string) (*entity.Loan, error) {
	l, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return l, nil
}

func (s *LoanService) List(ctx context.Context, userID string, f repository.LoanFilter) ([]entity.Loan, error) {
	return s.Repo.ListByUser(ctx, userID, f)
}

// DueSoon returns the bucketized due-date feed, recomputed from a fresh
// snapshot of pending loans.
func (s *LoanService) DueSoon(ctx context.Context, userID string, now time.Time) (map[entity.Bucket][]entity.Notification, error) {
	loans, err := s.Repo.ListByUser(ctx, userID, repository.LoanFilter{Status: entity.StatusPending})
	if err != nil {
		return nil, err
	}
	return entity.Bucketize(loans, now), nil
}

// ExportCSV streams the user's loans as CSV. Column set matches the
// client's export.
func (s *LoanService) ExportCSV(ctx context.Context, userID string, w io.Writer) error {
	loans, err := s.Repo.ListByUser(ctx, userID, repository.LoanFilter{})
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Loan ID", "Borrower Name", "Amount", "Currency", "Status", "Created Date", "Due Date", "Paid Date", "Notes"}); err != nil {
		return err
	}
	const dateLayout = "2006-01-02"
	for i := range loans {
		l := &loans[i]
		paid := "Not paid"
		if l.PaidDate != nil {
			paid = l.PaidDate.Format(dateLayout)
		}
		row := []string{
			l.ID,
			l.BorrowerName,
			l.Amount.StringFixed(currency.DisplayPlaces(l.Currency)),
			string(l.Currency),
			string(l.Status),
			l.CreatedAt.Format(dateLayout),
			l.DueDate.Format(dateLayout),
			paid,
			l.Notes,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Search runs a multi_match query over borrower fields and notes in
// Elasticsearch. Returns an empty slice when search is not configured.
func (s *LoanService) Search(ctx context.Context, userID, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"borrower_name^2", "borrower_email", "notes"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"user_id": userID},
				},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func (s *LoanService) index(ctx context.Context, l *entity.Loan) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":             l.ID,
		"user_id":        l.UserID,
		"borrower_name":  l.BorrowerName,
		"borrower_email": l.BorrowerEmail,
		"amount":         l.Amount.String(),
		"currency":       l.Currency,
		"status":         l.Status,
		"due_date":       l.DueDate.Format(time.RFC3339),
		"notes":          l.Notes,
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: l.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("loan_id", l.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("loan_id", l.ID).Warn("es index response error")
	}
}

func (s *LoanService) deleteIndex(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("loan_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}
