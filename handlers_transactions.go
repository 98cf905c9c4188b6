package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finance-ledger-backend/internal/audit"
	"finance-ledger-backend/internal/cashflow"
	"finance-ledger-backend/internal/profile"
	"finance-ledger-backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultTransactionLimit = 100
	analyticsDays           = 30
)

func (s *server) toTransactionResponse(t cashflow.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Date:        s.formatDate(t.Date),
		Description: t.Description,
		Category:    t.Category,
		Amount:      t.Amount,
		Type:        t.Kind(),
		TypeLabel:   t.Kind().Label(),
		Profile:     t.Profile,
	}
}

func (s *server) invalidateTransactions(c *gin.Context) {
	s.cache.invalidate(c.Request.Context(), cacheKey("transactions", activeProfile(c).String()))
}

// cachedTransaction is a stored transaction as kept in Redis
type cachedTransaction struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Profile     profile.Profile `json:"profile"`
}

// transactionRows returns the transactions of the active profile, newest
// first, from the cache when possible
func (s *server) transactionRows(c *gin.Context) ([]cashflow.Transaction, error) {
	ctx := c.Request.Context()
	key := cacheKey("transactions", activeProfile(c).String())

	var cached []cachedTransaction
	if s.cache.get(ctx, key, &cached) {
		ts := make([]cashflow.Transaction, 0, len(cached))
		for _, ct := range cached {
			date, err := s.parseDate(ct.Date, false)
			if err != nil {
				ts = nil
				break
			}
			ts = append(ts, cashflow.Transaction{
				ID:          ct.ID,
				Date:        date,
				Description: ct.Description,
				Category:    ct.Category,
				Amount:      ct.Amount,
				Profile:     ct.Profile,
			})
		}
		if ts != nil {
			return ts, nil
		}
	}

	ts, err := s.store.ListTransactions(ctx, activeProfile(c))
	if err != nil {
		return nil, err
	}
	rows := make([]cachedTransaction, 0, len(ts))
	for _, t := range ts {
		rows = append(rows, cachedTransaction{
			ID:          t.ID,
			Date:        s.formatDate(t.Date),
			Description: t.Description,
			Category:    t.Category,
			Amount:      t.Amount,
			Profile:     t.Profile,
		})
	}
	s.cache.set(ctx, key, rows, listCacheTTL)
	return ts, nil
}

// dateRange reads the optional from and to query parameters. Both are
// inclusive calendar days; the returned end is the start of the day after.
func (s *server) dateRange(c *gin.Context) (time.Time, time.Time, error) {
	from, err := s.parseDate(c.Query("from"), true)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := s.parseDate(c.Query("to"), true)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !to.IsZero() {
		to = to.AddDate(0, 0, 1)
	}
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from must not be after to", errBadRequest)
	}
	return from, to, nil
}

// getTransactions returns the transactions of the active profile, newest
// first. Query parameters q, category, type, from and to narrow the list;
// limit caps it.
func (s *server) getTransactions(c *gin.Context) {
	f := cashflow.Filter{
		Search:   c.Query("q"),
		Category: c.Query("category"),
	}
	if raw := c.Query("type"); raw != "" {
		kind, err := cashflow.ParseKind(raw)
		if err != nil {
			s.respondError(c, err)
			return
		}
		f.Kind = kind
	}
	from, to, err := s.dateRange(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	f.From, f.To = from, to

	limit := defaultTransactionLimit
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			s.respondError(c, fmt.Errorf("%w: limit must be a positive integer", errBadRequest))
			return
		}
	}

	ts, err := s.transactionRows(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ts = f.Apply(ts)
	if len(ts) > limit {
		ts = ts[:limit]
	}

	// ensure empty array ([]) instead of null when no rows
	resp := make([]TransactionResponse, 0, len(ts))
	for _, t := range ts {
		resp = append(resp, s.toTransactionResponse(t))
	}
	c.JSON(http.StatusOK, resp)
}

// addTransaction books a new transaction
func (s *server) addTransaction(c *gin.Context) {
	var req TransactionRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	date, err := s.parseDate(req.Date, false)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := checkCents("amount", req.Amount); err != nil {
		s.respondError(c, err)
		return
	}

	t := cashflow.Transaction{
		ID:          uuid.NewString(),
		Date:        date,
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Amount:      req.Amount,
		Profile:     activeProfile(c),
	}
	if err := t.Validate(); err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.store.CreateTransaction(c.Request.Context(), t); err != nil {
		s.respondError(c, err)
		return
	}

	rec := s.recorder(c)
	rec.Record(audit.Event{
		Action:  fmt.Sprintf("Transaction booked (%s)", t.Kind()),
		Details: fmt.Sprintf("%q, %s EUR, %s", t.Description, t.Amount.StringFixed(2), t.Category),
	})
	s.flushAudit(c.Request.Context(), rec)
	s.invalidateTransactions(c)

	c.JSON(http.StatusCreated, s.toTransactionResponse(t))
}

// deleteTransaction removes a transaction of the active profile
func (s *server) deleteTransaction(c *gin.Context) {
	ctx := c.Request.Context()
	existing, err := s.store.GetTransaction(ctx, c.Param("id"))
	if err == nil && existing.Profile != activeProfile(c) {
		err = fmt.Errorf("transaction %s: %w", existing.ID, store.ErrNotFound)
	}
	if err != nil {
		s.respondError(c, err)
		return
	}
	t, err := s.store.DeleteTransaction(ctx, existing.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	rec := s.recorder(c)
	rec.Record(audit.Event{
		Action:  "Transaction deleted",
		Details: fmt.Sprintf("%q, %s EUR (ID: %s)", t.Description, t.Amount.StringFixed(2), t.ID),
	})
	s.flushAudit(ctx, rec)
	s.invalidateTransactions(c)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
}

// getCategories lists the categories used by the active profile's
// transactions and budgets
func (s *server) getCategories(c *gin.Context) {
	ts, err := s.transactionRows(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	budgets, err := s.budgetRows(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	categories := cashflow.Categories(ts, budgets)
	resp := make([]CategoryResponse, 0, len(categories))
	for _, cat := range categories {
		resp = append(resp, CategoryResponse{
			Name:         cat.Name,
			Transactions: cat.Transactions,
			Budgeted:     cat.Budgeted,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// getAnalytics sums income and expenses over a period, the last 30 days
// by default, with expenses broken down by category
func (s *server) getAnalytics(c *gin.Context) {
	from, to, err := s.dateRange(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	now := s.now().In(s.loc)
	if to.IsZero() {
		to = time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, s.loc)
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -analyticsDays-1)
	}

	ts, err := s.transactionRows(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	a := cashflow.Analyze(ts, from, to)
	resp := AnalyticsResponse{
		From: s.formatDate(a.From),
		To:   s.formatDate(a.To.AddDate(0, 0, -1)),
		Summary: SummaryResponse{
			TotalIncome:      a.Summary.TotalIncome,
			TotalExpenses:    a.Summary.TotalExpenses,
			Net:              a.Summary.Net,
			TransactionCount: a.Summary.TransactionCount,
		},
		ByCategory: make([]CategoryTotalResponse, 0, len(a.ByCategory)),
	}
	for _, ct := range a.ByCategory {
		resp.ByCategory = append(resp.ByCategory, CategoryTotalResponse{
			Category: ct.Category,
			Total:    ct.Total,
			Count:    ct.Count,
		})
	}
	c.JSON(http.StatusOK, resp)
}
