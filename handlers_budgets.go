package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"finance-ledger-backend/internal/audit"
	"finance-ledger-backend/internal/cashflow"
	"finance-ledger-backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const monthLayout = "2006-01"

func (s *server) invalidateBudgets(c *gin.Context) {
	s.cache.invalidate(c.Request.Context(), cacheKey("budgets", activeProfile(c).String()))
}

// budgetRows returns the budgets of the active profile, from the cache when
// possible. Spending is never cached; it follows the transactions.
func (s *server) budgetRows(c *gin.Context) ([]cashflow.Budget, error) {
	ctx := c.Request.Context()
	key := cacheKey("budgets", activeProfile(c).String())

	var cached []cashflow.Budget
	if s.cache.get(ctx, key, &cached) {
		return cached, nil
	}
	budgets, err := s.store.ListBudgets(ctx, activeProfile(c))
	if err != nil {
		return nil, err
	}
	s.cache.set(ctx, key, budgets, budgetCacheTTL)
	return budgets, nil
}

// loadBudget fetches a budget of the active profile
func (s *server) loadBudget(c *gin.Context) (cashflow.Budget, error) {
	b, err := s.store.GetBudget(c.Request.Context(), c.Param("id"))
	if err != nil {
		return b, err
	}
	if b.Profile != activeProfile(c) {
		return cashflow.Budget{}, fmt.Errorf("budget %s: %w", b.ID, store.ErrNotFound)
	}
	return b, nil
}

func budgetFromRequest(req BudgetRequest) (cashflow.Budget, error) {
	if err := checkCents("limit", req.Limit); err != nil {
		return cashflow.Budget{}, err
	}
	b := cashflow.Budget{
		Category: strings.TrimSpace(req.Category),
		Limit:    req.Limit,
	}
	return b, b.Validate()
}

// month resolves the month query parameter (YYYY-MM), defaulting to the
// current month
func (s *server) month(c *gin.Context) (time.Time, time.Time, error) {
	at := s.now()
	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		t, err := time.ParseInLocation(monthLayout, raw, s.loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid month %q, want YYYY-MM", errBadRequest, raw)
		}
		at = t
	}
	from, to := cashflow.MonthOf(at, s.loc)
	return from, to, nil
}

func toBudgetResponse(st cashflow.Status) BudgetResponse {
	return BudgetResponse{
		ID:        st.ID,
		Category:  st.Category,
		Limit:     st.Limit,
		Spent:     st.Spent,
		Remaining: st.Remaining,
		Percent:   st.Percent,
		NearLimit: st.NearLimit,
		Exceeded:  st.Exceeded,
		Profile:   st.Profile,
	}
}

// trackOne computes the current month's status of a single budget
func (s *server) trackOne(c *gin.Context, b cashflow.Budget) (BudgetResponse, error) {
	ts, err := s.transactionRows(c)
	if err != nil {
		return BudgetResponse{}, err
	}
	from, to := cashflow.MonthOf(s.now(), s.loc)
	return toBudgetResponse(cashflow.Track([]cashflow.Budget{b}, ts, from, to)[0]), nil
}

// getBudgets returns the budgets of the active profile with the spending
// of the requested month
func (s *server) getBudgets(c *gin.Context) {
	from, to, err := s.month(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	budgets, err := s.budgetRows(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	ts, err := s.transactionRows(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	statuses := cashflow.Track(budgets, ts, from, to)
	totals := cashflow.Totals(statuses)
	resp := BudgetOverviewResponse{
		Month:         from.Format(monthLayout),
		Budgets:       make([]BudgetResponse, 0, len(statuses)),
		TotalBudgeted: totals.Budgeted,
		TotalSpent:    totals.Spent,
		Remaining:     totals.Remaining,
	}
	for _, st := range statuses {
		resp.Budgets = append(resp.Budgets, toBudgetResponse(st))
	}
	c.JSON(http.StatusOK, resp)
}

// createBudget adds a monthly budget for a category
func (s *server) createBudget(c *gin.Context) {
	var req BudgetRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	b, err := budgetFromRequest(req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	b.ID = uuid.NewString()
	b.Profile = activeProfile(c)

	if err := s.store.CreateBudget(c.Request.Context(), b); err != nil {
		s.respondError(c, err)
		return
	}

	rec := s.recorder(c)
	rec.Record(audit.Event{
		Action:  "Budget created",
		Details: fmt.Sprintf("%s: %s EUR", b.Category, b.Limit.StringFixed(2)),
	})
	s.flushAudit(c.Request.Context(), rec)
	s.invalidateBudgets(c)

	resp, err := s.trackOne(c, b)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// updateBudget changes a budget's category and limit
func (s *server) updateBudget(c *gin.Context) {
	var req BudgetRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	existing, err := s.loadBudget(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	b, err := budgetFromRequest(req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	b.ID = existing.ID
	b.Profile = existing.Profile

	if err := s.store.UpdateBudget(c.Request.Context(), b); err != nil {
		s.respondError(c, err)
		return
	}

	rec := s.recorder(c)
	rec.Record(audit.Event{
		Action:  "Budget updated",
		Details: fmt.Sprintf("%s: %s EUR -> %s: %s EUR", existing.Category, existing.Limit.StringFixed(2), b.Category, b.Limit.StringFixed(2)),
	})
	s.flushAudit(c.Request.Context(), rec)
	s.invalidateBudgets(c)

	resp, err := s.trackOne(c, b)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// deleteBudget removes a budget of the active profile
func (s *server) deleteBudget(c *gin.Context) {
	if _, err := s.loadBudget(c); err != nil {
		s.respondError(c, err)
		return
	}
	b, err := s.store.DeleteBudget(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	rec := s.recorder(c)
	rec.Record(audit.Event{
		Action:  "Budget deleted",
		Details: fmt.Sprintf("%s (ID: %s)", b.Category, b.ID),
	})
	s.flushAudit(c.Request.Context(), rec)
	s.invalidateBudgets(c)

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted"})
}
