package main

import (
	"fmt"
	"net/http"
	"strings"

	"finance-ledger-backend/internal/audit"
	"finance-ledger-backend/internal/profile"
	"finance-ledger-backend/internal/schedule"
	"finance-ledger-backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (s *server) toRecurringResponse(p schedule.Projected) RecurringResponse {
	return RecurringResponse{
		ID:             p.ID,
		Description:    p.Description,
		Category:       p.Category,
		Amount:         p.Amount,
		Frequency:      p.Frequency,
		FrequencyLabel: p.Frequency.Label(),
		StartDate:      s.formatDate(p.StartDate),
		NextDueDate:    s.formatDate(p.NextDueDate),
		MonthlyAmount:  schedule.MonthlyEquivalent(p.Amount, p.Frequency).Round(2),
		Profile:        p.Profile,
	}
}

// recurringFromRequest validates and coerces a request body into a
// recurring transaction
func (s *server) recurringFromRequest(req RecurringRequest) (schedule.Recurring, error) {
	freq, err := schedule.ParseFrequency(req.Frequency)
	if err != nil {
		return schedule.Recurring{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	start, err := s.parseDate(req.StartDate, false)
	if err != nil {
		return schedule.Recurring{}, err
	}
	if err := checkCents("amount", req.Amount); err != nil {
		return schedule.Recurring{}, err
	}

	r := schedule.Recurring{
		Description: strings.TrimSpace(req.Description),
		Category:    strings.TrimSpace(req.Category),
		Amount:      req.Amount,
		Frequency:   freq,
		StartDate:   start,
	}
	if err := r.Validate(); err != nil {
		return schedule.Recurring{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return r, nil
}

func (s *server) invalidateRecurring(c *gin.Context) {
	s.cache.invalidate(c.Request.Context(), cacheKey("recurring", activeProfile(c).String()))
}

// cachedRecurring is a stored recurring transaction as kept in Redis. Due
// dates depend on the time of the request and are never cached.
type cachedRecurring struct {
	ID          string             `json:"id"`
	Description string             `json:"description"`
	Category    string             `json:"category"`
	Amount      decimal.Decimal    `json:"amount"`
	Frequency   schedule.Frequency `json:"frequency"`
	StartDate   string             `json:"start_date"`
	Profile     profile.Profile    `json:"profile"`
}

// recurringRows returns the stored recurring transactions of the active
// profile, from the cache when possible.
func (s *server) recurringRows(c *gin.Context) ([]schedule.Recurring, error) {
	ctx := c.Request.Context()
	key := cacheKey("recurring", activeProfile(c).String())

	var cached []cachedRecurring
	if s.cache.get(ctx, key, &cached) {
		items := make([]schedule.Recurring, 0, len(cached))
		for _, cr := range cached {
			start, err := s.parseDate(cr.StartDate, false)
			if err != nil {
				items = nil
				break
			}
			items = append(items, schedule.Recurring{
				ID:          cr.ID,
				Description: cr.Description,
				Category:    cr.Category,
				Amount:      cr.Amount,
				Frequency:   cr.Frequency,
				StartDate:   start,
				Profile:     cr.Profile,
			})
		}
		if items != nil {
			return items, nil
		}
	}

	items, err := s.store.ListRecurring(ctx, activeProfile(c))
	if err != nil {
		return nil, err
	}
	rows := make([]cachedRecurring, 0, len(items))
	for _, r := range items {
		rows = append(rows, cachedRecurring{
			ID:          r.ID,
			Description: r.Description,
			Category:    r.Category,
			Amount:      r.Amount,
			Frequency:   r.Frequency,
			StartDate:   s.formatDate(r.StartDate),
			Profile:     r.Profile,
		})
	}
	s.cache.set(ctx, key, rows, listCacheTTL)
	return items, nil
}

// loadRecurring fetches a recurring transaction of the active profile
func (s *server) loadRecurring(c *gin.Context) (schedule.Recurring, error) {
	r, err := s.store.GetRecurring(c.Request.Context(), c.Param("id"))
	if err != nil {
		return r, err
	}
	if r.Profile != activeProfile(c) {
		return schedule.Recurring{}, fmt.Errorf("recurring transaction %s: %w", r.ID, store.ErrNotFound)
	}
	return r, nil
}

func (s *server) projectOne(r schedule.Recurring) RecurringResponse {
	projected := schedule.Project([]schedule.Recurring{r}, s.now())
	if len(projected) == 0 {
		return s.toRecurringResponse(schedule.Projected{Recurring: r})
	}
	return s.toRecurringResponse(projected[0])
}

// listRecurring returns the recurring transactions of the active profile,
// soonest due first. Due dates are projected on every read.
func (s *server) listRecurring(c *gin.Context) {
	items, err := s.recurringRows(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	// ensure empty array ([]) instead of null when no rows
	resp := make([]RecurringResponse, 0, len(items))
	for _, p := range schedule.Project(items, s.now()) {
		resp = append(resp, s.toRecurringResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

// recurringOverview returns the estimated monthly income, expenses and net
// of the active profile's recurring transactions
func (s *server) recurringOverview(c *gin.Context) {
	items, err := s.recurringRows(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	o := schedule.Summarize(items)
	c.JSON(http.StatusOK, OverviewResponse{
		Income:   o.Income.Round(2),
		Expenses: o.Expenses.Round(2),
		Net:      o.Net.Round(2),
	})
}

// createRecurring creates a new recurring transaction
func (s *server) createRecurring(c *gin.Context) {
	var req RecurringRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	r, err := s.recurringFromRequest(req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	r.ID = uuid.NewString()
	r.Profile = activeProfile(c)

	if err := s.store.CreateRecurring(c.Request.Context(), r); err != nil {
		s.respondError(c, err)
		return
	}

	rec := s.recorder(c)
	rec.Record(audit.Event{
		Action:  "Recurring transaction created",
		Details: fmt.Sprintf("%q, %s EUR, %s", r.Description, r.Amount.StringFixed(2), r.Frequency.Label()),
	})
	s.flushAudit(c.Request.Context(), rec)
	s.invalidateRecurring(c)

	c.JSON(http.StatusCreated, s.projectOne(r))
}

// updateRecurring replaces a recurring transaction's fields
func (s *server) updateRecurring(c *gin.Context) {
	var req RecurringRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	existing, err := s.loadRecurring(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	r, err := s.recurringFromRequest(req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	r.ID = existing.ID
	r.Profile = existing.Profile

	if err := s.store.UpdateRecurring(c.Request.Context(), r); err != nil {
		s.respondError(c, err)
		return
	}

	rec := s.recorder(c)
	rec.Record(audit.Event{
		Action:  "Recurring transaction updated",
		Details: fmt.Sprintf("%q (ID: %s)", r.Description, r.ID),
	})
	s.flushAudit(c.Request.Context(), rec)
	s.invalidateRecurring(c)

	c.JSON(http.StatusOK, s.projectOne(r))
}

// deleteRecurring removes a recurring transaction by ID
func (s *server) deleteRecurring(c *gin.Context) {
	if _, err := s.loadRecurring(c); err != nil {
		s.respondError(c, err)
		return
	}
	r, err := s.store.DeleteRecurring(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	rec := s.recorder(c)
	rec.Record(audit.Event{
		Action:  "Recurring transaction deleted",
		Details: fmt.Sprintf("%q (ID: %s)", r.Description, r.ID),
	})
	s.flushAudit(c.Request.Context(), rec)
	s.invalidateRecurring(c)

	c.JSON(http.StatusOK, gin.H{"message": "Recurring transaction deleted"})
}
