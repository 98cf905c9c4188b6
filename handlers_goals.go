package main

import (
	"fmt"
	"net/http"

	"finance-ledger-backend/internal/profile"
	"finance-ledger-backend/internal/savings"
	"finance-ledger-backend/internal/store"

	"github.com/gin-gonic/gin"
)

func (s *server) toGoalResponse(g savings.Goal) GoalResponse {
	resp := GoalResponse{
		ID:                 g.ID,
		Name:               g.Name,
		Profile:            g.Profile,
		TargetAmount:       g.TargetAmount,
		TargetDate:         s.formatDate(g.TargetDate),
		CurrentBalance:     g.CurrentBalance,
		Remaining:          g.Remaining(),
		History:            g.History,
		PendingWithdrawals: g.PendingWithdrawals,
	}
	// ensure empty arrays ([]) instead of null
	if resp.History == nil {
		resp.History = []savings.Transaction{}
	}
	if resp.PendingWithdrawals == nil {
		resp.PendingWithdrawals = []savings.PendingWithdrawal{}
	}
	return resp
}

func (s *server) invalidateGoals(c *gin.Context) {
	p := activeProfile(c)
	s.cache.invalidate(c.Request.Context(), cacheKey("goals", p.String()))
}

// inProfile guards goal mutations against goals of another profile
func inProfile(p profile.Profile, fn func(savings.Goal) (savings.Goal, error)) func(savings.Goal) (savings.Goal, error) {
	return func(g savings.Goal) (savings.Goal, error) {
		if g.Profile != p {
			return g, fmt.Errorf("goal %s: %w", g.ID, store.ErrNotFound)
		}
		return fn(g)
	}
}

// listGoals retrieves the goals of the active profile with optional Redis caching
func (s *server) listGoals(c *gin.Context) {
	ctx := c.Request.Context()
	key := cacheKey("goals", activeProfile(c).String())

	var cached []GoalResponse
	if s.cache.get(ctx, key, &cached) {
		c.JSON(http.StatusOK, cached)
		return
	}

	goals, err := s.store.ListGoals(ctx, activeProfile(c))
	if err != nil {
		s.respondError(c, err)
		return
	}

	resp := make([]GoalResponse, 0, len(goals))
	for _, g := range goals {
		resp = append(resp, s.toGoalResponse(g))
	}

	s.cache.set(ctx, key, resp, listCacheTTL)
	c.JSON(http.StatusOK, resp)
}

// getGoal returns a single goal with its history
func (s *server) getGoal(c *gin.Context) {
	g, err := s.store.GetGoal(c.Request.Context(), c.Param("id"))
	if err == nil && g.Profile != activeProfile(c) {
		err = fmt.Errorf("goal %s: %w", g.ID, store.ErrNotFound)
	}
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.toGoalResponse(g))
}

// createGoal creates a new, empty savings goal
func (s *server) createGoal(c *gin.Context) {
	var req GoalRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	if err := checkCents("target_amount", req.TargetAmount); err != nil {
		s.respondError(c, err)
		return
	}
	targetDate, err := s.parseDate(req.TargetDate, true)
	if err != nil {
		s.respondError(c, err)
		return
	}

	rec := s.recorder(c)
	g, err := s.ledger.WithAudit(rec).NewGoal(activeProfile(c), req.Name, req.TargetAmount, targetDate)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.store.CreateGoal(c.Request.Context(), g); err != nil {
		s.respondError(c, err)
		return
	}

	s.flushAudit(c.Request.Context(), rec)
	s.invalidateGoals(c)
	c.JSON(http.StatusCreated, s.toGoalResponse(g))
}

// updateGoal renames a goal or changes its target
func (s *server) updateGoal(c *gin.Context) {
	var req GoalRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	if err := checkCents("target_amount", req.TargetAmount); err != nil {
		s.respondError(c, err)
		return
	}
	targetDate, err := s.parseDate(req.TargetDate, true)
	if err != nil {
		s.respondError(c, err)
		return
	}

	rec := s.recorder(c)
	ledger := s.ledger.WithAudit(rec)
	g, err := s.store.UpdateGoal(c.Request.Context(), c.Param("id"), inProfile(activeProfile(c), func(g savings.Goal) (savings.Goal, error) {
		return ledger.UpdateGoal(g, req.Name, req.TargetAmount, targetDate)
	}))
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.flushAudit(c.Request.Context(), rec)
	s.invalidateGoals(c)
	c.JSON(http.StatusOK, s.toGoalResponse(g))
}

// deleteGoal removes a goal; pending withdrawals are discarded with it
func (s *server) deleteGoal(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	g, err := s.store.GetGoal(ctx, id)
	if err == nil && g.Profile != activeProfile(c) {
		err = fmt.Errorf("goal %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		s.respondError(c, err)
		return
	}
	deleted, err := s.store.DeleteGoal(ctx, id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	rec := s.recorder(c)
	discarded := s.ledger.WithAudit(rec).DeleteGoal(deleted)
	s.flushAudit(ctx, rec)
	s.invalidateGoals(c)

	c.JSON(http.StatusOK, gin.H{
		"message":                       "Savings goal deleted",
		"discarded_pending_withdrawals": len(discarded),
	})
}

// contribute deposits into a goal or requests a withdrawal from it.
// Withdrawals are answered with 202: they are booked once their challenge
// is completed.
func (s *server) contribute(c *gin.Context) {
	var req ContributionRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	if err := checkCents("amount", req.Amount); err != nil {
		s.respondError(c, err)
		return
	}

	rec := s.recorder(c)
	ledger := s.ledger.WithAudit(rec)
	g, err := s.store.UpdateGoal(c.Request.Context(), c.Param("id"), inProfile(activeProfile(c), func(g savings.Goal) (savings.Goal, error) {
		return ledger.Contribute(g, req.Amount, req.Reason)
	}))
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.flushAudit(c.Request.Context(), rec)
	s.invalidateGoals(c)

	status := http.StatusOK
	if req.Amount.IsNegative() {
		status = http.StatusAccepted
	}
	c.JSON(status, s.toGoalResponse(g))
}

// completeWithdrawal books a pending withdrawal after its challenge was done
func (s *server) completeWithdrawal(c *gin.Context) {
	rec := s.recorder(c)
	ledger := s.ledger.WithAudit(rec)
	withdrawalID := c.Param("wid")
	g, err := s.store.UpdateGoal(c.Request.Context(), c.Param("id"), inProfile(activeProfile(c), func(g savings.Goal) (savings.Goal, error) {
		return ledger.CompleteWithdrawal(g, withdrawalID)
	}))
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.flushAudit(c.Request.Context(), rec)
	s.invalidateGoals(c)
	c.JSON(http.StatusOK, s.toGoalResponse(g))
}

// listPendingWithdrawals returns the open withdrawals of all goals of the
// active profile, oldest first
func (s *server) listPendingWithdrawals(c *gin.Context) {
	goals, err := s.store.ListGoals(c.Request.Context(), activeProfile(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	pending := savings.PendingAcross(goals)
	if pending == nil {
		pending = []savings.PendingView{}
	}
	c.JSON(http.StatusOK, pending)
}

// configureAutomation records a savings automation setting
func (s *server) configureAutomation(c *gin.Context) {
	var req AutomationRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, err)
		return
	}
	kind, err := savings.ParseAutomation(req.Type)
	if err != nil {
		s.respondError(c, err)
		return
	}

	rec := s.recorder(c)
	if err := s.ledger.WithAudit(rec).ConfigureAutomation(kind, req.Percentage); err != nil {
		s.respondError(c, err)
		return
	}
	s.flushAudit(c.Request.Context(), rec)

	c.JSON(http.StatusOK, gin.H{"message": "Automation saved", "type": kind})
}
