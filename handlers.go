package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"finance-ledger-backend/internal/audit"
	"finance-ledger-backend/internal/cashflow"
	"finance-ledger-backend/internal/profile"
	"finance-ledger-backend/internal/savings"
	"finance-ledger-backend/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	profileKey    = "profile"
	profileHeader = "X-Profile"

	listCacheTTL   = 60 * time.Second
	budgetCacheTTL = 5 * time.Minute
)

// errBadRequest marks malformed input rejected before it reaches the ledger
var errBadRequest = errors.New("bad request")

// server holds the dependencies shared by all handlers
type server struct {
	store  appStore
	cache  *responseCache
	ledger *savings.Ledger
	now    func() time.Time
	loc    *time.Location
	user   string
	logger *slog.Logger
}

// withProfile resolves the active profile from the X-Profile header or the
// profile query parameter
func (s *server) withProfile(c *gin.Context) {
	raw := c.GetHeader(profileHeader)
	if raw == "" {
		raw = c.Query("profile")
	}
	p, err := profile.Parse(raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Set(profileKey, p)
	c.Next()
}

func activeProfile(c *gin.Context) profile.Profile {
	if v, ok := c.Get(profileKey); ok {
		if p, ok := v.(profile.Profile); ok {
			return p
		}
	}
	return profile.Default
}

// recorder returns an audit recorder for the request's profile
func (s *server) recorder(c *gin.Context) *audit.Recorder {
	rec := audit.NewRecorder(activeProfile(c), s.user)
	rec.Now = s.now
	return rec
}

// flushAudit persists what rec collected; the mutation is already committed,
// so a failure is only logged
func (s *server) flushAudit(ctx context.Context, rec *audit.Recorder) {
	entries := rec.Entries()
	if len(entries) == 0 {
		return
	}
	if err := s.store.AppendAudit(ctx, entries...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to write audit log", "entries", len(entries), "error", err)
	}
}

// respondError maps ledger and store errors to HTTP status codes
func (s *server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, savings.ErrValidation), errors.Is(err, cashflow.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, savings.ErrNotFound), errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "Request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindJSON binds the request body and wraps binding errors as bad requests
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// parseDate parses a YYYY-MM-DD date in the configured time zone. An empty
// string yields the zero time when optional is set.
func (s *server) parseDate(value string, optional bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		if optional {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("%w: date is required", errBadRequest)
	}
	t, err := time.ParseInLocation(time.DateOnly, value, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", errBadRequest, value)
	}
	return t, nil
}

func (s *server) formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(s.loc).Format(time.DateOnly)
}

// checkCents rejects amounts with more than two decimal places
func checkCents(field string, d decimal.Decimal) error {
	if !d.Equal(d.Round(2)) {
		return fmt.Errorf("%w: %s must have at most two decimal places", errBadRequest, field)
	}
	return nil
}

// healthCheck handles the health check endpoint
func (s *server) healthCheck(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "finance-ledger",
	})
}

// listAudit returns audit log entries, newest first. The filter query
// parameter selects a profile or "all"; it defaults to the active profile.
func (s *server) listAudit(c *gin.Context) {
	filter := store.AuditFilter{}
	switch raw := strings.ToLower(strings.TrimSpace(c.Query("filter"))); raw {
	case "all", "alle":
	case "":
		p := activeProfile(c)
		filter.Profile = &p
	default:
		p, err := profile.Parse(raw)
		if err != nil {
			s.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		filter.Profile = &p
	}

	entries, err := s.store.ListAudit(c.Request.Context(), filter)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// clearAudit deletes the audit log and records that it was cleared
func (s *server) clearAudit(c *gin.Context) {
	ctx := c.Request.Context()
	if err := s.store.ClearAudit(ctx); err != nil {
		s.respondError(c, err)
		return
	}
	rec := s.recorder(c)
	rec.Record(audit.Event{Action: "Audit log cleared"})
	s.flushAudit(ctx, rec)

	c.JSON(http.StatusOK, gin.H{"message": "Audit log cleared"})
}
