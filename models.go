package main

import (
	"finance-ledger-backend/internal/cashflow"
	"finance-ledger-backend/internal/profile"
	"finance-ledger-backend/internal/savings"
	"finance-ledger-backend/internal/schedule"

	"github.com/shopspring/decimal"
)

// GoalRequest is the body of goal create and update requests
type GoalRequest struct {
	Name         string          `json:"name" binding:"required,max=255"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	TargetDate   string          `json:"target_date"`
}

// ContributionRequest deposits (positive amount) or requests a withdrawal
// (negative amount, reason required)
type ContributionRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason" binding:"max=500"`
}

// AutomationRequest configures a savings automation
type AutomationRequest struct {
	Type       string `json:"type" binding:"required"`
	Percentage int    `json:"percentage" binding:"min=0,max=100"`
}

// RecurringRequest is the body of recurring transaction create and update requests
type RecurringRequest struct {
	Description string          `json:"description" binding:"required,max=255"`
	Category    string          `json:"category" binding:"max=100"`
	Amount      decimal.Decimal `json:"amount"`
	Frequency   string          `json:"frequency" binding:"required"`
	StartDate   string          `json:"start_date" binding:"required"`
}

// TransactionRequest books an income (positive amount) or an expense
// (negative amount)
type TransactionRequest struct {
	Date        string          `json:"date" binding:"required"`
	Description string          `json:"description" binding:"required,max=255"`
	Category    string          `json:"category" binding:"required,max=100"`
	Amount      decimal.Decimal `json:"amount"`
}

// BudgetRequest is the body of budget create and update requests
type BudgetRequest struct {
	Category string          `json:"category" binding:"required,max=100"`
	Limit    decimal.Decimal `json:"limit"`
}

// GoalResponse is a savings goal as returned by the API
type GoalResponse struct {
	ID                 string                      `json:"id"`
	Name               string                      `json:"name"`
	Profile            profile.Profile             `json:"profile"`
	TargetAmount       decimal.Decimal             `json:"target_amount"`
	TargetDate         string                      `json:"target_date,omitempty"`
	CurrentBalance     decimal.Decimal             `json:"current_balance"`
	Remaining          decimal.Decimal             `json:"remaining"`
	History            []savings.Transaction       `json:"history"`
	PendingWithdrawals []savings.PendingWithdrawal `json:"pending_withdrawals"`
}

// RecurringResponse is a recurring transaction with its derived dates and amounts
type RecurringResponse struct {
	ID             string             `json:"id"`
	Description    string             `json:"description"`
	Category       string             `json:"category"`
	Amount         decimal.Decimal    `json:"amount"`
	Frequency      schedule.Frequency `json:"frequency"`
	FrequencyLabel string             `json:"frequency_label"`
	StartDate      string             `json:"start_date"`
	NextDueDate    string             `json:"next_due_date"`
	MonthlyAmount  decimal.Decimal    `json:"monthly_amount"`
	Profile        profile.Profile    `json:"profile"`
}

// OverviewResponse is the monthly cash-flow estimate of recurring transactions
type OverviewResponse struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// TransactionResponse is a booked transaction as returned by the API
type TransactionResponse struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Type        cashflow.Kind   `json:"type"`
	TypeLabel   string          `json:"type_label"`
	Profile     profile.Profile `json:"profile"`
}

// BudgetResponse is a budget with the spending of the requested month
type BudgetResponse struct {
	ID        string          `json:"id"`
	Category  string          `json:"category"`
	Limit     decimal.Decimal `json:"limit"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	Percent   decimal.Decimal `json:"percent"`
	NearLimit bool            `json:"near_limit"`
	Exceeded  bool            `json:"exceeded"`
	Profile   profile.Profile `json:"profile"`
}

// BudgetOverviewResponse lists the budgets of a month with their totals
type BudgetOverviewResponse struct {
	Month         string           `json:"month"`
	Budgets       []BudgetResponse `json:"budgets"`
	TotalBudgeted decimal.Decimal  `json:"total_budgeted"`
	TotalSpent    decimal.Decimal  `json:"total_spent"`
	Remaining     decimal.Decimal  `json:"remaining"`
}

// CategoryResponse is a category in use by the active profile
type CategoryResponse struct {
	Name         string `json:"name"`
	Transactions int    `json:"transactions"`
	Budgeted     bool   `json:"budgeted"`
}

// SummaryResponse totals the transactions of the analytics period
type SummaryResponse struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	Net              decimal.Decimal `json:"net"`
	TransactionCount int             `json:"transaction_count"`
}

// CategoryTotalResponse is the spending of one category
type CategoryTotalResponse struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// AnalyticsResponse is the cash flow of a period; to is inclusive
type AnalyticsResponse struct {
	From       string                  `json:"from"`
	To         string                  `json:"to"`
	Summary    SummaryResponse         `json:"summary"`
	ByCategory []CategoryTotalResponse `json:"by_category"`
}
