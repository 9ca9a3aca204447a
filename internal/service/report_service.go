package service

import (
	"time"

	"github.com/koshapp/kosh-backend/internal/domain"
)

// ReportService computes read-side aggregations over the ledger
type ReportService struct {
	transactionRepo domain.TransactionRepository
	accountRepo     domain.AccountRepository
}

// NewReportService creates a new ReportService
func NewReportService(transactionRepo domain.TransactionRepository, accountRepo domain.AccountRepository) *ReportService {
	return &ReportService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
	}
}

// GetStatistics sums income, expenses and transfers over the named period
func (s *ReportService) GetStatistics(scope domain.Scope, period domain.ReportPeriod) (*domain.Statistics, error) {
	if !period.Valid() {
		return nil, domain.ErrInvalidReportPeriod
	}
	start, end := periodRange(period, time.Now().UTC())

	income, err := s.transactionRepo.SumByTypeAndDateRange(scope, domain.TransactionTypeIncome, start, end)
	if err != nil {
		return nil, err
	}
	expense, err := s.transactionRepo.SumByTypeAndDateRange(scope, domain.TransactionTypeExpense, start, end)
	if err != nil {
		return nil, err
	}
	transfers, err := s.transactionRepo.SumByTypeAndDateRange(scope, domain.TransactionTypeTransfer, start, end)
	if err != nil {
		return nil, err
	}

	return &domain.Statistics{
		Period:         period,
		TotalIncome:    income,
		TotalExpense:   expense,
		NetSavings:     income.Sub(expense),
		TotalTransfers: transfers,
	}, nil
}

// GetSpendingByCategory groups expense totals by category over the named
// period, largest first
func (s *ReportService) GetSpendingByCategory(scope domain.Scope, period domain.ReportPeriod) ([]*domain.CategorySpending, error) {
	if !period.Valid() {
		return nil, domain.ErrInvalidReportPeriod
	}
	start, end := periodRange(period, time.Now().UTC())
	return s.transactionRepo.SpendingByCategory(scope, start, end)
}

// periodRange resolves a named period to a closed date range ending now.
// Weeks start on Monday. Unknown periods collapse to the today window, so
// the helper stays safe even when a caller skips Valid().
func periodRange(period domain.ReportPeriod, now time.Time) (time.Time, time.Time) {
	year, month, day := now.Date()
	startOfDay := time.Date(year, month, day, 0, 0, 0, 0, now.Location())

	switch period {
	case domain.PeriodWeek:
		offset := (int(now.Weekday()) + 6) % 7
		return startOfDay.AddDate(0, 0, -offset), now
	case domain.PeriodMonth:
		return time.Date(year, month, 1, 0, 0, 0, 0, now.Location()), now
	case domain.PeriodYear:
		return time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location()), now
	}
	return startOfDay, now
}
