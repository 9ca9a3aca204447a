package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/koshapp/kosh-backend/internal/domain"
	"github.com/koshapp/kosh-backend/internal/testutil"
)

type reportTestEnv struct {
	transactionRepo *testutil.MockTransactionRepository
	service         *ReportService
}

func newReportTestEnv() *reportTestEnv {
	accountRepo := testutil.NewMockAccountRepository()
	contactRepo := testutil.NewMockContactRepository()
	transactionRepo := testutil.NewMockTransactionRepository(accountRepo, contactRepo)
	return &reportTestEnv{
		transactionRepo: transactionRepo,
		service:         NewReportService(transactionRepo, accountRepo),
	}
}

func (e *reportTestEnv) add(userID int32, txType domain.TransactionType, amount int64, date time.Time, categoryID *int32, categoryName *string) {
	e.transactionRepo.AddTransaction(&domain.Transaction{
		ID:              e.transactionRepo.NextID,
		UserID:          userID,
		Type:            txType,
		Amount:          decimal.NewFromInt(amount),
		AccountID:       1,
		CategoryID:      categoryID,
		CategoryName:    categoryName,
		TransactionDate: date,
	})
	e.transactionRepo.NextID++
}

func TestGetStatistics_NetSavings(t *testing.T) {
	env := newReportTestEnv()
	scope := domain.UserScope(1)
	now := time.Now().UTC()

	env.add(1, domain.TransactionTypeIncome, 5000, now, nil, nil)
	env.add(1, domain.TransactionTypeExpense, 1200, now, nil, nil)
	env.add(1, domain.TransactionTypeTransfer, 300, now, nil, nil)
	// Last year's entries stay out of the yearly window
	env.add(1, domain.TransactionTypeIncome, 9999, now.AddDate(-1, 0, 0), nil, nil)

	stats, err := env.service.GetStatistics(scope, domain.PeriodYear)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !stats.TotalIncome.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("Expected income 5000, got %s", stats.TotalIncome.String())
	}
	if !stats.TotalExpense.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("Expected expense 1200, got %s", stats.TotalExpense.String())
	}
	if !stats.NetSavings.Equal(decimal.NewFromInt(3800)) {
		t.Errorf("Expected net savings 3800, got %s", stats.NetSavings.String())
	}
	if !stats.TotalTransfers.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Expected transfers 300, got %s", stats.TotalTransfers.String())
	}
	if stats.Period != domain.PeriodYear {
		t.Errorf("Expected period 'year', got %s", stats.Period)
	}
}

func TestGetStatistics_InvalidPeriod(t *testing.T) {
	env := newReportTestEnv()

	_, err := env.service.GetStatistics(domain.UserScope(1), "quarter")
	if err != domain.ErrInvalidReportPeriod {
		t.Errorf("Expected ErrInvalidReportPeriod, got %v", err)
	}
}

func TestGetSpendingByCategory_LargestFirst(t *testing.T) {
	env := newReportTestEnv()
	scope := domain.UserScope(1)
	now := time.Now().UTC()

	groceries := "Groceries"
	transport := "Transport"
	env.add(1, domain.TransactionTypeExpense, 100, now, int32Ptr(1), &groceries)
	env.add(1, domain.TransactionTypeExpense, 400, now, int32Ptr(2), &transport)
	env.add(1, domain.TransactionTypeExpense, 50, now, nil, nil)

	rows, err := env.service.GetSpendingByCategory(scope, domain.PeriodYear)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if rows[0].Category != "Transport" || !rows[0].Total.Equal(decimal.NewFromInt(400)) {
		t.Errorf("Expected Transport 400 first, got %s %s", rows[0].Category, rows[0].Total.String())
	}
	if rows[2].Category != "Uncategorized" {
		t.Errorf("Expected uncategorized row last, got %s", rows[2].Category)
	}
}

func TestPeriodRange_Today(t *testing.T) {
	now := time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)
	start, end := periodRange(domain.PeriodToday, now)

	if !start.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected start of day, got %v", start)
	}
	if !end.Equal(now) {
		t.Errorf("Expected range to end now, got %v", end)
	}
}

func TestPeriodRange_WeekStartsMonday(t *testing.T) {
	// 2026-09-06 is a Sunday; the week began Monday 2026-08-31
	now := time.Date(2026, 9, 6, 12, 0, 0, 0, time.UTC)
	start, _ := periodRange(domain.PeriodWeek, now)

	if !start.Equal(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected Monday 2026-08-31, got %v", start)
	}

	// A Monday is its own week start
	monday := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	start, _ = periodRange(domain.PeriodWeek, monday)
	if !start.Equal(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected same Monday, got %v", start)
	}
}

func TestPeriodRange_Month(t *testing.T) {
	now := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	start, _ := periodRange(domain.PeriodMonth, now)

	if !start.Equal(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected first of month, got %v", start)
	}
}

func TestPeriodRange_Year(t *testing.T) {
	now := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	start, _ := periodRange(domain.PeriodYear, now)

	if !start.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected first of year, got %v", start)
	}
}

func TestPeriodRange_UnknownCollapsesToToday(t *testing.T) {
	now := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	start, end := periodRange(domain.ReportPeriod("fortnight"), now)

	if !start.Equal(time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected start of day for unknown period, got %v", start)
	}
	if !end.Equal(now) {
		t.Errorf("Expected range to end now, got %v", end)
	}
}
