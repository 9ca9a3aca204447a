package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/koshapp/kosh-backend/internal/domain"
	"github.com/koshapp/kosh-backend/internal/testutil"
)

type budgetTestEnv struct {
	budgetRepo      *testutil.MockBudgetRepository
	categoryRepo    *testutil.MockCategoryRepository
	transactionRepo *testutil.MockTransactionRepository
	service         *BudgetService
}

func newBudgetTestEnv() *budgetTestEnv {
	budgetRepo := testutil.NewMockBudgetRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	accountRepo := testutil.NewMockAccountRepository()
	contactRepo := testutil.NewMockContactRepository()
	transactionRepo := testutil.NewMockTransactionRepository(accountRepo, contactRepo)
	return &budgetTestEnv{
		budgetRepo:      budgetRepo,
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
		service:         NewBudgetService(budgetRepo, categoryRepo, transactionRepo),
	}
}

func (e *budgetTestEnv) addExpense(userID, categoryID int32, amount int64, date time.Time) {
	id := categoryID
	e.transactionRepo.AddTransaction(&domain.Transaction{
		ID:              e.transactionRepo.NextID,
		UserID:          userID,
		Type:            domain.TransactionTypeExpense,
		Amount:          decimal.NewFromInt(amount),
		AccountID:       1,
		CategoryID:      &id,
		TransactionDate: date,
	})
	e.transactionRepo.NextID++
}

func TestCreateBudget_Success(t *testing.T) {
	env := newBudgetTestEnv()
	scope := domain.UserScope(1)
	env.categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: 1, Name: "Groceries", Type: domain.CategoryTypeExpense, IsActive: true,
	})

	budget, err := env.service.CreateBudget(scope, BudgetInput{
		CategoryID: 1,
		Amount:     decimal.NewFromInt(1000),
		Period:     domain.BudgetPeriodMonthly,
		StartDate:  time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if budget.CategoryID != 1 {
		t.Errorf("Expected category 1, got %d", budget.CategoryID)
	}
	if !budget.IsActive {
		t.Error("Expected new budget to be active")
	}
}

func TestCreateBudget_InvalidPeriod(t *testing.T) {
	env := newBudgetTestEnv()
	env.categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: 1, Name: "Groceries", Type: domain.CategoryTypeExpense, IsActive: true,
	})

	_, err := env.service.CreateBudget(domain.UserScope(1), BudgetInput{
		CategoryID: 1,
		Amount:     decimal.NewFromInt(1000),
		Period:     "fortnightly",
		StartDate:  time.Now().UTC(),
	})
	if err != domain.ErrInvalidBudgetPeriod {
		t.Errorf("Expected ErrInvalidBudgetPeriod, got %v", err)
	}
}

func TestCreateBudget_NonPositiveAmount(t *testing.T) {
	env := newBudgetTestEnv()
	env.categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: 1, Name: "Groceries", Type: domain.CategoryTypeExpense, IsActive: true,
	})

	_, err := env.service.CreateBudget(domain.UserScope(1), BudgetInput{
		CategoryID: 1,
		Amount:     decimal.Zero,
		Period:     domain.BudgetPeriodMonthly,
		StartDate:  time.Now().UTC(),
	})
	if err != domain.ErrInvalidAmount {
		t.Errorf("Expected ErrInvalidAmount, got %v", err)
	}
}

func TestCreateBudget_EndBeforeStart(t *testing.T) {
	env := newBudgetTestEnv()
	env.categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: 1, Name: "Groceries", Type: domain.CategoryTypeExpense, IsActive: true,
	})

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	_, err := env.service.CreateBudget(domain.UserScope(1), BudgetInput{
		CategoryID: 1,
		Amount:     decimal.NewFromInt(1000),
		Period:     domain.BudgetPeriodMonthly,
		StartDate:  start,
		EndDate:    &end,
	})
	if err != domain.ErrInvalidDateRange {
		t.Errorf("Expected ErrInvalidDateRange, got %v", err)
	}
}

func TestCreateBudget_CategoryNotFound(t *testing.T) {
	env := newBudgetTestEnv()

	_, err := env.service.CreateBudget(domain.UserScope(1), BudgetInput{
		CategoryID: 42,
		Amount:     decimal.NewFromInt(1000),
		Period:     domain.BudgetPeriodMonthly,
		StartDate:  time.Now().UTC(),
	})
	if err != domain.ErrCategoryNotFound {
		t.Errorf("Expected ErrCategoryNotFound, got %v", err)
	}
}

func TestGetBudgetByID_UsageComputed(t *testing.T) {
	env := newBudgetTestEnv()
	scope := domain.UserScope(1)
	env.categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: 1, Name: "Groceries", Type: domain.CategoryTypeExpense, IsActive: true,
	})
	start := time.Now().UTC().AddDate(0, 0, -10)
	env.budgetRepo.AddBudget(&domain.Budget{
		ID: 1, UserID: 1, CategoryID: 1,
		Amount: decimal.NewFromInt(1000), Period: domain.BudgetPeriodMonthly,
		StartDate: start, IsActive: true,
	})

	env.addExpense(1, 1, 200, time.Now().UTC().AddDate(0, 0, -5))
	env.addExpense(1, 1, 50, time.Now().UTC().AddDate(0, 0, -1))
	// Outside the window
	env.addExpense(1, 1, 999, start.AddDate(0, 0, -1))

	usage, err := env.service.GetBudgetByID(scope, 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !usage.SpentAmount.Equal(decimal.NewFromInt(250)) {
		t.Errorf("Expected spent 250, got %s", usage.SpentAmount.String())
	}
	if !usage.RemainingAmount.Equal(decimal.NewFromInt(750)) {
		t.Errorf("Expected remaining 750, got %s", usage.RemainingAmount.String())
	}
	if !usage.PercentageUsed.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Expected 25%% used, got %s", usage.PercentageUsed.String())
	}
	if usage.OverBudget {
		t.Error("Expected budget not over")
	}
}

func TestGetBudgetByID_IncludesSubcategories(t *testing.T) {
	env := newBudgetTestEnv()
	scope := domain.UserScope(1)
	env.categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: 1, Name: "Food", Type: domain.CategoryTypeExpense, IsActive: true,
	})
	env.categoryRepo.AddCategory(&domain.Category{
		ID: 2, UserID: 1, Name: "Restaurants", Type: domain.CategoryTypeExpense,
		ParentID: int32Ptr(1), IsActive: true,
	})
	start := time.Now().UTC().AddDate(0, 0, -10)
	env.budgetRepo.AddBudget(&domain.Budget{
		ID: 1, UserID: 1, CategoryID: 1,
		Amount: decimal.NewFromInt(500), Period: domain.BudgetPeriodMonthly,
		StartDate: start, IncludeSubcategories: true, IsActive: true,
	})

	env.addExpense(1, 1, 100, time.Now().UTC().AddDate(0, 0, -3))
	env.addExpense(1, 2, 150, time.Now().UTC().AddDate(0, 0, -2))

	usage, err := env.service.GetBudgetByID(scope, 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !usage.SpentAmount.Equal(decimal.NewFromInt(250)) {
		t.Errorf("Expected spent 250 across subcategories, got %s", usage.SpentAmount.String())
	}
}

func TestGetBudgetByID_ExcludesSubcategoriesByDefault(t *testing.T) {
	env := newBudgetTestEnv()
	scope := domain.UserScope(1)
	env.categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: 1, Name: "Food", Type: domain.CategoryTypeExpense, IsActive: true,
	})
	env.categoryRepo.AddCategory(&domain.Category{
		ID: 2, UserID: 1, Name: "Restaurants", Type: domain.CategoryTypeExpense,
		ParentID: int32Ptr(1), IsActive: true,
	})
	start := time.Now().UTC().AddDate(0, 0, -10)
	env.budgetRepo.AddBudget(&domain.Budget{
		ID: 1, UserID: 1, CategoryID: 1,
		Amount: decimal.NewFromInt(500), Period: domain.BudgetPeriodMonthly,
		StartDate: start, IsActive: true,
	})

	env.addExpense(1, 1, 100, time.Now().UTC().AddDate(0, 0, -3))
	env.addExpense(1, 2, 150, time.Now().UTC().AddDate(0, 0, -2))

	usage, err := env.service.GetBudgetByID(scope, 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !usage.SpentAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected spent 100 for category alone, got %s", usage.SpentAmount.String())
	}
}

func TestGetBudgetByID_OverBudget(t *testing.T) {
	env := newBudgetTestEnv()
	scope := domain.UserScope(1)
	env.categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: 1, Name: "Groceries", Type: domain.CategoryTypeExpense, IsActive: true,
	})
	start := time.Now().UTC().AddDate(0, 0, -10)
	env.budgetRepo.AddBudget(&domain.Budget{
		ID: 1, UserID: 1, CategoryID: 1,
		Amount: decimal.NewFromInt(200), Period: domain.BudgetPeriodMonthly,
		StartDate: start, IsActive: true,
	})

	env.addExpense(1, 1, 300, time.Now().UTC().AddDate(0, 0, -1))

	usage, err := env.service.GetBudgetByID(scope, 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !usage.OverBudget {
		t.Error("Expected budget to be over")
	}
	if !usage.RemainingAmount.Equal(decimal.NewFromInt(-100)) {
		t.Errorf("Expected remaining -100, got %s", usage.RemainingAmount.String())
	}
	if !usage.PercentageUsed.Equal(decimal.NewFromInt(150)) {
		t.Errorf("Expected 150%% used, got %s", usage.PercentageUsed.String())
	}
}

func TestGetBudgets_ComputesUsageForEach(t *testing.T) {
	env := newBudgetTestEnv()
	scope := domain.UserScope(1)
	env.categoryRepo.AddCategory(&domain.Category{
		ID: 1, UserID: 1, Name: "Groceries", Type: domain.CategoryTypeExpense, IsActive: true,
	})
	env.categoryRepo.AddCategory(&domain.Category{
		ID: 2, UserID: 1, Name: "Transport", Type: domain.CategoryTypeExpense, IsActive: true,
	})
	start := time.Now().UTC().AddDate(0, 0, -10)
	env.budgetRepo.AddBudget(&domain.Budget{
		ID: 1, UserID: 1, CategoryID: 1,
		Amount: decimal.NewFromInt(500), Period: domain.BudgetPeriodMonthly,
		StartDate: start, IsActive: true,
	})
	env.budgetRepo.AddBudget(&domain.Budget{
		ID: 2, UserID: 1, CategoryID: 2,
		Amount: decimal.NewFromInt(300), Period: domain.BudgetPeriodMonthly,
		StartDate: start, IsActive: true,
	})

	env.addExpense(1, 1, 100, time.Now().UTC().AddDate(0, 0, -2))
	env.addExpense(1, 2, 60, time.Now().UTC().AddDate(0, 0, -2))

	usages, err := env.service.GetBudgets(scope, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(usages) != 2 {
		t.Fatalf("Expected 2 budgets, got %d", len(usages))
	}
	if !usages[0].SpentAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected first budget spent 100, got %s", usages[0].SpentAmount.String())
	}
	if !usages[1].SpentAmount.Equal(decimal.NewFromInt(60)) {
		t.Errorf("Expected second budget spent 60, got %s", usages[1].SpentAmount.String())
	}
}
