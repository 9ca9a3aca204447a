package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/koshapp/kosh-backend/internal/domain"
	"github.com/koshapp/kosh-backend/internal/testutil"
)

type transactionTestEnv struct {
	accountRepo     *testutil.MockAccountRepository
	categoryRepo    *testutil.MockCategoryRepository
	contactRepo     *testutil.MockContactRepository
	transactionRepo *testutil.MockTransactionRepository
	service         *TransactionService
}

func newTransactionTestEnv() *transactionTestEnv {
	accountRepo := testutil.NewMockAccountRepository()
	categoryRepo := testutil.NewMockCategoryRepository()
	contactRepo := testutil.NewMockContactRepository()
	transactionRepo := testutil.NewMockTransactionRepository(accountRepo, contactRepo)
	return &transactionTestEnv{
		accountRepo:     accountRepo,
		categoryRepo:    categoryRepo,
		contactRepo:     contactRepo,
		transactionRepo: transactionRepo,
		service:         NewTransactionService(transactionRepo, accountRepo, categoryRepo, contactRepo),
	}
}

func (e *transactionTestEnv) addAccount(id, userID int32, balance decimal.Decimal) *domain.Account {
	account := &domain.Account{
		ID:       id,
		UserID:   userID,
		Name:     "Test Account",
		Type:     domain.AccountTypeAsset,
		Subtype:  domain.SubtypeBankAccount,
		Balance:  balance,
		IsActive: true,
	}
	e.accountRepo.AddAccount(account)
	return account
}

func (e *transactionTestEnv) addCategory(id, userID int32, categoryType domain.CategoryType) *domain.Category {
	category := &domain.Category{
		ID:       id,
		UserID:   userID,
		Name:     "Test Category",
		Type:     categoryType,
		IsActive: true,
	}
	e.categoryRepo.AddCategory(category)
	return category
}

func (e *transactionTestEnv) addContact(id, userID int32, balance decimal.Decimal) *domain.Contact {
	contact := &domain.Contact{
		ID:       id,
		UserID:   userID,
		Name:     "Test Contact",
		Balance:  balance,
		IsActive: true,
	}
	e.contactRepo.AddContact(contact)
	return contact
}

func int32Ptr(v int32) *int32 {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func TestCreateTransaction_IncomeIncreasesBalance(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	account := env.addAccount(1, 1, decimal.NewFromInt(100))
	env.addCategory(1, 1, domain.CategoryTypeIncome)

	transaction, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:       domain.TransactionTypeIncome,
		Amount:     decimal.NewFromInt(500),
		AccountID:  1,
		CategoryID: int32Ptr(1),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if transaction.Type != domain.TransactionTypeIncome {
		t.Errorf("Expected type 'income', got %s", transaction.Type)
	}
	if !account.Balance.Equal(decimal.NewFromInt(600)) {
		t.Errorf("Expected balance 600, got %s", account.Balance.String())
	}
}

func TestCreateTransaction_ExpenseDecreasesBalance(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	account := env.addAccount(1, 1, decimal.NewFromInt(100))
	env.addCategory(1, 1, domain.CategoryTypeExpense)

	_, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:       domain.TransactionTypeExpense,
		Amount:     decimal.NewFromInt(30),
		AccountID:  1,
		CategoryID: int32Ptr(1),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !account.Balance.Equal(decimal.NewFromInt(70)) {
		t.Errorf("Expected balance 70, got %s", account.Balance.String())
	}
}

func TestCreateTransaction_TransferMovesBetweenAccounts(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	source := env.addAccount(1, 1, decimal.NewFromInt(1000))
	destination := env.addAccount(2, 1, decimal.NewFromInt(50))

	_, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:        domain.TransactionTypeTransfer,
		Amount:      decimal.NewFromInt(200),
		AccountID:   1,
		ToAccountID: int32Ptr(2),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !source.Balance.Equal(decimal.NewFromInt(800)) {
		t.Errorf("Expected source balance 800, got %s", source.Balance.String())
	}
	if !destination.Balance.Equal(decimal.NewFromInt(250)) {
		t.Errorf("Expected destination balance 250, got %s", destination.Balance.String())
	}
}

func TestCreateTransaction_LentMovesToContact(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	account := env.addAccount(1, 1, decimal.NewFromInt(500))
	contact := env.addContact(1, 1, decimal.Zero)

	_, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:      domain.TransactionTypeLent,
		Amount:    decimal.NewFromInt(100),
		AccountID: 1,
		ContactID: int32Ptr(1),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !account.Balance.Equal(decimal.NewFromInt(400)) {
		t.Errorf("Expected account balance 400, got %s", account.Balance.String())
	}
	if !contact.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected contact balance 100, got %s", contact.Balance.String())
	}
	if contact.Status() != domain.BalanceStatusOwesYou {
		t.Errorf("Expected status 'owes_you', got %s", contact.Status())
	}
}

func TestCreateTransaction_BorrowedIncreasesAccount(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	account := env.addAccount(1, 1, decimal.NewFromInt(50))
	contact := env.addContact(1, 1, decimal.Zero)

	_, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:      domain.TransactionTypeBorrowed,
		Amount:    decimal.NewFromInt(200),
		AccountID: 1,
		ContactID: int32Ptr(1),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !account.Balance.Equal(decimal.NewFromInt(250)) {
		t.Errorf("Expected account balance 250, got %s", account.Balance.String())
	}
	if !contact.Balance.Equal(decimal.NewFromInt(-200)) {
		t.Errorf("Expected contact balance -200, got %s", contact.Balance.String())
	}
	if contact.Status() != domain.BalanceStatusYouOwe {
		t.Errorf("Expected status 'you_owe', got %s", contact.Status())
	}
}

func TestCreateTransaction_RepaymentInSettlesLentDebt(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	account := env.addAccount(1, 1, decimal.NewFromInt(400))
	contact := env.addContact(1, 1, decimal.NewFromInt(100))

	_, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:      domain.TransactionTypeRepaymentIn,
		Amount:    decimal.NewFromInt(100),
		AccountID: 1,
		ContactID: int32Ptr(1),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !account.Balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected account balance 500, got %s", account.Balance.String())
	}
	if !contact.Settled() {
		t.Errorf("Expected contact settled, got balance %s", contact.Balance.String())
	}
}

func TestCreateTransaction_RepaymentOutSettlesBorrowedDebt(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	account := env.addAccount(1, 1, decimal.NewFromInt(250))
	contact := env.addContact(1, 1, decimal.NewFromInt(-200))

	_, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:      domain.TransactionTypeRepaymentOut,
		Amount:    decimal.NewFromInt(200),
		AccountID: 1,
		ContactID: int32Ptr(1),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !account.Balance.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected account balance 50, got %s", account.Balance.String())
	}
	if !contact.Settled() {
		t.Errorf("Expected contact settled, got balance %s", contact.Balance.String())
	}
}

func TestCreateTransaction_InvalidType(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	env.addAccount(1, 1, decimal.Zero)

	_, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:      "investment",
		Amount:    decimal.NewFromInt(100),
		AccountID: 1,
	})
	if err != domain.ErrInvalidTransactionType {
		t.Errorf("Expected ErrInvalidTransactionType, got %v", err)
	}
}

func TestCreateTransaction_NonPositiveAmount(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	env.addAccount(1, 1, decimal.Zero)
	env.addCategory(1, 1, domain.CategoryTypeExpense)

	for _, amount := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-50)} {
		_, err := env.service.CreateTransaction(scope, TransactionInput{
			Type:       domain.TransactionTypeExpense,
			Amount:     amount,
			AccountID:  1,
			CategoryID: int32Ptr(1),
		})
		if err != domain.ErrInvalidAmount {
			t.Errorf("Amount %s: expected ErrInvalidAmount, got %v", amount.String(), err)
		}
	}
}

func TestCreateTransaction_AccountNotFound(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	env.addCategory(1, 1, domain.CategoryTypeExpense)

	_, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:       domain.TransactionTypeExpense,
		Amount:     decimal.NewFromInt(100),
		AccountID:  99,
		CategoryID: int32Ptr(1),
	})
	if err != domain.ErrAccountNotFound {
		t.Errorf("Expected ErrAccountNotFound, got %v", err)
	}
}

func TestCreateTransaction_OtherUsersAccountNotVisible(t *testing.T) {
	env := newTransactionTestEnv()
	env.addAccount(1, 2, decimal.Zero)
	env.addCategory(1, 1, domain.CategoryTypeExpense)

	_, err := env.service.CreateTransaction(domain.UserScope(1), TransactionInput{
		Type:       domain.TransactionTypeExpense,
		Amount:     decimal.NewFromInt(100),
		AccountID:  1,
		CategoryID: int32Ptr(1),
	})
	if err != domain.ErrAccountNotFound {
		t.Errorf("Expected ErrAccountNotFound, got %v", err)
	}
}

func TestCreateTransaction_TransferRequiresDestination(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	env.addAccount(1, 1, decimal.Zero)

	_, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:      domain.TransactionTypeTransfer,
		Amount:    decimal.NewFromInt(100),
		AccountID: 1,
	})
	if err != domain.ErrDestinationRequired {
		t.Errorf("Expected ErrDestinationRequired, got %v", err)
	}
}

func TestCreateTransaction_TransferSameAccount(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	env.addAccount(1, 1, decimal.Zero)

	_, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:        domain.TransactionTypeTransfer,
		Amount:      decimal.NewFromInt(100),
		AccountID:   1,
		ToAccountID: int32Ptr(1),
	})
	if err != domain.ErrSameAccountTransfer {
		t.Errorf("Expected ErrSameAccountTransfer, got %v", err)
	}
}

func TestCreateTransaction_ExpenseRequiresCategory(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	env.addAccount(1, 1, decimal.Zero)

	_, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:      domain.TransactionTypeExpense,
		Amount:    decimal.NewFromInt(100),
		AccountID: 1,
	})
	if err != domain.ErrCategoryRequired {
		t.Errorf("Expected ErrCategoryRequired, got %v", err)
	}
}

func TestCreateTransaction_CategoryTypeMismatch(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	env.addAccount(1, 1, decimal.Zero)
	env.addCategory(1, 1, domain.CategoryTypeIncome)

	_, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:       domain.TransactionTypeExpense,
		Amount:     decimal.NewFromInt(100),
		AccountID:  1,
		CategoryID: int32Ptr(1),
	})
	if err != domain.ErrInvalidCategoryType {
		t.Errorf("Expected ErrInvalidCategoryType, got %v", err)
	}
}

func TestCreateTransaction_DebtRequiresContact(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	env.addAccount(1, 1, decimal.Zero)

	for _, txType := range []domain.TransactionType{
		domain.TransactionTypeLent,
		domain.TransactionTypeBorrowed,
		domain.TransactionTypeRepaymentIn,
		domain.TransactionTypeRepaymentOut,
	} {
		_, err := env.service.CreateTransaction(scope, TransactionInput{
			Type:      txType,
			Amount:    decimal.NewFromInt(100),
			AccountID: 1,
		})
		if err != domain.ErrContactRequired {
			t.Errorf("Type %s: expected ErrContactRequired, got %v", txType, err)
		}
	}
}

func TestCreateTransaction_TransferClearsCategoryAndContact(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	env.addAccount(1, 1, decimal.NewFromInt(100))
	env.addAccount(2, 1, decimal.Zero)
	env.addCategory(1, 1, domain.CategoryTypeExpense)
	env.addContact(1, 1, decimal.Zero)

	transaction, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:        domain.TransactionTypeTransfer,
		Amount:      decimal.NewFromInt(10),
		AccountID:   1,
		ToAccountID: int32Ptr(2),
		CategoryID:  int32Ptr(1),
		ContactID:   int32Ptr(1),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if transaction.CategoryID != nil {
		t.Error("Expected category to be cleared on transfer")
	}
	if transaction.ContactID != nil {
		t.Error("Expected contact to be cleared on transfer")
	}
}

func TestCreateTransaction_DefaultsDateToToday(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	env.addAccount(1, 1, decimal.Zero)
	env.addCategory(1, 1, domain.CategoryTypeIncome)

	transaction, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:       domain.TransactionTypeIncome,
		Amount:     decimal.NewFromInt(100),
		AccountID:  1,
		CategoryID: int32Ptr(1),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if !transaction.TransactionDate.Equal(today) {
		t.Errorf("Expected date %v, got %v", today, transaction.TransactionDate)
	}
}

func TestCreateTransaction_TrimsTitle(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	env.addAccount(1, 1, decimal.Zero)
	env.addCategory(1, 1, domain.CategoryTypeIncome)

	transaction, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:       domain.TransactionTypeIncome,
		Amount:     decimal.NewFromInt(100),
		AccountID:  1,
		CategoryID: int32Ptr(1),
		Title:      strPtr("  Salary  "),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if transaction.Title == nil || *transaction.Title != "Salary" {
		t.Errorf("Expected title 'Salary', got %v", transaction.Title)
	}
}

func TestCreateTransaction_BlankTitleDropped(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	env.addAccount(1, 1, decimal.Zero)
	env.addCategory(1, 1, domain.CategoryTypeIncome)

	transaction, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:       domain.TransactionTypeIncome,
		Amount:     decimal.NewFromInt(100),
		AccountID:  1,
		CategoryID: int32Ptr(1),
		Title:      strPtr("   "),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if transaction.Title != nil {
		t.Errorf("Expected blank title to be dropped, got %q", *transaction.Title)
	}
}

func TestUpdateTransaction_RebalancesAccounts(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	first := env.addAccount(1, 1, decimal.NewFromInt(100))
	second := env.addAccount(2, 1, decimal.NewFromInt(100))
	env.addCategory(1, 1, domain.CategoryTypeExpense)

	transaction, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:       domain.TransactionTypeExpense,
		Amount:     decimal.NewFromInt(40),
		AccountID:  1,
		CategoryID: int32Ptr(1),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !first.Balance.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("Expected balance 60 after create, got %s", first.Balance.String())
	}

	// Move the expense to the other account with a different amount
	_, err = env.service.UpdateTransaction(scope, transaction.ID, TransactionInput{
		Type:       domain.TransactionTypeExpense,
		Amount:     decimal.NewFromInt(25),
		AccountID:  2,
		CategoryID: int32Ptr(1),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !first.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected first account restored to 100, got %s", first.Balance.String())
	}
	if !second.Balance.Equal(decimal.NewFromInt(75)) {
		t.Errorf("Expected second account at 75, got %s", second.Balance.String())
	}
}

func TestUpdateTransaction_ChangesTypeAcrossLedgerSides(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	account := env.addAccount(1, 1, decimal.NewFromInt(100))
	contact := env.addContact(1, 1, decimal.Zero)
	env.addCategory(1, 1, domain.CategoryTypeExpense)

	transaction, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:       domain.TransactionTypeExpense,
		Amount:     decimal.NewFromInt(50),
		AccountID:  1,
		CategoryID: int32Ptr(1),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	_, err = env.service.UpdateTransaction(scope, transaction.ID, TransactionInput{
		Type:      domain.TransactionTypeLent,
		Amount:    decimal.NewFromInt(50),
		AccountID: 1,
		ContactID: int32Ptr(1),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !account.Balance.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected account balance 50, got %s", account.Balance.String())
	}
	if !contact.Balance.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected contact balance 50, got %s", contact.Balance.String())
	}
}

func TestDeleteTransaction_RestoresBalances(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	account := env.addAccount(1, 1, decimal.NewFromInt(500))
	contact := env.addContact(1, 1, decimal.Zero)

	transaction, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:      domain.TransactionTypeLent,
		Amount:    decimal.NewFromInt(150),
		AccountID: 1,
		ContactID: int32Ptr(1),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := env.service.DeleteTransaction(scope, transaction.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !account.Balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected account balance restored to 500, got %s", account.Balance.String())
	}
	if !contact.Settled() {
		t.Errorf("Expected contact settled, got balance %s", contact.Balance.String())
	}

	if _, err := env.service.GetTransactionByID(scope, transaction.ID); err != domain.ErrTransactionNotFound {
		t.Errorf("Expected ErrTransactionNotFound after delete, got %v", err)
	}
}

func TestGetTransactions_InvalidDateRange(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := env.service.GetTransactions(scope, &domain.TransactionFilters{
		StartDate: &start,
		EndDate:   &end,
	})
	if err != domain.ErrInvalidDateRange {
		t.Errorf("Expected ErrInvalidDateRange, got %v", err)
	}
}

func TestGetTransactions_InvalidTypeFilter(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)

	badType := domain.TransactionType("refund")
	_, err := env.service.GetTransactions(scope, &domain.TransactionFilters{Type: &badType})
	if err != domain.ErrInvalidTransactionType {
		t.Errorf("Expected ErrInvalidTransactionType, got %v", err)
	}
}

func TestGetTransactions_ScopedToOwner(t *testing.T) {
	env := newTransactionTestEnv()
	env.addAccount(1, 1, decimal.Zero)
	env.addAccount(2, 2, decimal.Zero)
	env.addCategory(1, 1, domain.CategoryTypeIncome)
	env.addCategory(2, 2, domain.CategoryTypeIncome)

	if _, err := env.service.CreateTransaction(domain.UserScope(1), TransactionInput{
		Type:       domain.TransactionTypeIncome,
		Amount:     decimal.NewFromInt(100),
		AccountID:  1,
		CategoryID: int32Ptr(1),
	}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := env.service.CreateTransaction(domain.UserScope(2), TransactionInput{
		Type:       domain.TransactionTypeIncome,
		Amount:     decimal.NewFromInt(200),
		AccountID:  2,
		CategoryID: int32Ptr(2),
	}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	page, err := env.service.GetTransactions(domain.UserScope(1), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if page.TotalItems != 1 {
		t.Errorf("Expected 1 transaction for user 1, got %d", page.TotalItems)
	}

	all, err := env.service.GetTransactions(domain.AllUsers(), nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if all.TotalItems != 2 {
		t.Errorf("Expected 2 transactions under the bypass scope, got %d", all.TotalItems)
	}
}

func TestGetTransactions_PeriodFilter(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	now := time.Now().UTC()

	env.transactionRepo.AddTransaction(&domain.Transaction{
		ID:              1,
		UserID:          1,
		Type:            domain.TransactionTypeExpense,
		Amount:          decimal.NewFromInt(10),
		AccountID:       1,
		TransactionDate: now,
	})
	env.transactionRepo.AddTransaction(&domain.Transaction{
		ID:              2,
		UserID:          1,
		Type:            domain.TransactionTypeExpense,
		Amount:          decimal.NewFromInt(20),
		AccountID:       1,
		TransactionDate: now.AddDate(-1, 0, 0),
	})

	period := domain.PeriodMonth
	page, err := env.service.GetTransactions(scope, &domain.TransactionFilters{Period: &period})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if page.TotalItems != 1 {
		t.Errorf("Expected 1 transaction inside the month window, got %d", page.TotalItems)
	}
}

func TestGetTransactions_InvalidPeriodFilter(t *testing.T) {
	env := newTransactionTestEnv()

	period := domain.ReportPeriod("quarter")
	_, err := env.service.GetTransactions(domain.UserScope(1), &domain.TransactionFilters{Period: &period})
	if err != domain.ErrInvalidReportPeriod {
		t.Errorf("Expected ErrInvalidReportPeriod, got %v", err)
	}
}

func TestDeleteTransaction_TransferRestoresBothBalances(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	env.addAccount(1, 1, decimal.NewFromInt(100))
	env.addAccount(2, 1, decimal.NewFromInt(50))

	transaction, err := env.service.CreateTransaction(scope, TransactionInput{
		Type:        domain.TransactionTypeTransfer,
		Amount:      decimal.NewFromInt(30),
		AccountID:   1,
		ToAccountID: int32Ptr(2),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	source, _ := env.accountRepo.GetByID(scope, 1)
	destination, _ := env.accountRepo.GetByID(scope, 2)
	if !source.Balance.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("Expected source at 70 after transfer, got %s", source.Balance.String())
	}
	if !destination.Balance.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("Expected destination at 80 after transfer, got %s", destination.Balance.String())
	}

	if err := env.service.DeleteTransaction(scope, transaction.ID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	source, _ = env.accountRepo.GetByID(scope, 1)
	destination, _ = env.accountRepo.GetByID(scope, 2)
	if !source.Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected source restored to 100, got %s", source.Balance.String())
	}
	if !destination.Balance.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected destination restored to 50, got %s", destination.Balance.String())
	}
}

func TestGetTransactions_SearchFilter(t *testing.T) {
	env := newTransactionTestEnv()
	scope := domain.UserScope(1)
	now := time.Now().UTC()

	env.transactionRepo.AddTransaction(&domain.Transaction{
		ID: 1, UserID: 1, Type: domain.TransactionTypeExpense,
		Amount: decimal.NewFromInt(10), AccountID: 1,
		TransactionDate: now, Title: strPtr("Weekly Groceries"),
	})
	env.transactionRepo.AddTransaction(&domain.Transaction{
		ID: 2, UserID: 1, Type: domain.TransactionTypeExpense,
		Amount: decimal.NewFromInt(20), AccountID: 1,
		TransactionDate: now, Description: strPtr("grocery run"),
	})
	env.transactionRepo.AddTransaction(&domain.Transaction{
		ID: 3, UserID: 1, Type: domain.TransactionTypeExpense,
		Amount: decimal.NewFromInt(30), AccountID: 1,
		TransactionDate: now, ReferenceNumber: strPtr("INV-1042"),
	})

	page, err := env.service.GetTransactions(scope, &domain.TransactionFilters{Search: "grocer"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if page.TotalItems != 2 {
		t.Errorf("Expected 2 matches on title and description, got %d", page.TotalItems)
	}

	page, err = env.service.GetTransactions(scope, &domain.TransactionFilters{Search: "inv-10"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if page.TotalItems != 1 {
		t.Errorf("Expected 1 match on reference number, got %d", page.TotalItems)
	}
	if page.Data[0].ID != 3 {
		t.Errorf("Expected transaction 3, got %d", page.Data[0].ID)
	}
}
