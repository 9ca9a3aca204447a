package testutil

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/koshapp/kosh-backend/internal/domain"
	"github.com/koshapp/kosh-backend/internal/ledger"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users   map[int32]*domain.User
	ByEmail map[string]*domain.User
	NextID  int32
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:   make(map[int32]*domain.User),
		ByEmail: make(map[string]*domain.User),
		NextID:  1,
	}
}

// Create creates a new user
func (m *MockUserRepository) Create(user *domain.User) (*domain.User, error) {
	if _, ok := m.ByEmail[user.Email]; ok {
		return nil, domain.ErrEmailTaken
	}
	user.ID = m.NextID
	m.NextID++
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	m.Users[user.ID] = user
	m.ByEmail[user.Email] = user
	return user, nil
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id int32) (*domain.User, error) {
	if user, ok := m.Users[id]; ok && user.DeletedAt == nil {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail retrieves a user by email
func (m *MockUserRepository) GetByEmail(email string) (*domain.User, error) {
	if user, ok := m.ByEmail[email]; ok && user.DeletedAt == nil {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// TouchLastLogin records the login timestamp
func (m *MockUserRepository) TouchLastLogin(id int32, at time.Time) error {
	user, ok := m.Users[id]
	if !ok || user.DeletedAt != nil {
		return domain.ErrUserNotFound
	}
	user.LastLoginAt = &at
	return nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	if user.ID >= m.NextID {
		m.NextID = user.ID + 1
	}
	m.Users[user.ID] = user
	m.ByEmail[user.Email] = user
}

// MockSessionRepository is a mock implementation of domain.SessionRepository
type MockSessionRepository struct {
	Sessions map[uuid.UUID]*domain.Session
}

// NewMockSessionRepository creates a new MockSessionRepository
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{Sessions: make(map[uuid.UUID]*domain.Session)}
}

// Create creates a new session
func (m *MockSessionRepository) Create(session *domain.Session) (*domain.Session, error) {
	session.CreatedAt = time.Now().UTC()
	m.Sessions[session.ID] = session
	return session, nil
}

// GetByID retrieves a session by ID
func (m *MockSessionRepository) GetByID(id uuid.UUID) (*domain.Session, error) {
	if session, ok := m.Sessions[id]; ok {
		return session, nil
	}
	return nil, domain.ErrSessionNotFound
}

// Revoke marks a session as revoked
func (m *MockSessionRepository) Revoke(id uuid.UUID) error {
	session, ok := m.Sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Revoked = true
	return nil
}

// RevokeAllForUser revokes every session belonging to the user
func (m *MockSessionRepository) RevokeAllForUser(userID int32) error {
	for _, session := range m.Sessions {
		if session.UserID == userID {
			session.Revoked = true
		}
	}
	return nil
}

// MockAccountRepository is a mock implementation of domain.AccountRepository
type MockAccountRepository struct {
	Accounts map[int32]*domain.Account
	NextID   int32
}

// NewMockAccountRepository creates a new MockAccountRepository
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{
		Accounts: make(map[int32]*domain.Account),
		NextID:   1,
	}
}

// Create creates a new account
func (m *MockAccountRepository) Create(scope domain.Scope, account *domain.Account) (*domain.Account, error) {
	account.ID = m.NextID
	m.NextID++
	if !scope.Unrestricted() {
		account.UserID = scope.UserID()
	}
	account.CreatedAt = time.Now().UTC()
	account.UpdatedAt = account.CreatedAt
	m.Accounts[account.ID] = account
	return account, nil
}

// GetByID retrieves an account by ID
func (m *MockAccountRepository) GetByID(scope domain.Scope, id int32) (*domain.Account, error) {
	account, ok := m.Accounts[id]
	if !ok || account.DeletedAt != nil || !scope.Owns(account.UserID) {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

// List retrieves accounts matching the filters
func (m *MockAccountRepository) List(scope domain.Scope, filters *domain.AccountFilters) ([]*domain.Account, error) {
	accounts := []*domain.Account{}
	for _, account := range m.Accounts {
		if account.DeletedAt != nil || !scope.Owns(account.UserID) {
			continue
		}
		if filters != nil {
			if filters.Type != nil && account.Type != *filters.Type {
				continue
			}
			if filters.Subtype != nil && account.Subtype != *filters.Subtype {
				continue
			}
			if filters.ActiveOnly && !account.IsActive {
				continue
			}
		}
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

// Update updates an existing account (never the balance)
func (m *MockAccountRepository) Update(scope domain.Scope, account *domain.Account) (*domain.Account, error) {
	stored, ok := m.Accounts[account.ID]
	if !ok || stored.DeletedAt != nil || !scope.Owns(stored.UserID) {
		return nil, domain.ErrAccountNotFound
	}
	account.UserID = stored.UserID
	account.Balance = stored.Balance
	account.CreatedAt = stored.CreatedAt
	account.UpdatedAt = time.Now().UTC()
	m.Accounts[account.ID] = account
	return account, nil
}

// SoftDelete marks an account as deleted
func (m *MockAccountRepository) SoftDelete(scope domain.Scope, id int32) error {
	account, ok := m.Accounts[id]
	if !ok || account.DeletedAt != nil || !scope.Owns(account.UserID) {
		return domain.ErrAccountNotFound
	}
	now := time.Now().UTC()
	account.DeletedAt = &now
	return nil
}

// Summary computes the net-worth rollup
func (m *MockAccountRepository) Summary(scope domain.Scope) (*domain.AccountSummary, error) {
	summary := &domain.AccountSummary{
		TotalAssets:      decimal.Zero,
		TotalLiabilities: decimal.Zero,
	}
	for _, account := range m.Accounts {
		if account.DeletedAt != nil || !scope.Owns(account.UserID) {
			continue
		}
		summary.AccountsCount++
		if !account.IsActive {
			continue
		}
		summary.ActiveCount++
		if !account.IncludeInTotal {
			continue
		}
		switch account.Type {
		case domain.AccountTypeAsset:
			summary.TotalAssets = summary.TotalAssets.Add(account.Balance)
		case domain.AccountTypeLiability:
			summary.TotalLiabilities = summary.TotalLiabilities.Add(account.Balance)
		}
	}
	summary.NetWorth = summary.TotalAssets.Sub(summary.TotalLiabilities)
	return summary, nil
}

// AddAccount adds an account to the mock repository (helper for tests)
func (m *MockAccountRepository) AddAccount(account *domain.Account) {
	if account.ID >= m.NextID {
		m.NextID = account.ID + 1
	}
	m.Accounts[account.ID] = account
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[int32]*domain.Category
	NextID     int32
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories: make(map[int32]*domain.Category),
		NextID:     1,
	}
}

// Create creates a new category
func (m *MockCategoryRepository) Create(scope domain.Scope, category *domain.Category) (*domain.Category, error) {
	category.ID = m.NextID
	m.NextID++
	if !scope.Unrestricted() {
		category.UserID = scope.UserID()
	}
	category.CreatedAt = time.Now().UTC()
	category.UpdatedAt = category.CreatedAt
	m.Categories[category.ID] = category
	return category, nil
}

// GetByID retrieves a category by ID
func (m *MockCategoryRepository) GetByID(scope domain.Scope, id int32) (*domain.Category, error) {
	category, ok := m.Categories[id]
	if !ok || category.DeletedAt != nil || !scope.Owns(category.UserID) {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}

// List retrieves categories matching the filters
func (m *MockCategoryRepository) List(scope domain.Scope, filters *domain.CategoryFilters) ([]*domain.Category, error) {
	categories := []*domain.Category{}
	for _, category := range m.Categories {
		if category.DeletedAt != nil || !scope.Owns(category.UserID) {
			continue
		}
		if filters != nil {
			if filters.Type != nil && category.Type != *filters.Type {
				continue
			}
			if filters.ParentOnly && category.ParentID != nil {
				continue
			}
			if filters.ActiveOnly && !category.IsActive {
				continue
			}
		}
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].SortOrder != categories[j].SortOrder {
			return categories[i].SortOrder < categories[j].SortOrder
		}
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

// Update updates an existing category
func (m *MockCategoryRepository) Update(scope domain.Scope, category *domain.Category) (*domain.Category, error) {
	stored, ok := m.Categories[category.ID]
	if !ok || stored.DeletedAt != nil || !scope.Owns(stored.UserID) {
		return nil, domain.ErrCategoryNotFound
	}
	category.UserID = stored.UserID
	category.CreatedAt = stored.CreatedAt
	category.UpdatedAt = time.Now().UTC()
	m.Categories[category.ID] = category
	return category, nil
}

// SoftDelete marks a category as deleted
func (m *MockCategoryRepository) SoftDelete(scope domain.Scope, id int32) error {
	category, ok := m.Categories[id]
	if !ok || category.DeletedAt != nil || !scope.Owns(category.UserID) {
		return domain.ErrCategoryNotFound
	}
	now := time.Now().UTC()
	category.DeletedAt = &now
	return nil
}

// ChildIDs returns the IDs of direct subcategories
func (m *MockCategoryRepository) ChildIDs(scope domain.Scope, id int32) ([]int32, error) {
	ids := []int32{}
	for _, category := range m.Categories {
		if category.DeletedAt != nil || !scope.Owns(category.UserID) {
			continue
		}
		if category.ParentID != nil && *category.ParentID == id {
			ids = append(ids, category.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// AddCategory adds a category to the mock repository (helper for tests)
func (m *MockCategoryRepository) AddCategory(category *domain.Category) {
	if category.ID >= m.NextID {
		m.NextID = category.ID + 1
	}
	m.Categories[category.ID] = category
}

// MockContactRepository is a mock implementation of domain.ContactRepository
type MockContactRepository struct {
	Contacts map[int32]*domain.Contact
	NextID   int32
}

// NewMockContactRepository creates a new MockContactRepository
func NewMockContactRepository() *MockContactRepository {
	return &MockContactRepository{
		Contacts: make(map[int32]*domain.Contact),
		NextID:   1,
	}
}

// Create creates a new contact
func (m *MockContactRepository) Create(scope domain.Scope, contact *domain.Contact) (*domain.Contact, error) {
	contact.ID = m.NextID
	m.NextID++
	if !scope.Unrestricted() {
		contact.UserID = scope.UserID()
	}
	contact.CreatedAt = time.Now().UTC()
	contact.UpdatedAt = contact.CreatedAt
	m.Contacts[contact.ID] = contact
	return contact, nil
}

// GetByID retrieves a contact by ID
func (m *MockContactRepository) GetByID(scope domain.Scope, id int32) (*domain.Contact, error) {
	contact, ok := m.Contacts[id]
	if !ok || contact.DeletedAt != nil || !scope.Owns(contact.UserID) {
		return nil, domain.ErrContactNotFound
	}
	return contact, nil
}

// List retrieves contacts matching the filters
func (m *MockContactRepository) List(scope domain.Scope, filters *domain.ContactFilters) ([]*domain.Contact, error) {
	contacts := []*domain.Contact{}
	for _, contact := range m.Contacts {
		if contact.DeletedAt != nil || !scope.Owns(contact.UserID) {
			continue
		}
		if filters != nil {
			if filters.Status != nil && contact.Status() != *filters.Status {
				continue
			}
			if filters.ActiveOnly && !contact.IsActive {
				continue
			}
		}
		contacts = append(contacts, contact)
	}
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].ID < contacts[j].ID })
	return contacts, nil
}

// Update updates an existing contact (never the balance)
func (m *MockContactRepository) Update(scope domain.Scope, contact *domain.Contact) (*domain.Contact, error) {
	stored, ok := m.Contacts[contact.ID]
	if !ok || stored.DeletedAt != nil || !scope.Owns(stored.UserID) {
		return nil, domain.ErrContactNotFound
	}
	contact.UserID = stored.UserID
	contact.Balance = stored.Balance
	contact.CreatedAt = stored.CreatedAt
	contact.UpdatedAt = time.Now().UTC()
	m.Contacts[contact.ID] = contact
	return contact, nil
}

// SoftDelete marks a contact as deleted
func (m *MockContactRepository) SoftDelete(scope domain.Scope, id int32) error {
	contact, ok := m.Contacts[id]
	if !ok || contact.DeletedAt != nil || !scope.Owns(contact.UserID) {
		return domain.ErrContactNotFound
	}
	now := time.Now().UTC()
	contact.DeletedAt = &now
	return nil
}

// Summary computes the debt position rollup
func (m *MockContactRepository) Summary(scope domain.Scope) (*domain.DebtSummary, error) {
	summary := &domain.DebtSummary{
		TotalOwedToYou: decimal.Zero,
		TotalYouOwe:    decimal.Zero,
	}
	for _, contact := range m.Contacts {
		if contact.DeletedAt != nil || !scope.Owns(contact.UserID) {
			continue
		}
		summary.ContactsCount++
		switch {
		case contact.Balance.IsPositive():
			summary.TotalOwedToYou = summary.TotalOwedToYou.Add(contact.Balance)
		case contact.Balance.IsNegative():
			summary.TotalYouOwe = summary.TotalYouOwe.Add(contact.Balance.Neg())
		default:
			summary.SettledCount++
		}
	}
	summary.NetPosition = summary.TotalOwedToYou.Sub(summary.TotalYouOwe)
	return summary, nil
}

// AddContact adds a contact to the mock repository (helper for tests)
func (m *MockContactRepository) AddContact(contact *domain.Contact) {
	if contact.ID >= m.NextID {
		m.NextID = contact.ID + 1
	}
	m.Contacts[contact.ID] = contact
}

// MockTransactionRepository is a mock implementation of
// domain.TransactionRepository. Writes replay the same balance effects as the
// real writer against the supplied account and contact mocks, so service
// tests observe balance propagation end to end.
type MockTransactionRepository struct {
	Transactions map[int32]*domain.Transaction
	NextID       int32

	accounts *MockAccountRepository
	contacts *MockContactRepository
}

// NewMockTransactionRepository creates a new MockTransactionRepository bound
// to the account and contact mocks whose balances it maintains
func NewMockTransactionRepository(accounts *MockAccountRepository, contacts *MockContactRepository) *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int32]*domain.Transaction),
		NextID:       1,
		accounts:     accounts,
		contacts:     contacts,
	}
}

func (m *MockTransactionRepository) applyEffects(effects []ledger.Effect) error {
	for _, effect := range effects {
		switch effect.Kind {
		case ledger.KindAccount:
			account, ok := m.accounts.Accounts[effect.ID]
			if !ok || account.DeletedAt != nil {
				return domain.ErrAccountNotFound
			}
			account.Balance = account.Balance.Add(effect.Delta)
		case ledger.KindContact:
			contact, ok := m.contacts.Contacts[effect.ID]
			if !ok || contact.DeletedAt != nil {
				return domain.ErrContactNotFound
			}
			contact.Balance = contact.Balance.Add(effect.Delta)
		}
	}
	return nil
}

// Create records a transaction and applies its balance effects
func (m *MockTransactionRepository) Create(scope domain.Scope, transaction *domain.Transaction) (*domain.Transaction, error) {
	transaction.ID = m.NextID
	m.NextID++
	if !scope.Unrestricted() {
		transaction.UserID = scope.UserID()
	}
	transaction.CreatedAt = time.Now().UTC()
	transaction.UpdatedAt = transaction.CreatedAt
	if err := m.applyEffects(ledger.Apply(transaction)); err != nil {
		return nil, err
	}
	m.Transactions[transaction.ID] = transaction
	return transaction, nil
}

// GetByID retrieves a transaction by ID
func (m *MockTransactionRepository) GetByID(scope domain.Scope, id int32) (*domain.Transaction, error) {
	transaction, ok := m.Transactions[id]
	if !ok || transaction.DeletedAt != nil || !scope.Owns(transaction.UserID) {
		return nil, domain.ErrTransactionNotFound
	}
	return transaction, nil
}

// List retrieves a page of transactions matching the filters
func (m *MockTransactionRepository) List(scope domain.Scope, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	matched := []*domain.Transaction{}
	for _, transaction := range m.Transactions {
		if transaction.DeletedAt != nil || !scope.Owns(transaction.UserID) {
			continue
		}
		if filters != nil {
			if filters.Type != nil && transaction.Type != *filters.Type {
				continue
			}
			if filters.AccountID != nil && transaction.AccountID != *filters.AccountID {
				continue
			}
			if filters.CategoryID != nil && (transaction.CategoryID == nil || *transaction.CategoryID != *filters.CategoryID) {
				continue
			}
			if filters.ContactID != nil && (transaction.ContactID == nil || *transaction.ContactID != *filters.ContactID) {
				continue
			}
			if filters.StartDate != nil && transaction.TransactionDate.Before(*filters.StartDate) {
				continue
			}
			if filters.EndDate != nil && transaction.TransactionDate.After(*filters.EndDate) {
				continue
			}
			if filters.Search != "" && !matchesSearch(transaction, filters.Search) {
				continue
			}
		}
		matched = append(matched, transaction)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].TransactionDate.Equal(matched[j].TransactionDate) {
			return matched[i].TransactionDate.After(matched[j].TransactionDate)
		}
		return matched[i].ID > matched[j].ID
	})

	page := int32(1)
	pageSize := int32(domain.DefaultPageSize)
	if filters != nil {
		if filters.Page > 0 {
			page = filters.Page
		}
		if filters.PageSize > 0 {
			pageSize = filters.PageSize
		}
	}
	totalItems := int64(len(matched))
	totalPages := int32((totalItems + int64(pageSize) - 1) / int64(pageSize))

	start := (page - 1) * pageSize
	if start > int32(len(matched)) {
		start = int32(len(matched))
	}
	end := start + pageSize
	if end > int32(len(matched)) {
		end = int32(len(matched))
	}

	return &domain.PaginatedTransactions{
		Data:       matched[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// matchesSearch mirrors the repository's case-insensitive substring match
// over title, description and reference number
func matchesSearch(transaction *domain.Transaction, search string) bool {
	needle := strings.ToLower(search)
	for _, field := range []*string{transaction.Title, transaction.Description, transaction.ReferenceNumber} {
		if field != nil && strings.Contains(strings.ToLower(*field), needle) {
			return true
		}
	}
	return false
}

// Update reverses the stored row's effects, persists the replacement values
// and applies the new effects
func (m *MockTransactionRepository) Update(scope domain.Scope, id int32, data *domain.UpdateTransactionData) (*domain.Transaction, error) {
	stored, ok := m.Transactions[id]
	if !ok || stored.DeletedAt != nil || !scope.Owns(stored.UserID) {
		return nil, domain.ErrTransactionNotFound
	}
	if err := m.applyEffects(ledger.Reverse(stored)); err != nil {
		return nil, err
	}

	stored.Type = data.Type
	stored.Amount = data.Amount
	stored.AccountID = data.AccountID
	stored.ToAccountID = data.ToAccountID
	stored.CategoryID = data.CategoryID
	stored.ContactID = data.ContactID
	stored.TransactionDate = data.TransactionDate
	stored.Title = data.Title
	stored.Description = data.Description
	stored.ReferenceNumber = data.ReferenceNumber
	stored.UpdatedAt = time.Now().UTC()

	if err := m.applyEffects(ledger.Apply(stored)); err != nil {
		return nil, err
	}
	return stored, nil
}

// SoftDelete reverses the stored row's effects and marks it deleted
func (m *MockTransactionRepository) SoftDelete(scope domain.Scope, id int32) error {
	stored, ok := m.Transactions[id]
	if !ok || stored.DeletedAt != nil || !scope.Owns(stored.UserID) {
		return domain.ErrTransactionNotFound
	}
	if err := m.applyEffects(ledger.Reverse(stored)); err != nil {
		return err
	}
	now := time.Now().UTC()
	stored.DeletedAt = &now
	return nil
}

// CountByAccount counts non-deleted transactions touching the account
func (m *MockTransactionRepository) CountByAccount(scope domain.Scope, accountID int32) (int64, error) {
	var count int64
	for _, transaction := range m.Transactions {
		if transaction.DeletedAt != nil || !scope.Owns(transaction.UserID) {
			continue
		}
		if transaction.AccountID == accountID || (transaction.ToAccountID != nil && *transaction.ToAccountID == accountID) {
			count++
		}
	}
	return count, nil
}

// CountByCategory counts non-deleted transactions in the category
func (m *MockTransactionRepository) CountByCategory(scope domain.Scope, categoryID int32) (int64, error) {
	var count int64
	for _, transaction := range m.Transactions {
		if transaction.DeletedAt != nil || !scope.Owns(transaction.UserID) {
			continue
		}
		if transaction.CategoryID != nil && *transaction.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

// SumByTypeAndDateRange sums amounts of one type inside the inclusive range
func (m *MockTransactionRepository) SumByTypeAndDateRange(scope domain.Scope, txType domain.TransactionType, start, end time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, transaction := range m.Transactions {
		if transaction.DeletedAt != nil || !scope.Owns(transaction.UserID) {
			continue
		}
		if transaction.Type != txType {
			continue
		}
		if transaction.TransactionDate.Before(start) || transaction.TransactionDate.After(end) {
			continue
		}
		total = total.Add(transaction.Amount)
	}
	return total, nil
}

// SumExpensesByCategories sums expense amounts across the given categories
func (m *MockTransactionRepository) SumExpensesByCategories(scope domain.Scope, categoryIDs []int32, start, end time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	if len(categoryIDs) == 0 {
		return total, nil
	}
	wanted := make(map[int32]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		wanted[id] = true
	}
	for _, transaction := range m.Transactions {
		if transaction.DeletedAt != nil || !scope.Owns(transaction.UserID) {
			continue
		}
		if transaction.Type != domain.TransactionTypeExpense {
			continue
		}
		if transaction.CategoryID == nil || !wanted[*transaction.CategoryID] {
			continue
		}
		if transaction.TransactionDate.Before(start) || transaction.TransactionDate.After(end) {
			continue
		}
		total = total.Add(transaction.Amount)
	}
	return total, nil
}

// SpendingByCategory groups expense totals by category, largest first
func (m *MockTransactionRepository) SpendingByCategory(scope domain.Scope, start, end time.Time) ([]*domain.CategorySpending, error) {
	byCategory := make(map[int32]*domain.CategorySpending)
	var uncategorized *domain.CategorySpending

	for _, transaction := range m.Transactions {
		if transaction.DeletedAt != nil || !scope.Owns(transaction.UserID) {
			continue
		}
		if transaction.Type != domain.TransactionTypeExpense {
			continue
		}
		if transaction.TransactionDate.Before(start) || transaction.TransactionDate.After(end) {
			continue
		}

		if transaction.CategoryID == nil {
			if uncategorized == nil {
				uncategorized = &domain.CategorySpending{Category: "Uncategorized", Total: decimal.Zero}
			}
			uncategorized.Total = uncategorized.Total.Add(transaction.Amount)
			uncategorized.Count++
			continue
		}

		row, ok := byCategory[*transaction.CategoryID]
		if !ok {
			id := *transaction.CategoryID
			name := "Uncategorized"
			if transaction.CategoryName != nil {
				name = *transaction.CategoryName
			}
			row = &domain.CategorySpending{CategoryID: &id, Category: name, Total: decimal.Zero}
			byCategory[id] = row
		}
		row.Total = row.Total.Add(transaction.Amount)
		row.Count++
	}

	rows := []*domain.CategorySpending{}
	for _, row := range byCategory {
		rows = append(rows, row)
	}
	if uncategorized != nil {
		rows = append(rows, uncategorized)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Total.GreaterThan(rows[j].Total) })
	return rows, nil
}

// AddTransaction adds a transaction without applying balance effects (helper
// for tests that seed state directly)
func (m *MockTransactionRepository) AddTransaction(transaction *domain.Transaction) {
	if transaction.ID >= m.NextID {
		m.NextID = transaction.ID + 1
	}
	m.Transactions[transaction.ID] = transaction
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets map[int32]*domain.Budget
	NextID  int32
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[int32]*domain.Budget),
		NextID:  1,
	}
}

// Create creates a new budget
func (m *MockBudgetRepository) Create(scope domain.Scope, budget *domain.Budget) (*domain.Budget, error) {
	budget.ID = m.NextID
	m.NextID++
	if !scope.Unrestricted() {
		budget.UserID = scope.UserID()
	}
	budget.CreatedAt = time.Now().UTC()
	budget.UpdatedAt = budget.CreatedAt
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// GetByID retrieves a budget by ID
func (m *MockBudgetRepository) GetByID(scope domain.Scope, id int32) (*domain.Budget, error) {
	budget, ok := m.Budgets[id]
	if !ok || budget.DeletedAt != nil || !scope.Owns(budget.UserID) {
		return nil, domain.ErrBudgetNotFound
	}
	return budget, nil
}

// List retrieves budgets matching the filters
func (m *MockBudgetRepository) List(scope domain.Scope, filters *domain.BudgetFilters) ([]*domain.Budget, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	budgets := []*domain.Budget{}
	for _, budget := range m.Budgets {
		if budget.DeletedAt != nil || !scope.Owns(budget.UserID) {
			continue
		}
		if filters != nil {
			if filters.ActiveOnly && !budget.IsActive {
				continue
			}
			if filters.CurrentOnly {
				if budget.StartDate.After(today) {
					continue
				}
				if budget.EndDate != nil && budget.EndDate.Before(today) {
					continue
				}
			}
		}
		budgets = append(budgets, budget)
	}
	sort.Slice(budgets, func(i, j int) bool { return budgets[i].ID < budgets[j].ID })
	return budgets, nil
}

// Update updates an existing budget
func (m *MockBudgetRepository) Update(scope domain.Scope, budget *domain.Budget) (*domain.Budget, error) {
	stored, ok := m.Budgets[budget.ID]
	if !ok || stored.DeletedAt != nil || !scope.Owns(stored.UserID) {
		return nil, domain.ErrBudgetNotFound
	}
	budget.UserID = stored.UserID
	budget.CreatedAt = stored.CreatedAt
	budget.UpdatedAt = time.Now().UTC()
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// SoftDelete marks a budget as deleted
func (m *MockBudgetRepository) SoftDelete(scope domain.Scope, id int32) error {
	budget, ok := m.Budgets[id]
	if !ok || budget.DeletedAt != nil || !scope.Owns(budget.UserID) {
		return domain.ErrBudgetNotFound
	}
	now := time.Now().UTC()
	budget.DeletedAt = &now
	return nil
}

// AddBudget adds a budget to the mock repository (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) {
	if budget.ID >= m.NextID {
		m.NextID = budget.ID + 1
	}
	m.Budgets[budget.ID] = budget
}
