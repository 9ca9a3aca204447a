package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/koshapp/kosh-backend/internal/domain"
	"github.com/koshapp/kosh-backend/internal/middleware"
	"github.com/koshapp/kosh-backend/internal/service"
	"github.com/koshapp/kosh-backend/internal/websocket"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService *service.AccountService
	publisher      websocket.EventPublisher
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService, publisher websocket.EventPublisher) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		publisher:      publisher,
	}
}

// AccountRequest represents the create/update account request body
type AccountRequest struct {
	Name           string  `json:"name"`
	Subtype        string  `json:"subtype"`
	Balance        *string `json:"balance,omitempty"`
	CreditLimit    *string `json:"creditLimit,omitempty"`
	AccountNumber  *string `json:"accountNumber,omitempty"`
	BankName       *string `json:"bankName,omitempty"`
	Color          *string `json:"color,omitempty"`
	Icon           *string `json:"icon,omitempty"`
	Notes          *string `json:"notes,omitempty"`
	IsActive       *bool   `json:"isActive,omitempty"`
	IncludeInTotal *bool   `json:"includeInTotal,omitempty"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID              int32   `json:"id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Subtype         string  `json:"subtype"`
	Balance         string  `json:"balance"`
	CreditLimit     *string `json:"creditLimit,omitempty"`
	AvailableCredit *string `json:"availableCredit,omitempty"`
	AccountNumber   *string `json:"accountNumber,omitempty"`
	BankName        *string `json:"bankName,omitempty"`
	Color           *string `json:"color,omitempty"`
	Icon            *string `json:"icon,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	IsActive        bool    `json:"isActive"`
	IncludeInTotal  bool    `json:"includeInTotal"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// AccountSummaryResponse represents the net-worth rollup
type AccountSummaryResponse struct {
	TotalAssets      string `json:"totalAssets"`
	TotalLiabilities string `json:"totalLiabilities"`
	NetWorth         string `json:"netWorth"`
	AccountsCount    int64  `json:"accountsCount"`
	ActiveCount      int64  `json:"activeAccountsCount"`
}

// CreateAccount godoc
// @Summary Create an account
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AccountRequest true "Account creation request"
// @Success 201 {object} AccountResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /accounts [post]
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req AccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	balance := decimal.Zero
	if req.Balance != nil {
		parsed, err := decimal.NewFromString(*req.Balance)
		if err != nil {
			return NewValidationError(c, "Invalid balance", []ValidationError{
				{Field: "balance", Message: "Must be a valid decimal number"},
			})
		}
		balance = parsed
	}
	creditLimit, err := optionalDecimal(req.CreditLimit)
	if err != nil {
		return NewValidationError(c, "Invalid credit limit", []ValidationError{
			{Field: "creditLimit", Message: "Must be a valid decimal number"},
		})
	}

	account, err := h.accountService.CreateAccount(scope, service.CreateAccountInput{
		Name:           req.Name,
		Subtype:        domain.AccountSubtype(req.Subtype),
		Balance:        balance,
		CreditLimit:    creditLimit,
		AccountNumber:  req.AccountNumber,
		BankName:       req.BankName,
		Color:          req.Color,
		Icon:           req.Icon,
		Notes:          req.Notes,
		IncludeInTotal: req.IncludeInTotal,
	})
	if err != nil {
		if resp := accountValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Msg("Failed to create account")
		return NewInternalError(c, "Failed to create account")
	}

	response := toAccountResponse(account)
	h.publisher.Publish(scope.UserID(), websocket.AccountCreated(response))
	log.Info().Int32("account_id", account.ID).Msg("Account created")
	return c.JSON(http.StatusCreated, response)
}

// GetAccounts godoc
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param type query string false "Filter by type (asset, liability)"
// @Param subtype query string false "Filter by subtype"
// @Param active query bool false "Only active accounts"
// @Success 200 {array} AccountResponse
// @Failure 401 {object} ProblemDetails
// @Router /accounts [get]
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters := &domain.AccountFilters{}
	if t := c.QueryParam("type"); t != "" {
		accountType := domain.AccountType(t)
		filters.Type = &accountType
	}
	if st := c.QueryParam("subtype"); st != "" {
		subtype := domain.AccountSubtype(st)
		filters.Subtype = &subtype
	}
	filters.ActiveOnly = c.QueryParam("active") == "true"

	accounts, err := h.accountService.GetAccounts(scope, filters)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAccountType) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "type", Message: "Must be one of: asset, liability"},
			})
		}
		log.Error().Err(err).Msg("Failed to list accounts")
		return NewInternalError(c, "Failed to list accounts")
	}

	resp := make([]AccountResponse, len(accounts))
	for i, account := range accounts {
		resp[i] = toAccountResponse(account)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetAccount godoc
// @Summary Get an account
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 200 {object} AccountResponse
// @Failure 404 {object} ProblemDetails
// @Router /accounts/{id} [get]
func (h *AccountHandler) GetAccount(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := pathID(c)
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	account, err := h.accountService.GetAccountByID(scope, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Int32("account_id", id).Msg("Failed to load account")
		return NewInternalError(c, "Failed to load account")
	}

	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// UpdateAccount godoc
// @Summary Update an account
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Param request body AccountRequest true "Account update request"
// @Success 200 {object} AccountResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /accounts/{id} [put]
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := pathID(c)
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	var req AccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	creditLimit, err := optionalDecimal(req.CreditLimit)
	if err != nil {
		return NewValidationError(c, "Invalid credit limit", []ValidationError{
			{Field: "creditLimit", Message: "Must be a valid decimal number"},
		})
	}

	account, err := h.accountService.UpdateAccount(scope, id, service.UpdateAccountInput{
		Name:           req.Name,
		Subtype:        domain.AccountSubtype(req.Subtype),
		CreditLimit:    creditLimit,
		AccountNumber:  req.AccountNumber,
		BankName:       req.BankName,
		Color:          req.Color,
		Icon:           req.Icon,
		Notes:          req.Notes,
		IsActive:       req.IsActive,
		IncludeInTotal: req.IncludeInTotal,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		if resp := accountValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("account_id", id).Msg("Failed to update account")
		return NewInternalError(c, "Failed to update account")
	}

	response := toAccountResponse(account)
	h.publisher.Publish(scope.UserID(), websocket.AccountUpdated(response))
	log.Info().Int32("account_id", id).Msg("Account updated")
	return c.JSON(http.StatusOK, response)
}

// DeleteAccount godoc
// @Summary Delete an account
// @Description Soft deletes an account. Rejected while live transactions reference it.
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /accounts/{id} [delete]
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := pathID(c)
	if err != nil {
		return NewValidationError(c, "Invalid account ID", nil)
	}

	if err := h.accountService.DeleteAccount(scope, id); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		if errors.Is(err, domain.ErrAccountHasTransactions) {
			return NewConflictError(c, "Account has existing transactions")
		}
		log.Error().Err(err).Int32("account_id", id).Msg("Failed to delete account")
		return NewInternalError(c, "Failed to delete account")
	}

	h.publisher.Publish(scope.UserID(), websocket.AccountDeleted(map[string]int32{"id": id}))
	log.Info().Int32("account_id", id).Msg("Account deleted")
	return c.NoContent(http.StatusNoContent)
}

// GetSummary godoc
// @Summary Get the net-worth summary
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AccountSummaryResponse
// @Failure 401 {object} ProblemDetails
// @Router /accounts-summary [get]
func (h *AccountHandler) GetSummary(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	summary, err := h.accountService.GetSummary(scope)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute account summary")
		return NewInternalError(c, "Failed to compute summary")
	}

	return c.JSON(http.StatusOK, AccountSummaryResponse{
		TotalAssets:      summary.TotalAssets.String(),
		TotalLiabilities: summary.TotalLiabilities.String(),
		NetWorth:         summary.NetWorth.String(),
		AccountsCount:    summary.AccountsCount,
		ActiveCount:      summary.ActiveCount,
	})
}

func accountValidationResponse(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrNameRequired) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	}
	if errors.Is(err, domain.ErrNameTooLong) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 255 characters or less"},
		})
	}
	if errors.Is(err, domain.ErrInvalidAccountSubtype) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "subtype", Message: "Must be one of: cash, bank_account, digital_wallet, credit_card, loan"},
		})
	}
	return nil
}

func toAccountResponse(account *domain.Account) AccountResponse {
	resp := AccountResponse{
		ID:             account.ID,
		Name:           account.Name,
		Type:           string(account.Type),
		Subtype:        string(account.Subtype),
		Balance:        account.Balance.String(),
		AccountNumber:  account.AccountNumber,
		BankName:       account.BankName,
		Color:          account.Color,
		Icon:           account.Icon,
		Notes:          account.Notes,
		IsActive:       account.IsActive,
		IncludeInTotal: account.IncludeInTotal,
		CreatedAt:      account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      account.UpdatedAt.Format(time.RFC3339),
	}
	if account.CreditLimit != nil {
		limit := account.CreditLimit.String()
		resp.CreditLimit = &limit
		available := account.AvailableCredit().String()
		resp.AvailableCredit = &available
	}
	return resp
}

// requestScope derives the owner scope for the request from the
// authenticated user. ok is false when no user is attached.
func requestScope(c echo.Context) (domain.Scope, bool) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return domain.Scope{}, false
	}
	return domain.UserScope(userID), true
}

func pathID(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return int32(id), nil
}

func optionalDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
