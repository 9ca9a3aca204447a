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
	"github.com/koshapp/kosh-backend/internal/service"
	"github.com/koshapp/kosh-backend/internal/websocket"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
	publisher          websocket.EventPublisher
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService, publisher websocket.EventPublisher) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		publisher:          publisher,
	}
}

// TransactionRequest represents the create/update transaction request body
type TransactionRequest struct {
	Type            string  `json:"type"`
	Amount          string  `json:"amount"`
	AccountID       int32   `json:"accountId"`
	ToAccountID     *int32  `json:"toAccountId,omitempty"`
	CategoryID      *int32  `json:"categoryId,omitempty"`
	ContactID       *int32  `json:"contactId,omitempty"`
	Date            *string `json:"date,omitempty"`
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	ReferenceNumber *string `json:"referenceNumber,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID              int32   `json:"id"`
	Type            string  `json:"type"`
	Amount          string  `json:"amount"`
	AccountID       int32   `json:"accountId"`
	AccountName     *string `json:"accountName,omitempty"`
	ToAccountID     *int32  `json:"toAccountId,omitempty"`
	ToAccountName   *string `json:"toAccountName,omitempty"`
	CategoryID      *int32  `json:"categoryId,omitempty"`
	CategoryName    *string `json:"categoryName,omitempty"`
	ContactID       *int32  `json:"contactId,omitempty"`
	ContactName     *string `json:"contactName,omitempty"`
	TransactionDate string  `json:"transactionDate"`
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	ReferenceNumber *string `json:"referenceNumber,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// PaginatedTransactionsResponse represents a page of transactions
type PaginatedTransactionsResponse struct {
	Data       []TransactionResponse `json:"data"`
	Page       int32                 `json:"page"`
	PageSize   int32                 `json:"pageSize"`
	TotalItems int64                 `json:"totalItems"`
	TotalPages int32                 `json:"totalPages"`
}

// CreateTransaction godoc
// @Summary Record a transaction
// @Description Records a transaction of any of the seven types and moves the affected balances atomically
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransactionRequest true "Transaction creation request"
// @Success 201 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	input, resp := h.bindInput(c)
	if input == nil {
		return resp
	}

	transaction, err := h.transactionService.CreateTransaction(scope, *input)
	if err != nil {
		if resp, handled := transactionValidationResponse(c, err); handled {
			return resp
		}
		log.Error().Err(err).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	response := toTransactionResponse(transaction)
	h.publisher.Publish(scope.UserID(), websocket.TransactionCreated(response))
	log.Info().
		Int32("transaction_id", transaction.ID).
		Str("type", string(transaction.Type)).
		Msg("Transaction created")
	return c.JSON(http.StatusCreated, response)
}

// GetTransactions godoc
// @Summary List transactions
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param type query string false "Filter by type"
// @Param accountId query int false "Filter by account (source or destination)"
// @Param categoryId query int false "Filter by category"
// @Param contactId query int false "Filter by contact"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Param period query string false "Shorthand window (today, week, month, year)"
// @Param search query string false "Search in title, description and reference"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size (max 100)"
// @Success 200 {object} PaginatedTransactionsResponse
// @Failure 401 {object} ProblemDetails
// @Router /transactions [get]
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters, resp := bindTransactionFilters(c)
	if resp != nil {
		return resp
	}

	page, err := h.transactionService.GetTransactions(scope, filters)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransactionType) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "type", Message: "Unknown transaction type"},
			})
		}
		if errors.Is(err, domain.ErrInvalidDateRange) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "endDate", Message: "End date must not be before start date"},
			})
		}
		if errors.Is(err, domain.ErrInvalidReportPeriod) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "period", Message: "Must be one of: today, week, month, year"},
			})
		}
		log.Error().Err(err).Msg("Failed to list transactions")
		return NewInternalError(c, "Failed to list transactions")
	}

	data := make([]TransactionResponse, len(page.Data))
	for i, transaction := range page.Data {
		data[i] = toTransactionResponse(transaction)
	}
	return c.JSON(http.StatusOK, PaginatedTransactionsResponse{
		Data:       data,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	})
}

// GetTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} TransactionResponse
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := pathID(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.transactionService.GetTransactionByID(scope, id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("transaction_id", id).Msg("Failed to load transaction")
		return NewInternalError(c, "Failed to load transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// UpdateTransaction godoc
// @Summary Update a transaction
// @Description Replaces the transaction. Balances end up as if the old row had been deleted and the new one created.
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param request body TransactionRequest true "Transaction update request"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := pathID(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	input, resp := h.bindInput(c)
	if input == nil {
		return resp
	}

	transaction, err := h.transactionService.UpdateTransaction(scope, id, *input)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if resp, handled := transactionValidationResponse(c, err); handled {
			return resp
		}
		log.Error().Err(err).Int32("transaction_id", id).Msg("Failed to update transaction")
		return NewInternalError(c, "Failed to update transaction")
	}

	response := toTransactionResponse(transaction)
	h.publisher.Publish(scope.UserID(), websocket.TransactionUpdated(response))
	log.Info().Int32("transaction_id", id).Msg("Transaction updated")
	return c.JSON(http.StatusOK, response)
}

// DeleteTransaction godoc
// @Summary Delete a transaction
// @Description Soft deletes the transaction and undoes its balance effects
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := pathID(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.transactionService.DeleteTransaction(scope, id); err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("transaction_id", id).Msg("Failed to delete transaction")
		return NewInternalError(c, "Failed to delete transaction")
	}

	h.publisher.Publish(scope.UserID(), websocket.TransactionDeleted(map[string]int32{"id": id}))
	log.Info().Int32("transaction_id", id).Msg("Transaction deleted")
	return c.NoContent(http.StatusNoContent)
}

func (h *TransactionHandler) bindInput(c echo.Context) (*service.TransactionInput, error) {
	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return nil, NewValidationError(c, "Invalid request body", nil)
	}

	if req.AccountID <= 0 {
		return nil, NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "accountId", Message: "Account ID is required"},
		})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	var transactionDate *time.Time
	if req.Date != nil && *req.Date != "" {
		parsed, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		transactionDate = &parsed
	}

	return &service.TransactionInput{
		Type:            domain.TransactionType(req.Type),
		Amount:          amount,
		AccountID:       req.AccountID,
		ToAccountID:     req.ToAccountID,
		CategoryID:      req.CategoryID,
		ContactID:       req.ContactID,
		TransactionDate: transactionDate,
		Title:           req.Title,
		Description:     req.Description,
		ReferenceNumber: req.ReferenceNumber,
	}, nil
}

func bindTransactionFilters(c echo.Context) (*domain.TransactionFilters, error) {
	filters := &domain.TransactionFilters{
		Search: c.QueryParam("search"),
	}
	if t := c.QueryParam("type"); t != "" {
		txType := domain.TransactionType(t)
		filters.Type = &txType
	}
	if p := c.QueryParam("period"); p != "" {
		period := domain.ReportPeriod(p)
		filters.Period = &period
	}
	for param, target := range map[string]**int32{
		"accountId":  &filters.AccountID,
		"categoryId": &filters.CategoryID,
		"contactId":  &filters.ContactID,
	} {
		if v := c.QueryParam(param); v != "" {
			parsed, err := strconv.ParseInt(v, 10, 32)
			if err != nil {
				return nil, NewValidationError(c, "Validation failed", []ValidationError{
					{Field: param, Message: "Must be an integer"},
				})
			}
			id := int32(parsed)
			*target = &id
		}
	}
	for param, target := range map[string]**time.Time{
		"startDate": &filters.StartDate,
		"endDate":   &filters.EndDate,
	} {
		if v := c.QueryParam(param); v != "" {
			parsed, err := time.Parse("2006-01-02", v)
			if err != nil {
				return nil, NewValidationError(c, "Validation failed", []ValidationError{
					{Field: param, Message: "Must be in YYYY-MM-DD format"},
				})
			}
			*target = &parsed
		}
	}
	if v := c.QueryParam("page"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 32)
		if err != nil || parsed < 1 {
			return nil, NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "page", Message: "Must be a positive integer"},
			})
		}
		filters.Page = int32(parsed)
	}
	if v := c.QueryParam("pageSize"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 32)
		if err != nil || parsed < 1 {
			return nil, NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "pageSize", Message: "Must be a positive integer"},
			})
		}
		filters.PageSize = int32(parsed)
	}
	return filters, nil
}

func transactionValidationResponse(c echo.Context, err error) (error, bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidTransactionType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Must be one of: income, expense, transfer, lent, borrowed, repayment_in, repayment_out"},
		}), true
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be positive"},
		}), true
	case errors.Is(err, domain.ErrAccountNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "accountId", Message: "Account not found"},
		}), true
	case errors.Is(err, domain.ErrDestinationRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "toAccountId", Message: "Destination account is required for transfers"},
		}), true
	case errors.Is(err, domain.ErrSameAccountTransfer):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "toAccountId", Message: "Destination must differ from the source account"},
		}), true
	case errors.Is(err, domain.ErrCategoryRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Category is required for income and expense transactions"},
		}), true
	case errors.Is(err, domain.ErrInvalidCategoryType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Category type must match the transaction type"},
		}), true
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Category not found"},
		}), true
	case errors.Is(err, domain.ErrContactRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "contactId", Message: "Contact is required for debt transactions"},
		}), true
	case errors.Is(err, domain.ErrContactNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "contactId", Message: "Contact not found"},
		}), true
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "title", Message: "Field exceeds its maximum length"},
		}), true
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return NewConflictError(c, "The transaction was modified concurrently, please retry"), true
	}
	return nil, false
}

func toTransactionResponse(transaction *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              transaction.ID,
		Type:            string(transaction.Type),
		Amount:          transaction.Amount.String(),
		AccountID:       transaction.AccountID,
		AccountName:     transaction.AccountName,
		ToAccountID:     transaction.ToAccountID,
		ToAccountName:   transaction.ToAccountName,
		CategoryID:      transaction.CategoryID,
		CategoryName:    transaction.CategoryName,
		ContactID:       transaction.ContactID,
		ContactName:     transaction.ContactName,
		TransactionDate: transaction.TransactionDate.Format("2006-01-02"),
		Title:           transaction.Title,
		Description:     transaction.Description,
		ReferenceNumber: transaction.ReferenceNumber,
		CreatedAt:       transaction.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       transaction.UpdatedAt.Format(time.RFC3339),
	}
}
