package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/koshapp/kosh-backend/internal/domain"
	"github.com/koshapp/kosh-backend/internal/service"
	"github.com/koshapp/kosh-backend/internal/websocket"
)

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
	publisher     websocket.EventPublisher
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService, publisher websocket.EventPublisher) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		publisher:     publisher,
	}
}

// BudgetRequest represents the create/update budget request body
type BudgetRequest struct {
	CategoryID           int32   `json:"categoryId"`
	Amount               string  `json:"amount"`
	Period               string  `json:"period"`
	StartDate            string  `json:"startDate"`
	EndDate              *string `json:"endDate,omitempty"`
	IncludeSubcategories bool    `json:"includeSubcategories"`
	IsActive             *bool   `json:"isActive,omitempty"`
}

// BudgetResponse represents a budget with its usage in API responses
type BudgetResponse struct {
	ID                   int32   `json:"id"`
	CategoryID           int32   `json:"categoryId"`
	CategoryName         *string `json:"categoryName,omitempty"`
	Amount               string  `json:"amount"`
	Period               string  `json:"period"`
	StartDate            string  `json:"startDate"`
	EndDate              *string `json:"endDate,omitempty"`
	IncludeSubcategories bool    `json:"includeSubcategories"`
	IsActive             bool    `json:"isActive"`
	SpentAmount          string  `json:"spentAmount"`
	RemainingAmount      string  `json:"remainingAmount"`
	PercentageUsed       string  `json:"percentageUsed"`
	OverBudget           bool    `json:"isOverBudget"`
	CreatedAt            string  `json:"createdAt"`
	UpdatedAt            string  `json:"updatedAt"`
}

// CreateBudget godoc
// @Summary Create a budget
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BudgetRequest true "Budget creation request"
// @Success 201 {object} BudgetResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /budgets [post]
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	input, resp := bindBudgetInput(c)
	if resp != nil {
		return resp
	}

	budget, err := h.budgetService.CreateBudget(scope, *input)
	if err != nil {
		if resp := budgetValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Msg("Failed to create budget")
		return NewInternalError(c, "Failed to create budget")
	}

	usage, err := h.budgetService.GetBudgetByID(scope, budget.ID)
	if err != nil {
		log.Error().Err(err).Int32("budget_id", budget.ID).Msg("Failed to compute budget usage")
		return NewInternalError(c, "Failed to compute budget usage")
	}

	response := toBudgetResponse(usage)
	h.publisher.Publish(scope.UserID(), websocket.BudgetCreated(response))
	log.Info().Int32("budget_id", budget.ID).Msg("Budget created")
	return c.JSON(http.StatusCreated, response)
}

// GetBudgets godoc
// @Summary List budgets with usage
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Only active budgets"
// @Param current query bool false "Only budgets whose window covers today"
// @Success 200 {array} BudgetResponse
// @Failure 401 {object} ProblemDetails
// @Router /budgets [get]
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters := &domain.BudgetFilters{
		ActiveOnly:  c.QueryParam("active") == "true",
		CurrentOnly: c.QueryParam("current") == "true",
	}

	usages, err := h.budgetService.GetBudgets(scope, filters)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list budgets")
		return NewInternalError(c, "Failed to list budgets")
	}

	resp := make([]BudgetResponse, len(usages))
	for i, usage := range usages {
		resp[i] = toBudgetResponse(usage)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetBudget godoc
// @Summary Get a budget with usage
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Budget ID"
// @Success 200 {object} BudgetResponse
// @Failure 404 {object} ProblemDetails
// @Router /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := pathID(c)
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	usage, err := h.budgetService.GetBudgetByID(scope, id)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Int32("budget_id", id).Msg("Failed to load budget")
		return NewInternalError(c, "Failed to load budget")
	}

	return c.JSON(http.StatusOK, toBudgetResponse(usage))
}

// UpdateBudget godoc
// @Summary Update a budget
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Budget ID"
// @Param request body BudgetRequest true "Budget update request"
// @Success 200 {object} BudgetResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := pathID(c)
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	input, resp := bindBudgetInput(c)
	if resp != nil {
		return resp
	}

	usage, err := h.budgetService.UpdateBudget(scope, id, *input)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		if resp := budgetValidationResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("budget_id", id).Msg("Failed to update budget")
		return NewInternalError(c, "Failed to update budget")
	}

	response := toBudgetResponse(usage)
	h.publisher.Publish(scope.UserID(), websocket.BudgetUpdated(response))
	log.Info().Int32("budget_id", id).Msg("Budget updated")
	return c.JSON(http.StatusOK, response)
}

// DeleteBudget godoc
// @Summary Delete a budget
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Budget ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := pathID(c)
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	if err := h.budgetService.DeleteBudget(scope, id); err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Int32("budget_id", id).Msg("Failed to delete budget")
		return NewInternalError(c, "Failed to delete budget")
	}

	h.publisher.Publish(scope.UserID(), websocket.BudgetDeleted(map[string]int32{"id": id}))
	log.Info().Int32("budget_id", id).Msg("Budget deleted")
	return c.NoContent(http.StatusNoContent)
}

func bindBudgetInput(c echo.Context) (*service.BudgetInput, error) {
	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return nil, NewValidationError(c, "Invalid request body", nil)
	}

	if req.CategoryID <= 0 {
		return nil, NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Category ID is required"},
		})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, NewValidationError(c, "Invalid start date", []ValidationError{
			{Field: "startDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	var endDate *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return nil, NewValidationError(c, "Invalid end date", []ValidationError{
				{Field: "endDate", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		endDate = &parsed
	}

	return &service.BudgetInput{
		CategoryID:           req.CategoryID,
		Amount:               amount,
		Period:               domain.BudgetPeriod(req.Period),
		StartDate:            startDate,
		EndDate:              endDate,
		IncludeSubcategories: req.IncludeSubcategories,
		IsActive:             req.IsActive,
	}, nil
}

func budgetValidationResponse(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrInvalidAmount) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be positive"},
		})
	}
	if errors.Is(err, domain.ErrInvalidBudgetPeriod) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "period", Message: "Must be one of: daily, weekly, monthly, yearly"},
		})
	}
	if errors.Is(err, domain.ErrInvalidDateRange) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "endDate", Message: "End date must not be before start date"},
		})
	}
	if errors.Is(err, domain.ErrCategoryNotFound) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Category not found"},
		})
	}
	return nil
}

func toBudgetResponse(usage *domain.BudgetUsage) BudgetResponse {
	budget := usage.Budget
	resp := BudgetResponse{
		ID:                   budget.ID,
		CategoryID:           budget.CategoryID,
		CategoryName:         budget.CategoryName,
		Amount:               budget.Amount.String(),
		Period:               string(budget.Period),
		StartDate:            budget.StartDate.Format("2006-01-02"),
		IncludeSubcategories: budget.IncludeSubcategories,
		IsActive:             budget.IsActive,
		SpentAmount:          usage.SpentAmount.String(),
		RemainingAmount:      usage.RemainingAmount.String(),
		PercentageUsed:       usage.PercentageUsed.String(),
		OverBudget:           usage.OverBudget,
		CreatedAt:            budget.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            budget.UpdatedAt.Format(time.RFC3339),
	}
	if budget.EndDate != nil {
		end := budget.EndDate.Format("2006-01-02")
		resp.EndDate = &end
	}
	return resp
}
