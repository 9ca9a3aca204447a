package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/koshapp/kosh-backend/internal/domain"
	"github.com/koshapp/kosh-backend/internal/service"
)

// ReportHandler handles the statistics and spending report HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// StatisticsResponse represents period transaction totals
type StatisticsResponse struct {
	Period         string `json:"period"`
	TotalIncome    string `json:"totalIncome"`
	TotalExpense   string `json:"totalExpense"`
	NetSavings     string `json:"netSavings"`
	TotalTransfers string `json:"totalTransfers"`
}

// CategorySpendingResponse represents one row of the spending rollup
type CategorySpendingResponse struct {
	CategoryID *int32 `json:"categoryId,omitempty"`
	Category   string `json:"category"`
	Total      string `json:"total"`
	Count      int64  `json:"count"`
}

// GetStatistics godoc
// @Summary Get transaction statistics for a period
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param period query string false "Period (today, week, month, year)" default(month)
// @Success 200 {object} StatisticsResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /transactions-statistics [get]
func (h *ReportHandler) GetStatistics(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	period := domain.ReportPeriod(c.QueryParam("period"))
	if period == "" {
		period = domain.PeriodMonth
	}

	stats, err := h.reportService.GetStatistics(scope, period)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidReportPeriod) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "period", Message: "Must be one of: today, week, month, year"},
			})
		}
		log.Error().Err(err).Msg("Failed to compute statistics")
		return NewInternalError(c, "Failed to compute statistics")
	}

	return c.JSON(http.StatusOK, StatisticsResponse{
		Period:         string(stats.Period),
		TotalIncome:    stats.TotalIncome.String(),
		TotalExpense:   stats.TotalExpense.String(),
		NetSavings:     stats.NetSavings.String(),
		TotalTransfers: stats.TotalTransfers.String(),
	})
}

// GetSpendingByCategory godoc
// @Summary Get expense totals grouped by category
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param period query string false "Period (today, week, month, year)" default(month)
// @Success 200 {array} CategorySpendingResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /transactions-spending-by-category [get]
func (h *ReportHandler) GetSpendingByCategory(c echo.Context) error {
	scope, ok := requestScope(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	period := domain.ReportPeriod(c.QueryParam("period"))
	if period == "" {
		period = domain.PeriodMonth
	}

	spending, err := h.reportService.GetSpendingByCategory(scope, period)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidReportPeriod) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "period", Message: "Must be one of: today, week, month, year"},
			})
		}
		log.Error().Err(err).Msg("Failed to compute spending by category")
		return NewInternalError(c, "Failed to compute spending")
	}

	resp := make([]CategorySpendingResponse, len(spending))
	for i, row := range spending {
		resp[i] = CategorySpendingResponse{
			CategoryID: row.CategoryID,
			Category:   row.Category,
			Total:      row.Total.String(),
			Count:      row.Count,
		}
	}
	return c.JSON(http.StatusOK, resp)
}
