package domain

import "github.com/shopspring/decimal"

// ReportPeriod selects the date window for statistics queries.
type ReportPeriod string

const (
	PeriodToday ReportPeriod = "today"
	PeriodWeek  ReportPeriod = "week"
	PeriodMonth ReportPeriod = "month"
	PeriodYear  ReportPeriod = "year"
)

// Valid reports whether p is a known report period.
func (p ReportPeriod) Valid() bool {
	switch p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// Statistics is the period rollup of transaction totals.
type Statistics struct {
	TotalIncome    decimal.Decimal `json:"totalIncome"`
	TotalExpense   decimal.Decimal `json:"totalExpense"`
	NetSavings     decimal.Decimal `json:"netSavings"`
	TotalTransfers decimal.Decimal `json:"totalTransfers"`
	Period         ReportPeriod    `json:"period"`
}
