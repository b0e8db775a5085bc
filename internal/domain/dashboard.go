package domain

// DashboardSummary is the aggregate served to the dashboard landing page.
// OpenPeriod is nil when no period within the lookback window is open.
type DashboardSummary struct {
	Cards                []CreditCard      `json:"cards"`
	OpenPeriod           *Period           `json:"open_period"`
	AccountSubtotals     []AccountSubtotal `json:"account_subtotals"`
	MonthlySpendingLimit *float64          `json:"monthly_spending_limit"`
}
