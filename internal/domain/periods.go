package domain

// ============================================================
// Periods (monthly payment projections)
// ============================================================

// AccountType classifies the account a payment was charged to.
type AccountType string

const (
	AccountCreditCard  AccountType = "CreditCard"
	AccountDebitCard   AccountType = "DebitCard"
	AccountCash        AccountType = "Cash"
	AccountBankAccount AccountType = "BankAccount"
)

// DisplayGroup is the presentation classification of a payment within a
// period. Exactly one group applies; rules are checked in priority order by
// projection.Classify.
type DisplayGroup string

const (
	GroupSinglePayment    DisplayGroup = "single_payment"
	GroupFinalInstallment DisplayGroup = "final_installment"
	GroupSimulated        DisplayGroup = "simulated"
	GroupSubscription     DisplayGroup = "subscription"
	GroupFirstInstallment DisplayGroup = "first_installment"
	GroupRegular          DisplayGroup = "regular"
)

// PeriodPayment is a payment enriched with its parent expense's and
// account's denormalized fields for display.
type PeriodPayment struct {
	PaymentID           string        `json:"payment_id"`
	Amount              float64       `json:"amount"`
	Status              PaymentStatus `json:"status"`
	PaymentDate         string        `json:"payment_date"`
	NoInstallment       int           `json:"no_installment"`
	IsLastPayment       bool          `json:"is_last_payment"`
	ExpenseID           string        `json:"expense_id"`
	ExpenseTitle        string        `json:"expense_title"`
	ExpenseType         ExpenseType   `json:"expense_type"`
	ExpenseCCName       string        `json:"expense_cc_name"`
	ExpenseAcquiredAt   string        `json:"expense_acquired_at"`
	ExpenseInstallments int           `json:"expense_installments"`
	ExpenseStatus       ExpenseStatus `json:"expense_status"`
	ExpenseCategoryName *string       `json:"expense_category_name"`
	AccountID           string        `json:"account_id"`
	AccountAlias        string        `json:"account_alias"`
	AccountIsEnabled    bool          `json:"account_is_enabled"`
	AccountType         AccountType   `json:"account_type"`
	DisplayGroup        DisplayGroup  `json:"display_group,omitempty"` // derived
}

// Period is one calendar-month bucket of payments with its totals.
// Totals arrive pre-aggregated from the ledger API; after a local payment
// mutation they are recomputed from the full payment list.
type Period struct {
	ID                     string          `json:"id"`
	PeriodStr              string          `json:"period_str"` // MM/YYYY
	Month                  int             `json:"month"`      // 1-12
	Year                   int             `json:"year"`
	TotalAmount            float64         `json:"total_amount"`
	TotalConfirmedAmount   float64         `json:"total_confirmed_amount"`
	TotalPaidAmount        float64         `json:"total_paid_amount"`
	TotalPendingAmount     float64         `json:"total_pending_amount"`
	TotalPayments          int             `json:"total_payments"`
	PendingPaymentsCount   int             `json:"pending_payments_count"`
	CompletedPaymentsCount int             `json:"completed_payments_count"`
	Payments               []PeriodPayment `json:"payments"`
	IsOpen                 bool            `json:"is_open"` // derived: any payment confirmed/unconfirmed
}

// AccountSubtotal is a per-account slice of an open period's spending,
// restricted to main credit cards and sorted descending by total.
type AccountSubtotal struct {
	AccountID    string  `json:"account_id"`
	AccountAlias string  `json:"account_alias"`
	Total        float64 `json:"total"`
}
