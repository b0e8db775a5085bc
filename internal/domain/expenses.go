package domain

// ============================================================
// Expenses (purchases and subscriptions)
// ============================================================

// ExpenseType tags the two expense variants. The tag decides which ledger
// resource the expense lives under and is immutable after creation.
type ExpenseType string

const (
	ExpensePurchase     ExpenseType = "purchase"
	ExpenseSubscription ExpenseType = "subscription"
)

// Valid reports whether t is a known expense type.
func (t ExpenseType) Valid() bool {
	return t == ExpensePurchase || t == ExpenseSubscription
}

// ExpenseStatus is the lifecycle status of an expense.
type ExpenseStatus string

const (
	ExpenseActive    ExpenseStatus = "active"
	ExpensePending   ExpenseStatus = "pending"
	ExpenseFinished  ExpenseStatus = "finished"
	ExpenseCancelled ExpenseStatus = "cancelled"
)

// PaymentStatus is the status of a single installment.
//
// "simulated" marks a projected-but-not-persisted subscription installment.
// It is never a valid write status: it can only be materialized (create) or
// discarded (delete).
type PaymentStatus string

const (
	PaymentUnconfirmed PaymentStatus = "unconfirmed"
	PaymentConfirmed   PaymentStatus = "confirmed"
	PaymentPaid        PaymentStatus = "paid"
	PaymentCanceled    PaymentStatus = "canceled"
	PaymentSimulated   PaymentStatus = "simulated"
)

// Writable reports whether s may be sent on a payment update.
func (s PaymentStatus) Writable() bool {
	switch s {
	case PaymentUnconfirmed, PaymentConfirmed, PaymentPaid, PaymentCanceled:
		return true
	}
	return false
}

// Payment is a single installment of an expense.
type Payment struct {
	PaymentID     string        `json:"payment_id"`
	ExpenseID     string        `json:"expense_id"`
	Amount        float64       `json:"amount"`
	Status        PaymentStatus `json:"status"`
	PaymentDate   string        `json:"payment_date"` // YYYY-MM-DD
	NoInstallment int           `json:"no_installment"`
	Installments  int           `json:"installments"`
}

// Expense is a purchase or subscription with its aggregate counters.
type Expense struct {
	ID                     string        `json:"id"`
	AccountID              string        `json:"account_id"`
	Title                  string        `json:"title"`
	CCName                 string        `json:"cc_name"`
	AcquiredAt             string        `json:"acquired_at"` // YYYY-MM-DD
	Amount                 float64       `json:"amount"`
	ExpenseType            ExpenseType   `json:"expense_type"`
	Installments           int           `json:"installments"`
	FirstPaymentDate       string        `json:"first_payment_date"`
	Status                 ExpenseStatus `json:"status"`
	CategoryID             string        `json:"category_id"`
	Payments               []Payment     `json:"payments,omitempty"`
	IsOneTimePayment       bool          `json:"is_one_time_payment"`
	PaidAmount             float64       `json:"paid_amount"`
	PendingInstallments    int           `json:"pending_installments"`
	DoneInstallments       int           `json:"done_installments"`
	PendingFinancingAmount float64       `json:"pending_financing_amount"`
	PendingAmount          float64       `json:"pending_amount"`
}

// ExpensePayload is the body for creating or updating an expense.
type ExpensePayload struct {
	AccountID        string        `json:"account_id"`
	Title            string        `json:"title"`
	CCName           string        `json:"cc_name"`
	AcquiredAt       string        `json:"acquired_at"`
	Amount           float64       `json:"amount"`
	ExpenseType      ExpenseType   `json:"expense_type"`
	Installments     int           `json:"installments"`
	FirstPaymentDate string        `json:"first_payment_date"`
	CategoryID       string        `json:"category_id"`
	Status           ExpenseStatus `json:"status"`
	IsOneTimePayment bool          `json:"is_one_time_payment"`
}

// PaginatedExpenses is a page of expenses.
type PaginatedExpenses struct {
	Items      []Expense  `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// UpdatePaymentPayload is the body for PUT /expenses/payments/{paymentId}.
// Status must be writable; "simulated" is rejected at the service boundary.
type UpdatePaymentPayload struct {
	Amount      float64       `json:"amount"`
	Status      PaymentStatus `json:"status"`
	PaymentDate string        `json:"payment_date"`
}

// CreatePaymentPayload materializes a simulated subscription installment.
type CreatePaymentPayload struct {
	ExpenseID   string  `json:"expense_id"`
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date"`
}
