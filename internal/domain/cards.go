package domain

// ============================================================
// Credit Cards
// ============================================================

// CreditCard represents a credit card account as served by the ledger API,
// enriched with the derived is_main_credit_card flag.
//
// A card with a non-nil MainCreditCardID is an "additional" card: it shares
// its main card's limit, financing limit and cycle dates. The ledger stores
// those fields denormalized; the cards service recomputes them on read.
type CreditCard struct {
	ID                      string  `json:"id"`
	OwnerID                 string  `json:"owner_id"`
	Alias                   string  `json:"alias"`
	Limit                   float64 `json:"limit"`
	FinancingLimit          float64 `json:"financing_limit"`
	IsEnabled               bool    `json:"is_enabled"`
	MainCreditCardID        *string `json:"main_credit_card_id"`
	IsMainCreditCard        bool    `json:"is_main_credit_card"` // derived: MainCreditCardID == nil
	NextClosingDate         string  `json:"next_closing_date"`   // YYYY-MM-DD
	NextExpiringDate        string  `json:"next_expiring_date"`  // YYYY-MM-DD
	TotalExpensesCount      int     `json:"total_expenses_count"`
	TotalPurchasesCount     int     `json:"total_purchases_count"`
	TotalSubscriptionsCount int     `json:"total_subscriptions_count"`

	// Usage counters derived server-side by the ledger API. Consumed as-is,
	// never recomputed here.
	UsedLimit               float64 `json:"used_limit"`
	AvailableLimit          float64 `json:"available_limit"`
	UsedFinancingLimit      float64 `json:"used_financing_limit"`
	AvailableFinancingLimit float64 `json:"available_financing_limit"`
}

// CreditCardPayload is the body for creating or updating a credit card.
type CreditCardPayload struct {
	OwnerID          string  `json:"owner_id"`
	Alias            string  `json:"alias"`
	Limit            float64 `json:"limit"`
	FinancingLimit   float64 `json:"financing_limit"`
	NextClosingDate  string  `json:"next_closing_date"`
	NextExpiringDate string  `json:"next_expiring_date"`
	MainCreditCardID *string `json:"main_credit_card_id,omitempty"`
	IsEnabled        *bool   `json:"is_enabled,omitempty"`
}

// Pagination describes a page of a listing response.
type Pagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalItems  int `json:"total_items"`
	PerPage     int `json:"per_page"`
}

// PaginatedCreditCards is a page of credit cards.
type PaginatedCreditCards struct {
	Items      []CreditCard `json:"items"`
	Pagination Pagination   `json:"pagination"`
}
