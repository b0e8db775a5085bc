package domain

// ExpenseCategory is a user-owned label for expenses. IsIncome is immutable
// after creation.
type ExpenseCategory struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsIncome    bool   `json:"is_income"`
}

// ExpenseCategoryPayload is the body for creating or updating a category.
type ExpenseCategoryPayload struct {
	OwnerID     string `json:"owner_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	IsIncome    *bool  `json:"is_income,omitempty"`
}
