package domain

// ============================================================
// Users & Authentication
// ============================================================

// UserRole is the ledger API's role taxonomy.
type UserRole string

const (
	RoleAdmin       UserRole = "admin"
	RoleFreeUser    UserRole = "free_user"
	RolePremiumUser UserRole = "premium_user"
	RoleTestUser    UserRole = "test_user"
)

// Preferences holds display preferences. MonthlySpendingLimit is a reference
// line only, never enforced.
type Preferences struct {
	MonthlySpendingLimit *float64 `json:"monthly_spending_limit"`
}

// Profile is the optional profile block of a user.
type Profile struct {
	FirstName   *string      `json:"first_name"`
	LastName    *string      `json:"last_name"`
	Birthdate   *string      `json:"birthdate"`
	Preferences *Preferences `json:"preferences"`
}

// User is a ledger API user. Tokens are only present on auth responses.
type User struct {
	ID           string   `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Role         UserRole `json:"role"`
	AccessToken  string   `json:"access_token,omitempty"`
	RefreshToken string   `json:"refresh_token,omitempty"`
	TokenType    string   `json:"token_type,omitempty"`
	Profile      *Profile `json:"profile,omitempty"`
}

// LoginPayload is the body for POST /auth/login.
type LoginPayload struct {
	Username   string  `json:"username"`
	Password   string  `json:"password"`
	DeviceInfo *string `json:"device_info,omitempty"`
}

// RegisterPayload is the body for POST /auth/register.
type RegisterPayload struct {
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Role      UserRole `json:"role,omitempty"`
}

// UpdateUserPayload is the body for PUT /users/{id}. Nil fields are omitted
// from the upstream request and left unchanged.
type UpdateUserPayload struct {
	Username *string            `json:"username,omitempty"`
	Email    *string            `json:"email,omitempty"`
	Password *string            `json:"password,omitempty"`
	Profile  *UpdateUserProfile `json:"profile,omitempty"`
}

// UpdateUserProfile is the nested profile block of UpdateUserPayload.
type UpdateUserProfile struct {
	FirstName   *string      `json:"first_name,omitempty"`
	LastName    *string      `json:"last_name,omitempty"`
	Birthdate   *string      `json:"birthdate,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// AccessClaims are the claims the BFA reads from an upstream-issued access
// token: subject (user id) and role.
type AccessClaims struct {
	Sub  string
	Role string
}
