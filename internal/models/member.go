package models

// Member represents one person in the household.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string `json:"id"`

	// Name is the display name of the member.
	Name string `json:"name"`

	// Email is the member's email address (unique). Used for login.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the member's password.
	// Never serialized into API responses.
	PasswordHash string `json:"-"`

	// MortgageShare is this member's fixed share of a mortgage-split
	// bill, in currency units. Zero for members not on the mortgage.
	MortgageShare float64 `json:"mortgageShare"`

	// DefaultSplitPercentage is an optional default percentage (0-100)
	// used by the surrounding application when pre-filling percentage
	// splits. Nil when the member has no default.
	DefaultSplitPercentage *float64 `json:"defaultSplitPercentage,omitempty"`

	// Credit is the member's personal overpayment balance. Credit may
	// only be applied against this member's own future bills, never to
	// settle debt between members. Never negative.
	Credit float64 `json:"credit"`

	// CreatedAt is the Unix timestamp when the member was created.
	CreatedAt int64 `json:"createdAt"`
}
