package models

import (
	"errors"
	"fmt"
	"time"
)

// SplitType determines how a bill's amount is divided among members.
type SplitType string

const (
	// SplitMortgage uses each member's fixed MortgageShare, ignoring the
	// bill amount.
	SplitMortgage SplitType = "mortgage"

	// SplitEven divides the bill amount equally among all members.
	SplitEven SplitType = "even"

	// SplitPercentage divides the bill amount by the per-member
	// percentages in CustomSplits.
	SplitPercentage SplitType = "percentage"

	// SplitCustom uses the CustomSplits values directly as absolute
	// amounts.
	SplitCustom SplitType = "custom"

	// SplitItems divides each line item evenly among its assignees.
	SplitItems SplitType = "items"
)

// Valid reports whether t is one of the supported split types.
func (t SplitType) Valid() bool {
	switch t {
	case SplitMortgage, SplitEven, SplitPercentage, SplitCustom, SplitItems:
		return true
	}
	return false
}

// PaymentStatus is the derived payment state of a bill. It is recomputed
// on every read from the bill's contributions; only IsPaid is stored.
type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "paid"
	StatusPartial PaymentStatus = "partial"
	StatusOverdue PaymentStatus = "overdue"
	StatusPending PaymentStatus = "pending"
)

// Categories supported by the surrounding application. Kept as data so
// the engine never switches on category.
var Categories = []string{
	"mortgage",
	"utilities",
	"groceries",
	"insurance",
	"subscriptions",
	"maintenance",
	"other",
}

// CoverageAllocation is an explicit statement that PayerID paid Amount
// extra specifically to cover CoveredID's shortfall on a bill. Created
// only at payment time; replaced, never mutated, on subsequent payments.
type CoverageAllocation struct {
	PayerID   string  `json:"payerId"`
	CoveredID string  `json:"coveredId"`
	Amount    float64 `json:"amount"`
}

// Item is a single line item on an items-split bill.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string `json:"id"`

	// Name describes the item (e.g. "Detergent").
	Name string `json:"name"`

	// Amount is the price of this item.
	Amount float64 `json:"amount"`

	// AssignedTo lists the member IDs splitting this item equally.
	// Items with no assignees contribute to nobody's share.
	AssignedTo []string `json:"assignedTo"`
}

// Bill represents a shared household expense and everything recorded
// against it.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string `json:"id"`

	// Name is the human-readable name of the bill.
	Name string `json:"name"`

	// Amount is the bill total. For items-split bills the sum of item
	// amounts is authoritative; use Total.
	Amount float64 `json:"amount"`

	// DueDate is the calendar date the bill is due.
	DueDate time.Time `json:"dueDate"`

	// Category is one of Categories.
	Category string `json:"category"`

	// SplitType selects the share policy.
	SplitType SplitType `json:"splitType"`

	// PaidBy is the legacy single-payer member ID. Authoritative only
	// when PaidContributions is absent or empty.
	PaidBy string `json:"paidBy,omitempty"`

	// PaidContributions maps member ID to the amount that member has
	// actually paid toward this bill, inclusive of any credit applied.
	// When present and non-empty it is the source of truth for who paid.
	PaidContributions map[string]float64 `json:"paidContributions,omitempty"`

	// ContributionDates maps member ID to the date of their most recent
	// contribution.
	ContributionDates map[string]time.Time `json:"contributionDates,omitempty"`

	// CreditUsed maps member ID to the amount of their own credit
	// applied to this bill.
	CreditUsed map[string]float64 `json:"creditUsed,omitempty"`

	// CreditEarned maps member ID to the amount newly credited to them
	// from overpaying this bill. Money diverted to a payer's own credit
	// does not count as covering other members.
	CreditEarned map[string]float64 `json:"creditEarned,omitempty"`

	// CoverageAllocations, when non-empty, fully and exclusively
	// determine who-owes-whom for this bill; no proportional inference
	// is applied.
	CoverageAllocations []CoverageAllocation `json:"coverageAllocations,omitempty"`

	// PaidDate is the date the bill was settled with the vendor. Nil
	// until the bill is fully paid.
	PaidDate *time.Time `json:"paidDate,omitempty"`

	// IsPaid marks the bill as settled with the vendor. Set by the
	// payment-recording service, trusted by the engine.
	IsPaid bool `json:"isPaid"`

	// CustomSplits maps member ID to a percentage (SplitPercentage) or
	// an absolute amount (SplitCustom).
	CustomSplits map[string]float64 `json:"customSplits,omitempty"`

	// Items are the line items of an items-split bill.
	Items []Item `json:"items,omitempty"`

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64 `json:"createdAt"`
}

// Total returns the bill's effective total. For items-split bills the
// sum of item amounts is authoritative; for everything else it is Amount.
func (b *Bill) Total() float64 {
	if b.SplitType != SplitItems {
		return b.Amount
	}
	var sum float64
	for _, it := range b.Items {
		sum += it.Amount
	}
	return sum
}

var (
	ErrInvalidAmount    = errors.New("bill amount must be positive")
	ErrInvalidSplitType = errors.New("unknown split type")
	ErrMissingSplits    = errors.New("split type requires custom splits")
	ErrMissingItems     = errors.New("items split requires at least one item")
)

// Validate rejects malformed bills at construction time, before they
// reach storage. The engine itself degrades to zero shares on malformed
// input to stay resilient against pre-validation data, so this is the
// only place such bills are refused.
func (b *Bill) Validate() error {
	if !b.SplitType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSplitType, b.SplitType)
	}
	if b.SplitType != SplitItems && b.Amount <= 0 {
		return ErrInvalidAmount
	}
	switch b.SplitType {
	case SplitPercentage, SplitCustom:
		if len(b.CustomSplits) == 0 {
			return fmt.Errorf("%w: %s", ErrMissingSplits, b.SplitType)
		}
		for id, v := range b.CustomSplits {
			if v < 0 {
				return fmt.Errorf("negative split for member %s", id)
			}
			if b.SplitType == SplitPercentage && v > 100 {
				return fmt.Errorf("percentage split for member %s exceeds 100", id)
			}
		}
	case SplitItems:
		if len(b.Items) == 0 {
			return ErrMissingItems
		}
		for _, it := range b.Items {
			if it.Amount <= 0 {
				return fmt.Errorf("item %q amount must be positive", it.Name)
			}
		}
	}
	for _, ca := range b.CoverageAllocations {
		if ca.Amount <= 0 {
			return fmt.Errorf("coverage from %s for %s must be positive", ca.PayerID, ca.CoveredID)
		}
	}
	return nil
}
