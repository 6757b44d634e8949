package models

// SettlementRecordType distinguishes how an interpersonal debt was
// cleared. Both types reduce the outstanding amount equally at
// settlement-resolution time.
type SettlementRecordType string

const (
	// SettlementForgiven records a creditor writing off part or all of
	// a debt.
	SettlementForgiven SettlementRecordType = "forgiven"

	// SettlementPaid records a debtor paying the creditor directly.
	SettlementPaid SettlementRecordType = "paid"
)

// Valid reports whether t is a supported record type.
func (t SettlementRecordType) Valid() bool {
	return t == SettlementForgiven || t == SettlementPaid
}

// SettlementRecord is an append-only record of a manual intervention in
// the debt graph. Records are never edited, only deleted or cleared in
// bulk; they net against inferred/explicit debts at resolution time and
// do not alter bill records.
type SettlementRecord struct {
	// ID is the unique identifier for the record (UUID format).
	ID string `json:"id"`

	// FromID is the debtor whose obligation is reduced.
	FromID string `json:"fromId"`

	// ToID is the creditor who forgave or was paid.
	ToID string `json:"toId"`

	// Amount is the amount forgiven or paid.
	Amount float64 `json:"amount"`

	// Type is forgiven or paid.
	Type SettlementRecordType `json:"type"`

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64 `json:"createdAt"`
}
