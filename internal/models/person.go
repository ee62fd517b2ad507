package models

import "github.com/shopspring/decimal"

// DateLayout is the layout of calendar dates such as Person.LastWageDate.
const DateLayout = "2006-01-02"

// Person is a member of a family account whose balance is tracked.
type Person struct {
	ID      int64
	OwnerID int64
	Name    string

	// DailyWage is credited once per calendar day by wage checks. Zero opts out.
	DailyWage decimal.Decimal

	// Balance is the cached replay of the person's active transactions.
	Balance decimal.Decimal

	// LastWageDate is the calendar day (DateLayout) of the last wage accrual,
	// or empty if wages were never checked for this person.
	LastWageDate string

	// CreatedAt is the Unix timestamp when the person was added.
	CreatedAt int64
}

// PersonUpdate carries the mutable fields of a person. Nil fields are left
// unchanged. Balance is deliberately absent: it only moves through the ledger.
type PersonUpdate struct {
	Name      *string
	DailyWage *decimal.Decimal
}

// Empty reports whether the update changes nothing.
func (u PersonUpdate) Empty() bool {
	return u.Name == nil && u.DailyWage == nil
}

// Payment is one wage accrual made by a wage check.
type Payment struct {
	PersonID int64
	Days     int
	Amount   decimal.Decimal
}
