// Package models defines the core domain models for the family wallet.
//
// # Models
//
//   - User: a registered account; owns persons
//   - Person: someone whose cash balance is tracked, owned by one account
//   - Transaction: one balance-affecting ledger entry of a person
//   - Payment: a wage accrual made by a wage check
//
// # Design Principles
//
// 1. **Balance is a cache**: Person.Balance always equals the replay of the
// person's active transactions. Only ledger operations write it.
// 2. **Typed entries**: a Transaction carries an Entry variant instead of a bare
// amount, so a clear's restore point is never mistaken for a delta.
// 3. **IDs, not pointers**: relationships use int64 IDs assigned by the store.
package models
