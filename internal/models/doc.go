// Package models defines the core domain models for the household ledger.
//
// # Models
//
//   - Member: a household member with a mortgage share and a personal
//     credit balance
//   - Bill: a shared expense with one of five split policies, and the
//     payment state recorded against it (single payer, multi-payer
//     contributions, credit, coverage allocations)
//   - CoverageAllocation: an explicit "payer covered this member's
//     shortfall" record attached to a bill
//   - SettlementRecord: an append-only record of a debt being forgiven
//     or paid off outside the bills themselves
//
// # Design Principles
//
//  1. **Snapshot semantics**: the ledger engine treats every model as an
//     immutable input per call; nothing here carries derived state except
//     Bill.IsPaid, which is set by the payment-recording service.
//  2. **Field absence is meaningful**: a nil PaidContributions map means
//     "fall back to the legacy PaidBy field", not "nobody paid"; a nil
//     CoverageAllocations slice means "infer who-owes-whom
//     proportionally". Storage must round-trip nil vs empty faithfully.
//  3. **Avoid circular references**: relationships use ID strings, never
//     pointers.
package models
