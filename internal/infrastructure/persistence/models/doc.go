// Package models contains the GORM persistence models. They are kept apart
// from the domain types so the domain stays free of ORM tags; each model
// converts to and from its domain counterpart with ToDomain/FromDomain.
//
//   - base.go: shared identity, tenant and version columns
//   - stock.go: storage areas, locations, transfer requests, ledger entries
//   - planning.go: plans and plan lines
package models
